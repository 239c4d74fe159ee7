package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/equivalence"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/match"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/server"
)

func createServeCmd() *cobra.Command {
	var port string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reconciliation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			factory := func(ctx context.Context, apiKey string) (match.Matcher, error) {
				oracle, err := equivalence.New(ctx, cfg.Oracle, apiKey, log.Logger)
				if err != nil {
					return nil, err
				}
				return oracle, nil
			}

			srv := server.NewServer(cfg, factory, log.Logger)
			r := srv.SetupRouter()

			log.Info().
				Str("port", cfg.Server.Port).
				Str("provider", cfg.Oracle.Provider).
				Str("version", version).
				Msg("starting server")
			return r.Run(":" + cfg.Server.Port)
		},
	}

	serveCmd.Flags().StringVar(&port, "port", "", "listen port (overrides config and PORT)")
	return serveCmd
}
