package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/equivalence"
)

func createRunCmd() *cobra.Command {
	var (
		primaryPath   string
		referencePath string
		apiKey        string
		outputPath    string
	)

	runCmd := &cobra.Command{
		Use:   "run [primary.xlsx] [reference.xlsx]",
		Short: "Reconcile two workbooks and write the unmatched-address report",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && primaryPath == "" {
				primaryPath = args[0]
			}
			if len(args) > 1 && referencePath == "" {
				referencePath = args[1]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputPath != "" {
				cfg.Output.Path = outputPath
			}

			p := newTerminalPrompter()
			primaryPath, err = p.choosePath(primaryPath, "primary (massy) workbook")
			if err != nil {
				return err
			}
			referencePath, err = p.choosePath(referencePath, "reference (clean) workbook")
			if err != nil {
				return err
			}

			if apiKey == "" {
				apiKey = cfg.Oracle.APIKey
			}
			if !strings.EqualFold(cfg.Oracle.Provider, "ollama") {
				apiKey, err = p.chooseSecret(apiKey, cfg.Oracle.Provider+" API key")
				if err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			oracle, err := equivalence.New(ctx, cfg.Oracle, apiKey, log.Logger)
			if err != nil {
				return err
			}
			defer oracle.Close()

			log.Info().
				Str("provider", cfg.Oracle.Provider).
				Str("model", cfg.Oracle.Model).
				Msg("comparing addresses through the equivalence oracle")

			result, err := core.NewReconciler(cfg, oracle, log.Logger).Run(ctx, primaryPath, referencePath)
			if err != nil {
				return err
			}

			if oracle.Failures() > 0 {
				log.Warn().
					Int("failures", oracle.Failures()).
					Int("calls", oracle.Calls()).
					Msg("some oracle calls failed and were counted as no match")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Done! %d unmatched of %d unique addresses. Output saved to %s\n",
				result.Summary.Unmatched, result.Summary.Unique, result.OutputPath)
			return nil
		},
	}

	runCmd.Flags().StringVar(&primaryPath, "primary", "", "primary (massy) workbook")
	runCmd.Flags().StringVar(&referencePath, "reference", "", "reference (clean) workbook")
	runCmd.Flags().StringVar(&apiKey, "api-key", "", "oracle API key (prompted for when omitted)")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "report path (overrides config)")

	return runCmd
}
