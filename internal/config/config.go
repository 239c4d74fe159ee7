package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const DefaultPrompt = `Do these two addresses refer to the same physical location (including apt/unit/door number)?
Address A: %s
Address B: %s
Answer only "yes" or "no".`

type OracleConfig struct {
	Provider        string  `toml:"provider"`
	Model           string  `toml:"model"`
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	Temperature     float32 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
	// Prompt takes two %s verbs, address A then address B; write a literal % as %%.
	Prompt string `toml:"prompt"`
}

type InputConfig struct {
	PrimarySheet           string   `toml:"primary_sheet"`
	PrimaryAddressColumn   string   `toml:"primary_address_column"`
	PrimaryPhoneColumn     string   `toml:"primary_phone_column"`
	ReferenceSheets        []string `toml:"reference_sheets"`
	ReferenceAddressColumn string   `toml:"reference_address_column"`
	ReferencePhoneColumn   string   `toml:"reference_phone_column"`
}

type OutputConfig struct {
	Path  string `toml:"path"`
	Sheet string `toml:"sheet"`
}

type ServerConfig struct {
	Port        string `toml:"port"`
	MaxUploadMB int64  `toml:"max_upload_mb"`
}

type RunConfig struct {
	ProgressEvery int `toml:"progress_every"`
}

type Config struct {
	Oracle OracleConfig `toml:"oracle"`
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Server ServerConfig `toml:"server"`
	Run    RunConfig    `toml:"run"`
}

// Default returns the settings the tool runs with when no file is given.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			TimeoutSeconds:  15,
			Temperature:     0,
			MaxOutputTokens: 2,
			Prompt:          DefaultPrompt,
		},
		Input: InputConfig{
			PrimarySheet:           "LAX",
			PrimaryAddressColumn:   "processed_address",
			PrimaryPhoneColumn:     "Merged Mobiles",
			ReferenceSheets:        []string{"Tony单提 (需整理)", "加单", "CargoVan", "卡车"},
			ReferenceAddressColumn: "Pickup Address*",
			ReferencePhoneColumn:   "Phone Number*",
		},
		Output: OutputConfig{
			Path:  "new addresses_numbers.xlsx",
			Sheet: "new addresses",
		},
		Server: ServerConfig{
			Port:        "8080",
			MaxUploadMB: 32,
		},
		Run: RunConfig{
			ProgressEvery: 25,
		},
	}
}

// Load reads a TOML file on top of Default. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ORACLE_PROVIDER"); v != "" {
		c.Oracle.Provider = v
	}
	if v := os.Getenv("ORACLE_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	// ORACLE_API_KEY wins over the provider-specific variable.
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := os.Getenv("ORACLE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Oracle.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("OUTPUT_PATH"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) Validate() error {
	var problems []string

	if c.Oracle.TimeoutSeconds <= 0 {
		problems = append(problems, "oracle.timeout_seconds must be positive")
	}
	if c.Oracle.MaxOutputTokens <= 0 {
		problems = append(problems, "oracle.max_output_tokens must be positive")
	}
	if err := checkPrompt(c.Oracle.Prompt); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Input.PrimarySheet == "" {
		problems = append(problems, "input.primary_sheet is empty")
	}
	if c.Input.PrimaryAddressColumn == "" || c.Input.PrimaryPhoneColumn == "" {
		problems = append(problems, "input primary columns must be set")
	}
	if len(c.Input.ReferenceSheets) == 0 {
		problems = append(problems, "input.reference_sheets is empty")
	}
	for _, s := range c.Input.ReferenceSheets {
		if strings.TrimSpace(s) == "" {
			problems = append(problems, "input.reference_sheets contains an empty name")
			break
		}
	}
	if c.Input.ReferenceAddressColumn == "" || c.Input.ReferencePhoneColumn == "" {
		problems = append(problems, "input reference columns must be set")
	}
	if c.Output.Sheet == "" {
		problems = append(problems, "output.sheet is empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// checkPrompt renders the template with two markers; a literal % must be written %%.
func checkPrompt(prompt string) error {
	const a, b = "\x00address-a\x00", "\x00address-b\x00"
	rendered := fmt.Sprintf(prompt, a, b)
	if strings.Contains(rendered, "%!") || !strings.Contains(rendered, a) || !strings.Contains(rendered, b) {
		return fmt.Errorf("oracle.prompt must contain exactly two %%s verbs and write a literal %% as %%%%")
	}
	return nil
}
