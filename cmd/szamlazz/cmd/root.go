package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/billfold/szamlazz-go/pkg/szamlazz"
)

var (
	version = "1.0.0"

	// Global flags
	configPath  string
	verbose     bool
	agentKey    string
	username    string
	password    string
	baseURL     string
	downloadPDF bool
)

var rootCmd = &cobra.Command{
	Use:   "szamlazz",
	Short: "Create, cancel and fetch invoices via the Számla Agent",
	Long: `szamlazz is a CLI for the Számla Agent XML invoicing service.

Examples:
  # Upload an invoice described in a YAML file
  szamlazz invoice upload invoice.yaml --agent-key <key>

  # Fetch an invoice by number
  szamlazz invoice fetch E-2026-123

  # Cancel an invoice
  szamlazz invoice cancel 2026-123

  # Query a tax payer
  szamlazz taxpayer 12345678`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&agentKey, "agent-key", "", "Agent API key (env: SZAMLAZZ_AGENT_KEY)")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Account username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Account password")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Service base URL")
	rootCmd.PersistentFlags().BoolVar(&downloadPDF, "download-pdf", false, "Request the generated PDF")

	cobra.OnInitialize(initEnv)
}

func initEnv() {
	if agentKey == "" {
		agentKey = os.Getenv("SZAMLAZZ_AGENT_KEY")
	}
}

// fileConfig is the YAML configuration file shape.
type fileConfig struct {
	Credentials struct {
		AgentKey string `yaml:"agent_key"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"credentials"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DownloadPDF    bool   `yaml:"download_pdf"`
	Storage        struct {
		AutoSave bool   `yaml:"auto_save"`
		BasePath string `yaml:"base_path"`
	} `yaml:"storage"`
}

// buildConfig merges the config file with flag overrides. Flags win.
func buildConfig() (szamlazz.Config, error) {
	var cfg szamlazz.Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
		cfg.Credentials = szamlazz.Credentials{
			AgentKey: fc.Credentials.AgentKey,
			Username: fc.Credentials.Username,
			Password: fc.Credentials.Password,
		}
		cfg.BaseURL = fc.BaseURL
		cfg.TimeoutSeconds = fc.TimeoutSeconds
		cfg.DownloadPDF = fc.DownloadPDF
		cfg.Storage = szamlazz.StorageConfig{
			AutoSave: fc.Storage.AutoSave,
			BasePath: fc.Storage.BasePath,
		}
	}

	if agentKey != "" {
		cfg.Credentials.AgentKey = agentKey
	}
	if username != "" {
		cfg.Credentials.Username = username
	}
	if password != "" {
		cfg.Credentials.Password = password
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if downloadPDF {
		cfg.DownloadPDF = true
	}
	return cfg, nil
}

func buildClient() (*szamlazz.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	var opts []szamlazz.Option
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, szamlazz.WithLogger(logger))
	}
	return szamlazz.New(cfg, opts...)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
