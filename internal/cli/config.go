package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Config represents the configuration for the Advisio CLI
// It contains server connection details and local storage locations
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServerURL is the base URL of the Advisio API server
	ServerURL string `yaml:"server_url" validate:"required"`
	// DataDir is where the credential store keeps its files.
	// Defaults to the directory the config file lives in.
	DataDir string `yaml:"data_dir" validate:"omitempty,dir"`
	// PushToken is an optional device push token to register after login
	PushToken string `yaml:"push_token"`
}

var config *Config

var validate = validator.New(validator.WithRequiredStructEnabled())

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/advisio on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "advisio", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location.
// Environment variables ADVISIO_SERVER and ADVISIO_DATA_DIR override the
// file values; a .env in the working directory is honored too.
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	godotenv.Load()
	if v := os.Getenv("ADVISIO_SERVER"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("ADVISIO_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Dir(file)
	}

	if err := validate.Struct(&c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.ServerURL = MorphServer(c.ServerURL)

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the current configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the server connection and data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverFlag, _ := cmd.Flags().GetString("server")
		if serverFlag != "" {
			return setServerConfig(serverFlag)
		}

		if err := LoadConfig(configFile); err != nil {
			return err
		}
		cfg := GetConfig()
		if jsonOutput {
			printJSON(map[string]string{
				"server":   cfg.ServerURL,
				"data_dir": cfg.DataDir,
			})
		} else {
			fmt.Printf("Server: %s\n", cfg.ServerURL)
			fmt.Printf("Data directory: %s\n", cfg.DataDir)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().String("server", "", "Set the server base URL (e.g., api.example.com)")
	rootCmd.AddCommand(configCmd)
}

// setServerConfig sets the server configuration in the config file
func setServerConfig(server string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	cfg := &Config{
		Version:   "0.1.0",
		ServerURL: MorphServer(server),
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configPath,
		})
	} else {
		fmt.Printf("Server configured: %s\n", cfg.ServerURL)
		fmt.Printf("Config file: %s\n", configPath)
	}

	return nil
}
