package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. EXILON_BURN_CAP_PERCENT.
const EnvPrefix = "EXILON"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values (the launch parameters)
// 2. Configuration file (exilon.toml)
// 3. Dotenv file (.env), which never overrides variables already set
// 4. Environment variables (EXILON_ prefix)
func LoadConfig(paths ConfigPaths) (*Config, error) {
	// Create viper instance for main config
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load main configuration file. Without one the defaults stand.
	if paths.Main != "" {
		if err := loadMainConfig(v, paths.Main); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	// 3. Load the dotenv file into the process environment
	if err := loadEnvFile(paths.Env); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	// 4. Set up environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 5. Unmarshal main config into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Store paths for reference
	config.configPath = paths.Main
	config.envPath = paths.Env

	// 7. Validate the complete configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadMainConfig loads the main configuration file
func loadMainConfig(v *viper.Viper, configPath string) error {
	// Set config file path
	v.SetConfigFile(configPath)

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}

// loadEnvFile loads a dotenv file if it exists; a missing file is not an
// error
func loadEnvFile(envPath string) error {
	if envPath == "" {
		return nil
	}
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", envPath, err)
	}
	return nil
}

// LoadConfigFromDir loads configuration from a directory containing both files
func LoadConfigFromDir(configDir string) (*Config, error) {
	paths := ConfigPathsFromDir(configDir)
	return LoadConfig(paths)
}

// LoadDefaultConfig loads the defaults and the environment, without a file
func LoadDefaultConfig() (*Config, error) {
	return LoadConfig(ConfigPaths{Env: DefaultConfigPaths().Env})
}

// ReloadConfig reloads configuration from the same paths
func ReloadConfig(existingConfig *Config) (*Config, error) {
	paths := ConfigPaths{
		Main: existingConfig.GetConfigPath(),
		Env:  existingConfig.GetEnvPath(),
	}
	return LoadConfig(paths)
}

// SaveExampleConfig saves an example configuration file holding every
// default value
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)

	// Set all example values
	for key, value := range generateExampleConfig() {
		v.Set(key, value)
	}

	// Write to file
	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}

// generateExampleConfig generates the example values that differ from the
// defaults or need a readable form in the file
func generateExampleConfig() map[string]interface{} {
	return map[string]interface{}{
		"fees.sell_decay.windows": []map[string]interface{}{
			{"until": "30m", "extra": 6, "big_sell_extra": 8},
			{"until": "1h", "extra": 3, "big_sell_extra": 5},
		},

		"storage.path": "/var/lib/exilon/snapshots",
		"journal.dsn":  "/var/lib/exilon/events.db",
	}
}
