package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable names read by LoadEnv.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"
)

// DefaultEnvFile is the dotenv file consulted when present.
const DefaultEnvFile = ".env"

// LoadEnv reads secrets from the process environment and, when it exists,
// the dotenv file at c.EnvFilePath. Process variables win over the file.
//
// A missing credential is not an error: the assistant reports it per request.
func (c *Config) LoadEnv() error {
	v := viper.New()
	v.AutomaticEnv()

	if c.EnvFilePath != "" {
		if _, err := os.Stat(c.EnvFilePath); err == nil {
			v.SetConfigFile(c.EnvFilePath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read env file %s: %w", c.EnvFilePath, err)
			}
		}
	}

	if key := strings.TrimSpace(v.GetString(EnvGeminiAPIKey)); key != "" {
		c.GeminiAPIKey = key
	}
	if model := strings.TrimSpace(v.GetString(EnvGeminiModel)); model != "" {
		c.GeminiModel = model
	}
	return nil
}
