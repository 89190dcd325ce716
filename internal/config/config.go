// Package config loads typed configuration structs from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvFileVar names the variable that points at an alternative .env file.
const EnvFileVar = "ENV_FILE"

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New loads the .env file (if any) and decodes the variables under prefix into a T.
// Variables already set in the process environment win over the file.
func New[T any](prefix string) (*T, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("config %s: %w", prefix, err)
	}
	return &conf, nil
}

func loadEnvFile() error {
	path := os.Getenv(EnvFileVar)
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load default env file: %w", err)
	}
	return nil
}
