package config

import (
	"errors"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads a .env file from the working directory once, if present.
// Variables already set in the environment win.
func LoadEnv() error {
	var err error
	envOnce.Do(func() {
		if _, statErr := os.Stat(".env"); errors.Is(statErr, os.ErrNotExist) {
			return
		}
		err = godotenv.Load(".env")
	})
	return err
}
