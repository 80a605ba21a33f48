package logger

import (
	"log"

	"go.uber.org/zap"
)

// New builds the application logger. Production mode emits JSON, anything
// else gets the human-readable development encoder.
func New(environment string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)

	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	return logger
}
