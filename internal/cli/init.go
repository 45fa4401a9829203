// Package cli provides common CLI initialization utilities shared by the
// pocketledger commands.
package cli

import (
	"context"
	"io"

	"github.com/joho/godotenv"

	"pocketledger/internal/backend"
	"pocketledger/internal/config"
	"pocketledger/internal/log"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. An unknown level falls back to info.
func SetupLogger(level string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level, _ = log.ParseLevel(level)
	cfg.Component = log.ComponentCLI
	if out != nil {
		cfg.Output = out
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore builds the configured store. The caller must run the returned
// cleanup, which is never nil.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.StoreResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid storage configuration",
			log.FieldOperation, log.OpValidate,
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err)
		return nil, err
	}

	result, err := backend.NewFactory(logger).CreateStore(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open store",
			log.FieldOperation, log.OpStartup,
			log.FieldBackend, backendCfg.Type.String(),
			log.FieldError, err)
		return nil, err
	}
	if result.Cleanup == nil {
		result.Cleanup = func() error { return nil }
	}
	return result, nil
}
