// Package logger builds the process-wide zap logger.
package logger

import "go.uber.org/zap"

// New returns a production logger, or a human-friendly development one
// when env is "dev" or "test".
func New(env string) (*zap.Logger, error) {
	if env == "dev" || env == "test" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
