package config

import (
	"go.uber.org/zap"
)

// NewLogger returns a JSON production logger in production and a console
// development logger everywhere else.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
