// Package logging constructs the service logger backed by zap.
package logging

import (
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
)

// NewLogger builds the service logger. Development environments get
// human-readable console output; everything else logs structured JSON.
func NewLogger(environment string) (ectologger.Logger, error) {
	var zapLogger *zap.Logger
	var err error

	switch environment {
	case "local", "development":
		zapLogger, err = zap.NewDevelopment()
	default:
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}
