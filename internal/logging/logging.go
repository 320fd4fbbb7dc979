package logging

import (
	"go.uber.org/zap"
)

// New builds a console logger. Debug enables development output with
// debug level; quiet raises the level so only errors surface.
func New(debug, quiet bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		if quiet {
			cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		}
	}
	cfg.Encoding = "console"

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
