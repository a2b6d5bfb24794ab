// ============================================================================
// internal/shared/logger.go
// Structured logging setup (zap)
// ============================================================================

package shared

import (
	"go.uber.org/zap"
)

// NewLogger builds a SugaredLogger for the given environment. Production gets
// JSON output at info level, everything else gets the console encoder at
// debug level.
func NewLogger(environment string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch environment {
	case "production", "staging":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NopLogger returns a logger that discards everything. Used by tests.
func NopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
