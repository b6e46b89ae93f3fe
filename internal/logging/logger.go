package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: JSON in prod-like environments,
// human-readable console output otherwise.
func New(appEnv string, prodLike bool) (*zap.Logger, error) {
	var cfg zap.Config
	if prodLike {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.InitialFields = map[string]interface{}{"env": appEnv}

	return cfg.Build()
}
