// Package logging builds the service's zap logger.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string
	Dev   bool
}

// ParseLevel maps a LOG_LEVEL value to a zap level. Unknown values fall back
// to info, or debug in development mode.
func ParseLevel(raw string, dev bool) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || raw == "" {
		if dev {
			return zapcore.DebugLevel
		}
		return zapcore.InfoLevel
	}
	return lvl
}

// New returns a logger writing to stdout.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Dev {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level, true))
		return c.Build()
	}
	return newJSON(cfg, os.Stdout), nil
}

func newJSON(cfg Config, w io.Writer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), ParseLevel(cfg.Level, false))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
