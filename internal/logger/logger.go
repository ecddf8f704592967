package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const productionEnv = "production"

// Config holds logger settings, taken from config.Config at startup.
type Config struct {
	Service    string // root logger name and "service" field
	Env        string // anything but "production" adds caller info and error stacktraces
	Level      string // debug, info, warn, error; invalid values fall back to info
	Encoding   string // json or console
	OutputPath string // stdout when empty
}

func (c Config) development() bool {
	return !strings.EqualFold(c.Env, productionEnv)
}

// New builds the service's root logger. Every entry carries the service and env fields.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", cfg.Level, err)
		}
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if encoding == "console" && cfg.development() {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	dev := cfg.development()
	fields := map[string]interface{}{"env": strings.ToLower(cfg.Env)}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}

	logger, err := zap.Config{
		Level:             level,
		Development:       dev,
		DisableCaller:     !dev,
		DisableStacktrace: !dev,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     fields,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.Service != "" {
		logger = logger.Named(cfg.Service)
	}
	return logger, nil
}
