package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the production JSON logger every component shares. Every
// line carries the service name; the per-request correlation_id field is
// added by the middleware. Level comes from LOG_LEVEL (debug, info, warn,
// error; case-insensitive), defaulting to info.
func NewLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(logLevel(os.Getenv("LOG_LEVEL")))
	config.InitialFields = map[string]interface{}{"service": "city-data-service"}

	return config.Build()
}

// logLevel maps a LOG_LEVEL value to a zap level. Unknown values fall back
// to info rather than failing startup.
func logLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
