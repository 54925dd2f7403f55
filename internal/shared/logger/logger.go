package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"backoffice/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logFormatJSON = "json"

	backendLogrus = "logrus"
	backendZap    = "zap"

	envProduction = "production"
	envProd       = "prod"

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Config selects the backend, level and output format.
type Config struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Format      string `env:"LOG_FORMAT" envDefault:"text"`
	Backend     string `env:"LOG_BACKEND" envDefault:"logrus"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

func (c Config) json() bool {
	return c.Format == logFormatJSON || c.Environment == envProduction || c.Environment == envProd
}

// NewLogger creates a logger configured from the environment
func NewLogger() Logger {
	return New(Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
		Backend:     os.Getenv("LOG_BACKEND"),
		Environment: os.Getenv("ENVIRONMENT"),
	}, os.Stdout)
}

// NewLoggerWithConfig creates a logrus logger with the given level and format
func NewLoggerWithConfig(level string, format string) Logger {
	return New(Config{Level: level, Format: format, Backend: backendLogrus}, os.Stdout)
}

// New builds a Logger writing to out.
func New(cfg Config, out io.Writer) Logger {
	if strings.EqualFold(cfg.Backend, backendZap) {
		return newZapLogger(cfg, out)
	}
	return newLogrusLogger(cfg, out)
}

// contextFields lists the context keys copied into log fields by WithContext.
var contextFields = []struct {
	key  interface{}
	name string
}{
	{contextkeys.RequestIDKey, "request_id"},
	{contextkeys.UserEmailKey, "user_email"},
	{contextkeys.EntityKey, "entity"},
	{contextkeys.LanguageKey, "lang"},
	{contextkeys.ComponentKey, "component"},
}

func extractContextFields(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if ctx == nil {
		return fields
	}
	for _, f := range contextFields {
		if val, ok := ctx.Value(f.key).(string); ok && val != "" {
			fields[f.name] = val
		}
	}
	return fields
}

// LogrusLogger implements the Logger interface using logrus
type LogrusLogger struct {
	entry *logrus.Entry
}

func newLogrusLogger(cfg Config, out io.Writer) *LogrusLogger {
	l := logrus.New()
	if level, err := logrus.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
		l.SetLevel(level)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	if cfg.json() {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: textTimestamp,
		})
	}
	l.SetOutput(out)

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *LogrusLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

// WithFields adds structured fields to the logger
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithContext adds request scoped values to the logger
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(extractContextFields(ctx)))}
}

// WithComponent adds component name to the logger
func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

// ZapLogger implements the Logger interface on a zap sugared logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func newZapLogger(cfg Config, out io.Writer) *ZapLogger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timestampFormat)

	var encoder zapcore.Encoder
	if cfg.json() {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(textTimestamp)
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

func (z *ZapLogger) Debug(args ...interface{}) { z.sugar.Debug(args...) }
func (z *ZapLogger) Info(args ...interface{})  { z.sugar.Info(args...) }
func (z *ZapLogger) Warn(args ...interface{})  { z.sugar.Warn(args...) }
func (z *ZapLogger) Error(args ...interface{}) { z.sugar.Error(args...) }
func (z *ZapLogger) Fatal(args ...interface{}) { z.sugar.Fatal(args...) }

func (z *ZapLogger) Debugf(format string, args ...interface{}) { z.sugar.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...interface{})  { z.sugar.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...interface{})  { z.sugar.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...interface{}) { z.sugar.Errorf(format, args...) }
func (z *ZapLogger) Fatalf(format string, args ...interface{}) { z.sugar.Fatalf(format, args...) }

func (z *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &ZapLogger{sugar: z.sugar.With(kv...)}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	return z.WithFields(extractContextFields(ctx))
}

func (z *ZapLogger) WithComponent(component string) Logger {
	return &ZapLogger{sugar: z.sugar.With("component", component)}
}

// Sync flushes buffered zap output.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

var defaultLogger Logger = NewLogger()

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the package-level logger.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}

func Debug(args ...interface{}) { defaultLogger.Debug(args...) }
func Info(args ...interface{})  { defaultLogger.Info(args...) }
func Warn(args ...interface{})  { defaultLogger.Warn(args...) }
func Error(args ...interface{}) { defaultLogger.Error(args...) }
func Fatal(args ...interface{}) { defaultLogger.Fatal(args...) }

func Debugf(format string, args ...interface{}) { defaultLogger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { defaultLogger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { defaultLogger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { defaultLogger.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { defaultLogger.Fatalf(format, args...) }

// WithContext creates a logger with context information
func WithContext(ctx context.Context) Logger {
	return defaultLogger.WithContext(ctx)
}

// WithComponent creates a logger with component information
func WithComponent(component string) Logger {
	return defaultLogger.WithComponent(component)
}

// WithFields creates a logger with custom fields
func WithFields(fields map[string]interface{}) Logger {
	return defaultLogger.WithFields(fields)
}
