package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// IsDev APP_ENV 是否为开发环境
func IsDev(env string) bool {
	return env == "dev" || env == "development"
}

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer.
func NewLogger(env string) zerolog.Logger {
	return NewLoggerTo(os.Stdout, env)
}

// NewLoggerTo 与 NewLogger 相同，但写入指定输出
func NewLoggerTo(w io.Writer, env string) zerolog.Logger {
	if IsDev(env) {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel 解析日志级别，无法识别时返回 info
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewSlogHandler Actor 系统使用的 slog handler
// 开发环境输出文本，其余输出 JSON
func NewSlogHandler(w io.Writer, env, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if IsDev(env) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// SetGlobalLevel 同步 zerolog 的全局级别
func SetGlobalLevel(level string) {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
}
