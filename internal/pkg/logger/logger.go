package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// ZeroLogger é a implementação concreta da interface Logger sobre zerolog,
// com saída JSON (timestamp, level, message, fields, error).
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewLogger cria um Logger que escreve em stdout com o nível indicado ("debug", "info", "warn", "error").
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter cria um Logger escrevendo em w; útil para testes que inspecionam a saída.
func NewWithWriter(level string, w io.Writer) Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", "grandaura").
		Logger()
	return &ZeroLogger{zl: zl}
}

// NewNopLogger descarta tudo.
func NewNopLogger() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

// parseLevel mapeia o LOG_LEVEL da configuração; níveis desconhecidos caem em info.
func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error) {
	l.zl.Error().Err(err).Msg(msg)
}

// Fatal registra e encerra o processo.
func (l *ZeroLogger) Fatal(msg string, err error) {
	l.zl.Fatal().Err(err).Msg(msg)
}
