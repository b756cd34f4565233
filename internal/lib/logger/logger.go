package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/restaurant-orders/internal/lib/logger/handlers/slogpretty"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	serviceName = "restaurant-orders"
)

// SetupLogger инициализирует логгер в зависимости от окружения.
// local: цветной вывод; dev: JSON с уровнем debug и местом вызова; prod и прочее: JSON с уровнем info.
func SetupLogger(env string) *slog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, w io.Writer) *slog.Logger {
	if env == EnvLocal {
		return setupPrettySlog(w)
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == EnvDev {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	// каждая запись помечена сервисом и окружением
	return slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String("service", serviceName),
		slog.String("env", env),
	)
}

func setupPrettySlog(w io.Writer) *slog.Logger {
	color.NoColor = false

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(w)
	return slog.New(handler)
}
