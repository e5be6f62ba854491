package main

import (
	"log/slog"
	"os"

	"batilink/internal/app"
	"batilink/internal/logger"
)

func main() {
	color := os.Getenv("NO_COLOR") == ""
	logHandler := logger.NewHandler(os.Stdout, &slog.HandlerOptions{
		Level: logger.ParseLevel(os.Getenv("LOG_LEVEL")),
	}, color)
	slog.SetDefault(slog.New(logHandler))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
