package main

import (
	"flag"
	"log/slog"
	"os"

	"retailpulse/internal/app"
)

func main() {
	port := flag.Int("port", 0, "HTTP port to listen on (overrides configuration)")
	flag.Parse()

	application, err := app.NewApplication(app.WithPort(*port))
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
