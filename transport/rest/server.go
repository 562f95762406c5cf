package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

func Start(logger *slog.Logger, port string) error {
	handlers := newHandlers(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("GET /api/chess/board", handlers.boardHandler)
	mux.HandleFunc("POST /api/chess/computer-move", handlers.computerMoveHandler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
