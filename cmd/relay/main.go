package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/curionlab/emergency-call-server/internal/config"
	"github.com/curionlab/emergency-call-server/internal/httpapi"
	"github.com/curionlab/emergency-call-server/internal/push"
	"github.com/curionlab/emergency-call-server/internal/store/file"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("set the required variables before starting (see .env.example)")
	}

	st := file.NewStore(cfg.DataFile)
	sender := push.NewWebPush(cfg.VAPIDContact, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)

	srv := httpapi.NewServer(cfg, st, sender, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.ListenAddr()).
			Str("vapid_public_key", cfg.VAPIDPublicKey).
			Msg("relay listening")
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutdown requested")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}
