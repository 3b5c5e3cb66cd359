package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/curionlab/emergency-call-server/internal/config"
	"github.com/curionlab/emergency-call-server/internal/push"
	"github.com/curionlab/emergency-call-server/internal/store"
	"github.com/curionlab/emergency-call-server/internal/token"
)

type Server struct {
	cfg    config.Config
	store  store.Store
	tokens *token.Issuer
	sender push.Sender
	log    zerolog.Logger
	mux    *http.ServeMux
}

func NewServer(cfg config.Config, st store.Store, sender push.Sender, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		tokens: token.NewIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret),
		sender: sender,
		log:    logger,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = corsMiddleware(s.cfg.ClientURL, h)
	h = loggingMiddleware(s.log, h)
	h = requestIDMiddleware(h)
	h = recoverMiddleware(h)
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/vapid-public-key", s.handleVAPIDPublicKey)
	s.mux.HandleFunc("/status", s.handleStatus)

	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/generate-auth-code", s.handleGenerateAuthCode)
	s.mux.HandleFunc("/register", s.handleRegister)
	s.mux.HandleFunc("/update-subscription", s.handleUpdateSubscription)
	s.mux.HandleFunc("/refresh-token", s.handleRefreshToken)

	s.mux.HandleFunc("/send-notification", s.handleSendNotification)
}
