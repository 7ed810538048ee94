package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService      driving.AuthService
	userService      driving.UserService
	extractService   driving.ExtractService
	summarizeService driving.SummarizeService
	answerService    driving.AnswerService
	chatService      driving.ChatService
	retrievalService driving.RetrievalService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	extractService driving.ExtractService,
	summarizeService driving.SummarizeService,
	answerService driving.AnswerService,
	chatService driving.ChatService,
	retrievalService driving.RetrievalService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		authService:      authService,
		userService:      userService,
		extractService:   extractService,
		summarizeService: summarizeService,
		answerService:    answerService,
		chatService:      chatService,
		retrievalService: retrievalService,
		db:               db,
		redisClient:      redisClient,
	}

	s.setupRoutes()

	handler := NewRecoveryMiddleware().Handler(
		NewCORSMiddleware(cfg.AllowedOrigins).Handler(
			NewLoggingMiddleware().Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))

	// User endpoints
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))
	s.router.Handle("PATCH /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUpdateMe)))
	s.router.Handle("DELETE /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteMe)))
	s.router.Handle("POST /api/v1/me/password",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleChangePassword)))

	// Extraction and AI endpoints (authenticated)
	s.router.Handle("POST /api/v1/extract",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleExtract)))
	s.router.Handle("POST /api/v1/summarize",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSummarize)))
	s.router.Handle("POST /api/v1/qa",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleQA)))
	s.router.Handle("POST /api/v1/qa/compare",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCompare)))

	// Retrieval endpoints (authenticated)
	s.router.Handle("POST /api/v1/embed",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleEmbed)))
	s.router.Handle("POST /api/v1/search",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearch)))
	s.router.Handle("DELETE /api/v1/pages/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeletePage)))

	// Chat endpoints (authenticated)
	s.router.Handle("POST /api/v1/chats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCreateChat)))
	s.router.Handle("GET /api/v1/chats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListChats)))
	s.router.Handle("GET /api/v1/chats/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetChat)))
	s.router.Handle("DELETE /api/v1/chats/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteChat)))
	s.router.Handle("GET /api/v1/chats/{id}/messages",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListMessages)))
	s.router.Handle("POST /api/v1/chats/{id}/messages",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAppendMessage)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, used in tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
