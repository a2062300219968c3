package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workforce-portal/gateway/internal/config"
	"workforce-portal/gateway/internal/handlers"
	"workforce-portal/gateway/internal/live"
	"workforce-portal/gateway/internal/session"
)

func main() {
	httpPort := flag.String("http-port", "", "HTTP port (overrides HTTP_PORT)")
	backendURL := flag.String("backend-url", "", "labor backend base URL (overrides BACKEND_BASE_URL)")
	flag.Parse()

	cfg := config.LoadConfig()
	if *httpPort != "" {
		cfg.HTTPPort = *httpPort
	}
	if *backendURL != "" {
		cfg.BackendBaseURL = *backendURL
	}

	log.Println("Starting...")
	log.Printf("HTTP port: %s", cfg.HTTPPort)
	log.Printf("Labor backend: %s", cfg.BackendBaseURL)
	log.Printf("Environment: %s", cfg.Environment)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	registry := session.NewRegistry(cfg.SessionTTL)
	hub := live.NewHub()
	handler := handlers.New(cfg, registry, hub)

	port := cfg.HTTPPort
	if len(port) > 0 && port[0] == ':' {
		port = port[1:]
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on port %s", port)
		log.Printf("WebSocket:  ws://localhost:%s/ws", port)
		log.Printf("REST API:   http://localhost:%s/api/*", port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("HTTP server gracefully stopped")
	}

	log.Println("Closing WebSocket connections...")
	hub.CloseAll()
	log.Println("All WebSocket connections closed...")

	log.Println("Goodbye!")
}
