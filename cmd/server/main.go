package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeshare/backend/internal/api"
	"codeshare/backend/internal/config"
	"codeshare/backend/internal/session"
	"codeshare/backend/internal/stats"
	"codeshare/backend/internal/ws"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()

	registry := session.NewRegistry()

	hub := ws.NewHub(registry)
	go hub.Run()

	apiHandler := api.New(hub, registry)

	reporter := stats.New(hub, registry, cfg.Stats.Interval)
	reporter.Start()

	// WebSocket endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})

	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/api/sessions", apiHandler.SessionsRouter)
	http.HandleFunc("/api/sessions/", apiHandler.SessionsRouter)
	http.Handle("/metrics", promhttp.Handler())

	// Apply CORS middleware
	handler := corsMiddleware(cfg.Server.CORSOrigin, http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		reporter.Stop()
		os.Exit(0)
	}()

	log.Printf("🤝 CodeShare server starting on :%s", cfg.Server.Port)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Metrics:   GET /metrics")
	log.Println("  - Create:    POST /api/sessions")
	log.Println("  - Metadata:  GET /api/sessions/{id}")

	if err := http.ListenAndServe(":"+cfg.Server.Port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
