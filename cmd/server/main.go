package main

import (
	"log"
	"net/http"
	"os"

	"pos-analytics/internal/analysis"
	"pos-analytics/internal/api"
	"pos-analytics/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize Services
	ingestService := analysis.NewIngestService()
	reportService := service.NewReportService()

	// Initialize Handler
	handler := api.NewHandler(ingestService, reportService)

	// Router Setup
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// CORS - Allow dashboard frontend
	allowedOrigin := os.Getenv("DASHBOARD_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin, "http://127.0.0.1:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("POS Billing Analytics Backend is Running"))
	})

	// Register all API Routes
	handler.RegisterRoutes(r)

	// Get port from environment or default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Starting POS analytics backend on http://localhost:%s", port)
	log.Printf("CORS enabled for: %s", allowedOrigin)
	log.Printf("Upload directory: %s", api.UploadDir)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
