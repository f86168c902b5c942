package main

import (
	"log"
	"net/http"

	"inflatrack/config"
	"inflatrack/database"
	"inflatrack/handlers"
	"inflatrack/middleware"
	"inflatrack/repository"
	"inflatrack/scheduler"
	"inflatrack/scraper"
	"inflatrack/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.DefaultAppConfig()

	// Initialize database
	if err := database.InitDatabase(cfg.DatabasePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Create tables
	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	sampleRepo := repository.NewSampleRepository(database.DB)
	recorder := services.NewRecorder(sampleRepo, scraper.DefaultUnitTable())

	// Initialize document fetcher
	var fetcher scraper.Fetcher
	if cfg.FetchMode == "http" {
		fetcher = scraper.NewHTTPFetcher(cfg.FetchTimeout)
	} else {
		browserFetcher, err := scraper.NewBrowserFetcher(cfg.FetchSettle)
		if err != nil {
			log.Fatalf("Failed to create browser fetcher: %v", err)
		}
		fetcher = browserFetcher
	}
	defer fetcher.Close()

	// Initialize and start the scrape scheduler
	scrapeScheduler := scheduler.NewScrapeScheduler(fetcher, recorder, cfg)
	scrapeScheduler.Start()
	defer scrapeScheduler.Stop()

	h := handlers.NewHandlers(sampleRepo, scrapeScheduler)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/export", h.GetExport).Methods("GET")
	apiV1.HandleFunc("/stats", h.GetStats).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigins},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /api/v1/export - Inflation export")
	log.Printf("   GET  /api/v1/stats - Last scrape cycle statistics")

	log.Fatal(http.ListenAndServe(addr, c.Handler(r)))
}
