package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"findash/pkg/api/comparison"
	"findash/pkg/config"
	"findash/pkg/core/commentary"
	"findash/pkg/core/fetch"
	"findash/pkg/core/pipeline"
	"findash/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	configPath := "config/findash.yaml"
	if v := os.Getenv("FINDASH_CONFIG"); v != "" {
		configPath = v
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load config: %v\n", err)
		fmt.Println("  Falling back to built-in defaults")
		cfg = config.Default()
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.ProviderBaseURL = v
	}
	if cfg.ProviderBaseURL == "" {
		fmt.Println("[WARNING] No provider_base_url configured; fetches will fail")
	}

	orchestrator := pipeline.New(fetch.NewClient(cfg.ProviderBaseURL))

	// Cache: Postgres when DATABASE_URL is set, file cache otherwise.
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	var pool *pgxpool.Pool
	if os.Getenv("DATABASE_URL") != "" {
		p, err := store.InitDB(context.Background())
		if err != nil {
			fmt.Printf("[WARNING] Database init failed, using file cache: %v\n", err)
		} else {
			pool = p
			defer pool.Close()
		}
	}
	orchestrator.SetCache(store.NewMetricsCache(pool, cfg.CacheDir, ttl))

	if cfg.CommentaryModel != "" {
		orchestrator.SetCommentaryProvider(&commentary.GeminiProvider{Model: cfg.CommentaryModel})
		fmt.Printf("[COMMENTARY] Enabled with model %s\n", cfg.CommentaryModel)
	}

	handler := comparison.NewHandler(orchestrator)
	http.HandleFunc("/api/comparison", handler.HandleComparison)
	http.HandleFunc("/api/comparison/report", handler.HandleComparisonReport)
	http.HandleFunc("/api/metrics", handler.HandleCompanyMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/comparison         (cross-company metric table)")
	fmt.Println("  - POST /api/comparison/report  (markdown report)")
	fmt.Println("  - POST /api/metrics            (single-company series)")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("Server failed: %v\n", err)
		os.Exit(1)
	}
}
