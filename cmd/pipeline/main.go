package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"findash/pkg/config"
	"findash/pkg/core/commentary"
	"findash/pkg/core/fetch"
	"findash/pkg/core/pipeline"
	"findash/pkg/core/store"
	"findash/pkg/report"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	configPath := flag.String("config", "config/findash.yaml", "Path to YAML config")
	companiesFlag := flag.String("companies", "", "Comma-separated tickers (overrides config)")
	quarterly := flag.Bool("quarterly", false, "Use quarterly periods (overrides config)")
	outPath := flag.String("out", "", "Write markdown report to this file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load config: %v, using defaults\n", err)
		cfg = config.Default()
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.ProviderBaseURL = v
	}
	if *quarterly {
		cfg.Quarterly = true
	}

	companies := cfg.Tickers()
	if *companiesFlag != "" {
		companies = nil
		for _, c := range strings.Split(*companiesFlag, ",") {
			companies = append(companies, strings.ToUpper(strings.TrimSpace(c)))
		}
	}

	orchestrator := pipeline.New(fetch.NewClient(cfg.ProviderBaseURL))

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
	}

	start := time.Now()
	result, err := orchestrator.Run(context.Background(), companies, cfg.PeriodType())
	if err != nil {
		fmt.Printf("Pipeline failed: %v\n", err)
		os.Exit(1)
	}

	md := report.RenderComparison(result.Table, result.Commentary)
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(md), 0644); err != nil {
			fmt.Printf("Failed to write report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", *outPath)
	} else {
		fmt.Println(md)
	}

	for company, msg := range result.Failures {
		fmt.Printf("[WARNING] %s skipped: %s\n", company, msg)
	}
	fmt.Printf("Done in %s (%d rows, %d companies)\n",
		time.Since(start).Round(time.Millisecond), len(result.Table.Rows), len(result.Table.Companies))
}
