package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"swim-engine/internal/config"
	"swim-engine/internal/notify"
	"swim-engine/internal/points"
	"swim-engine/internal/server"
	"swim-engine/internal/sheets"
	"swim-engine/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		log.Fatalf("storage init: %v", err)
	}
	files := storage.NewFiles(cfg.ResultsDir)

	table := points.DefaultTable()
	if cfg.BaseTimesPath != "" {
		table, err = points.LoadTable(cfg.BaseTimesPath)
		if err != nil {
			log.Fatalf("base times: %v", err)
		}
	}
	calc := points.NewCalculator(table)

	var notifier *notify.Notifier
	if cfg.TelegramToken != "" {
		notifier, err = notify.New(cfg.TelegramToken, cfg.AdminTGIDs)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
	}

	var reporter *sheets.Client
	if cfg.SpreadsheetID != "" && cfg.GoogleServiceAccountJSON != "" {
		reporter, err = sheets.New(cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
		if err != nil {
			log.Fatalf("sheets: %v", err)
		}
	}

	httpSrv := server.New(cfg, store, files, calc, notifier, reporter)

	go func() {
		log.Printf("HTTP listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctxTimeout)

	log.Println("bye")
}
