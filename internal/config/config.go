package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr   string
	AdminToken string

	DatabasePath string
	ResultsDir   string

	// Optional path to a JSON base-times table; the compiled-in FINA 2023
	// table is used when empty.
	BaseTimesPath string

	DefaultLaneCount int

	// Optional Telegram notifications for admins.
	TelegramToken string
	AdminTGIDs    map[int64]bool

	// Optional Google Sheets reporting.
	SpreadsheetID            string
	GoogleServiceAccountJSON string
}

func FromEnv() (Config, error) {
	var c Config
	c.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	c.AdminToken = strings.TrimSpace(os.Getenv("ADMIN_TOKEN"))
	if c.AdminToken == "" {
		return c, fmt.Errorf("ADMIN_TOKEN is empty")
	}

	c.DatabasePath = strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if c.DatabasePath == "" {
		c.DatabasePath = "swim-engine.db"
	}
	c.ResultsDir = strings.TrimSpace(os.Getenv("RESULTS_DIR"))
	if c.ResultsDir == "" {
		c.ResultsDir = "storage/results"
	}
	c.BaseTimesPath = strings.TrimSpace(os.Getenv("BASE_TIMES_PATH"))

	c.DefaultLaneCount = 8
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_LANE_COUNT")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return c, fmt.Errorf("DEFAULT_LANE_COUNT must be a positive integer")
		}
		c.DefaultLaneCount = v
	}

	c.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	c.AdminTGIDs = parseAdminIDs(os.Getenv("ADMIN_TG_IDS"))

	c.SpreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	c.GoogleServiceAccountJSON = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))

	return c, nil
}

func parseAdminIDs(raw string) map[int64]bool {
	m := map[int64]bool{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		m[v] = true
	}
	return m
}
