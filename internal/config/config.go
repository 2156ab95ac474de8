package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DBDSN            string
	LogFile          string
	RequestTimeout   time.Duration
	StrictStatusFlow bool
}

func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "threadline.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./threadline.log"
	}
	timeout := 5 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}
	strict := os.Getenv("STRICT_STATUS_FLOW") == "true"

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, RequestTimeout: timeout, StrictStatusFlow: strict}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REQUEST_TIMEOUT=%s STRICT_STATUS_FLOW=%v",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RequestTimeout, cfg.StrictStatusFlow)
	return cfg
}
