package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "CLINICDESK_"

// parseEnv overlays Config with CLINICDESK_* variables. When -e/-env names
// a dotenv file its values are used for keys the process environment does
// not set. The file is read with godotenv.Read so the process environment
// is never modified.
func parseEnv(cfg *Config) {
	fileVals := map[string]string{}
	if path := flagx.EnvFileFlag(os.Args[1:]); path != "" {
		vals, err := godotenv.Read(path)
		if err != nil {
			panic(err)
		}
		fileVals = vals
	}

	getEnv := func(key string) string {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			return v
		}
		return fileVals[envPrefix+key]
	}

	setString(&cfg.ServerBaseURL, getEnv("SERVER_URL"))
	setString(&cfg.StoragePath, getEnv("STORAGE_PATH"))
	setString(&cfg.LogLevel, getEnv("LOG_LEVEL"))
	setString(&cfg.MetricsAddr, getEnv("METRICS_ADDR"))
	setString(&cfg.ExportDir, getEnv("EXPORT_DIR"))
	setString(&cfg.S3Bucket, getEnv("S3_BUCKET"))
	setString(&cfg.S3Region, getEnv("S3_REGION"))
	setString(&cfg.S3Endpoint, getEnv("S3_ENDPOINT"))
	setString(&cfg.S3AccessKey, getEnv("S3_ACCESS_KEY"))
	setString(&cfg.S3SecretKey, getEnv("S3_SECRET_KEY"))

	if v := getEnv("REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = mustDuration("REQUEST_TIMEOUT", v)
	}
	if v := getEnv("SEARCH_DEBOUNCE"); v != "" {
		cfg.SearchDebounce = mustDuration("SEARCH_DEBOUNCE", v)
	}
	if v := getEnv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			panic(fmt.Sprintf("config: invalid %sPAGE_SIZE %q", envPrefix, v))
		}
		cfg.PageSize = n
	}
	if v := getEnv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			panic(fmt.Sprintf("config: invalid %sRATE_LIMIT %q", envPrefix, v))
		}
		cfg.RateLimit = f
	}
}

func mustDuration(key, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		panic(fmt.Sprintf("config: invalid %s%s %q", envPrefix, key, v))
	}
	return d
}
