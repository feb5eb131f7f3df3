package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stroke-mcs/internal/economics"
)

// ModelConfig holds the simulation defaults. CLI flags and MCP arguments override them per call.
type ModelConfig struct {
	ThresholdICER   float64
	CostYear        int
	Simulations     int
	Workers         int
	Seed            uint64 // 0 means seed from the clock
	TimeUncertainty bool
	LVOUncertainty  bool
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Model               ModelConfig
	DataPath            string
	LogDir              string
	ReportsDir          string
	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	reportsDir := filepath.Join(dataPath, "reports")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", reportsDir).Msg("Failed to create reports directory")
	}

	// 4. Model defaults
	model, err := loadModel()
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Model:               model,
		DataPath:            dataPath,
		LogDir:              logDir,
		ReportsDir:          reportsDir,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}, nil
}

func loadModel() (ModelConfig, error) {
	threshold, err := strconv.ParseFloat(getEnv("STROKE_ICER_THRESHOLD", "100000"), 64)
	if err != nil || threshold <= 0 {
		return ModelConfig{}, fmt.Errorf("STROKE_ICER_THRESHOLD must be a positive number: %q", os.Getenv("STROKE_ICER_THRESHOLD"))
	}
	year, err := strconv.Atoi(getEnv("STROKE_COST_YEAR", "2016"))
	if err != nil || year < economics.FirstCPIYear || year > economics.LastCPIYear {
		return ModelConfig{}, fmt.Errorf("STROKE_COST_YEAR must be a year in [%d, %d]: %q",
			economics.FirstCPIYear, economics.LastCPIYear, os.Getenv("STROKE_COST_YEAR"))
	}
	sims, err := strconv.Atoi(getEnv("STROKE_SIMULATIONS", "1000"))
	if err != nil || sims <= 0 {
		return ModelConfig{}, fmt.Errorf("STROKE_SIMULATIONS must be a positive integer: %q", os.Getenv("STROKE_SIMULATIONS"))
	}
	workers, err := strconv.Atoi(getEnv("STROKE_WORKERS", strconv.Itoa(runtime.GOMAXPROCS(0))))
	if err != nil || workers <= 0 {
		return ModelConfig{}, fmt.Errorf("STROKE_WORKERS must be a positive integer: %q", os.Getenv("STROKE_WORKERS"))
	}
	seed, err := strconv.ParseUint(getEnv("STROKE_SEED", "0"), 10, 64)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("STROKE_SEED must be an unsigned integer: %q", os.Getenv("STROKE_SEED"))
	}

	return ModelConfig{
		ThresholdICER:   threshold,
		CostYear:        year,
		Simulations:     sims,
		Workers:         workers,
		Seed:            seed,
		TimeUncertainty: getEnvBool("STROKE_TIME_UNCERTAINTY", true),
		LVOUncertainty:  getEnvBool("STROKE_LVO_UNCERTAINTY", true),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
