// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// StoreConfig holds document store configuration settings
type StoreConfig struct {
	// Type selects the backend: "memory", "mongo" or "postgres"
	Type string

	// Mongo settings
	MongoURI    string
	MongoDBName string

	// Postgres settings
	PostgresURL string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Store          *StoreConfig
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultStoreConfig provides default store settings
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Type:        "memory",
		MongoDBName: "hazard_watch",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Silent failure if no .env exists, which is fine
	_ = godotenv.Load()

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	storeConfig := DefaultStoreConfig()

	if storeType := os.Getenv("STORE_TYPE"); storeType != "" {
		storeConfig.Type = storeType
	}

	switch storeConfig.Type {
	case "memory":
		// Nothing to configure; volatile backend for local development.
	case "mongo":
		storeConfig.MongoURI = os.Getenv("MONGODB_URI")
		if storeConfig.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI environment variable is required when STORE_TYPE is mongo")
		}
		if name := os.Getenv("MONGODB_DB"); name != "" {
			storeConfig.MongoDBName = name
		}
	case "postgres":
		storeConfig.PostgresURL = os.Getenv("DATABASE_URL")
		if storeConfig.PostgresURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when STORE_TYPE is postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_TYPE: %q (expected memory, mongo or postgres)", storeConfig.Type)
	}

	config := &Config{
		Server:         serverConfig,
		Store:          storeConfig,
		AllowedOrigins: []string{"*"}, // Default to allow all origins
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}
