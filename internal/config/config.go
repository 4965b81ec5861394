package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	AI       AIConfig       `json:"ai"`
	Storage  StorageConfig  `json:"storage"`
}

type ServerConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	CORSOrigins string `json:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

type AuthConfig struct {
	// JWTSecret verifies bearer identity tokens issued by the identity
	// provider. Shared-secret HS256.
	JWTSecret string `json:"jwt_secret"`
	Issuer    string `json:"issuer"`
}

type AIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
	// Model answers questions about small and medium documents.
	Model string `json:"model"`
	// LargeContextModel takes over when the document's estimated token
	// count exceeds TokenLimit.
	LargeContextModel string `json:"large_context_model"`
	TokenLimit        int    `json:"token_limit"`
	MindMapModel      string `json:"mindmap_model"`
}

type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend string `json:"backend"`
	// TempDir holds uploads between receipt and publication.
	TempDir string `json:"temp_dir"`
	// PublicDir is the local backend's published-file directory, served
	// under /uploads.
	PublicDir string   `json:"public_dir"`
	S3        S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
	// PublicBaseURL prefixes object names in File.url values.
	PublicBaseURL string `json:"public_base_url"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".documentor"))
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine; defaults plus env cover it.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "documentor")
	viper.SetDefault("database.database", "documentor")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("auth.issuer", "documentor")
	viper.SetDefault("ai.model", "gpt-4o")
	viper.SetDefault("ai.large_context_model", "gpt-4o")
	viper.SetDefault("ai.mindmap_model", "gpt-4-turbo-preview")
	viper.SetDefault("ai.token_limit", 100000)
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.temp_dir", "uploads")
	viper.SetDefault("storage.public_dir", "public/uploads")
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("DOCUMENTOR_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("DOCUMENTOR_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if origins := os.Getenv("DOCUMENTOR_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = origins
	}
	if secret := os.Getenv("DOCUMENTOR_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}

	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}
}
