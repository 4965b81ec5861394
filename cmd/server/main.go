package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/documentor/documentor-backend/internal/ai"
	"github.com/documentor/documentor-backend/internal/api"
	"github.com/documentor/documentor-backend/internal/config"
	"github.com/documentor/documentor-backend/internal/database"
	"github.com/documentor/documentor-backend/internal/extract"
	"github.com/documentor/documentor-backend/internal/identity"
	"github.com/documentor/documentor-backend/internal/repository/postgres"
	"github.com/documentor/documentor-backend/internal/services"
	"github.com/documentor/documentor-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	store, staticDir, err := buildStore(cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize storage")
	}

	if err := os.MkdirAll(cfg.Storage.TempDir, 0o755); err != nil {
		logrus.WithError(err).Fatal("failed to create temp directory")
	}

	gateway, err := ai.NewOpenAIGateway(cfg.AI)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize AI gateway")
	}

	svc := services.New(services.Deps{
		SessionRepo:   postgres.NewSessionRepository(db.DB),
		MessageRepo:   postgres.NewMessageRepository(db.DB),
		FileRepo:      postgres.NewFileRepository(db.DB),
		HighlightRepo: postgres.NewHighlightRepository(db.DB),
		MindMapRepo:   postgres.NewMindMapRepository(db.DB),
		Gateway:       gateway,
		Extractor:     extract.NewPDFExtractor(),
		Store:         store,
		TempDir:       cfg.Storage.TempDir,
	})

	if cfg.Auth.JWTSecret == "" {
		logrus.Warn("no JWT secret configured, set DOCUMENTOR_JWT_SECRET")
	}

	app := api.NewApp(api.Config{
		Services:    svc,
		Verifier:    identity.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   staticDir,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.WithField("addr", addr).Info("DocuMentor backend starting")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// buildStore selects the published-file store. Local storage also needs
// the directory served as static files; S3 serves its own bytes.
func buildStore(cfg config.StorageConfig) (storage.Store, string, error) {
	switch cfg.Backend {
	case "", "local":
		store, err := storage.NewLocalStore(cfg.PublicDir)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	case "s3":
		store, err := storage.NewS3Store(cfg.S3)
		return store, "", err
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
