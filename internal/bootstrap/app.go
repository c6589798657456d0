package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/analyses"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/services/health"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/server"
	"resume-analyzer/internal/shared/storage/db"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/skills"
)

// App holds the constructed dependencies and owns their lifecycle.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Repo       analyses.Repo
	Classifier *skills.Classifier
	Pipeline   *analyses.Pipeline
	Service    *analyses.Service
	Handler    *analyses.Handler
}

// Build prepares the store, pipeline, worker pool and router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	if err := buildServices(app); err != nil {
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, err
	}

	var healthSvc *health.Service
	if sqlDB != nil {
		healthSvc = health.NewService(sqlDB)
	} else {
		healthSvc = health.NewService(nil)
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.Handler,
		Health:          healthSvc,
	})

	return app, nil
}

// BuildPipeline constructs the extraction and classification pipeline from config.
func BuildPipeline(cfg config.Config) (*analyses.Pipeline, *skills.Classifier, error) {
	classifier, err := buildClassifier(cfg.Analysis)
	if err != nil {
		return nil, nil, err
	}
	return analyses.NewPipeline(extract.New(), classifier, cfg.Analysis.ContentSampleChars), classifier, nil
}

// BuildRepo returns the durable store when DATABASE_URL is set, or the
// in-memory store for dev-like environments.
func BuildRepo(ctx context.Context, cfg config.Config) (analyses.Repo, *sql.DB, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if sqlDB == nil {
		return analyses.NewMemoryRepo(), nil, nil
	}
	return &analyses.PGRepo{DB: sqlDB}, sqlDB, nil
}

// Close drains the worker pool and then closes the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Service != nil {
		if err := a.Service.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain analyses: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildServices(app *App) error {
	cfg := app.Config

	pipeline, classifier, err := BuildPipeline(cfg)
	if err != nil {
		return err
	}
	validator, err := analyses.NewUploadValidator(cfg.Upload)
	if err != nil {
		return err
	}

	if app.DB != nil {
		app.Repo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.Repo = analyses.NewMemoryRepo()
	}
	app.Classifier = classifier
	app.Pipeline = pipeline
	app.Service = analyses.NewService(app.Repo, pipeline, analyses.PoolOptions{
		Concurrency: cfg.Worker.Concurrency,
		QueueSize:   cfg.Worker.QueueSize,
	})
	app.Handler = analyses.NewHandler(app.Service, validator, cfg.Analysis.ContentSampleChars)
	return nil
}

func buildClassifier(cfg config.AnalysisConfig) (*skills.Classifier, error) {
	catalog := skills.DefaultCatalog()
	if path := strings.TrimSpace(cfg.SkillsCatalogPath); path != "" {
		loaded, err := skills.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		catalog = loaded
		telemetry.Info("bootstrap.skills_catalog", map[string]any{
			"path":       path,
			"categories": len(catalog.Categories),
		})
	}
	// An unset SKILLS_POLICY defers to the catalog's own policy.
	var policy skills.Policy
	if raw := strings.TrimSpace(cfg.SkillsPolicy); raw != "" {
		parsed, err := skills.ParsePolicy(raw)
		if err != nil {
			return nil, err
		}
		policy = parsed
	}
	return skills.New(catalog, policy)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{
				"reason": "DATABASE_URL empty",
				"env":    cfg.Env,
			})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{
				"reason": "database connect failed",
				"error":  err,
			})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}
