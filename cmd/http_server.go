package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/budget-tracker/api"
	"github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/budget"
	"github.com/frahmantamala/budget-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/budget-tracker/internal/category/postgres"
	"github.com/frahmantamala/budget-tracker/internal/core/events"
	"github.com/frahmantamala/budget-tracker/internal/expense"
	expensePostgres "github.com/frahmantamala/budget-tracker/internal/expense/postgres"
	"github.com/frahmantamala/budget-tracker/internal/income"
	incomePostgres "github.com/frahmantamala/budget-tracker/internal/income/postgres"
	"github.com/frahmantamala/budget-tracker/internal/rule"
	rulePostgres "github.com/frahmantamala/budget-tracker/internal/rule/postgres"
	"github.com/frahmantamala/budget-tracker/internal/transport"
	"github.com/frahmantamala/budget-tracker/internal/transport/rest"
	"github.com/frahmantamala/budget-tracker/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies is the wired application shared by the server, seed and
// import commands.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Bus    *events.EventBus
	Logger *slog.Logger

	Categories *category.Service
	Rules      *rule.Service
	Engine     *rule.Engine
	Expenses   *expense.Service
	Importer   *expense.Importer
	Income     *income.Service
	Budget     *budget.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	router := chi.NewRouter()
	if err := setupRoutes(router, deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "auth", deps.Config.Security.AuthEnabled())

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(router *chi.Mux, deps *Dependencies) error {
	base := transport.NewBaseHandler(deps.Logger)
	handlers := rest.Handlers{
		Budget:   budget.NewHandler(base, deps.Budget),
		Category: category.NewHandler(base, deps.Categories),
		Rule:     rule.NewHandler(base, deps.Rules, deps.Engine),
		Expense:  expense.NewHandler(base, deps.Expenses, deps.Importer),
		Income:   income.NewHandler(base, deps.Income),
	}

	opts := rest.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		JWTSecret:      deps.Config.Security.JWTSecret,
		JWTIssuer:      deps.Config.Security.JWTIssuer,
	}
	if provider, err := newMigrationProvider(deps.DB.DB); err != nil {
		deps.Logger.Warn("schema check disabled", "error", err)
	} else {
		opts.Schema = provider
	}
	if deps.Config.Server.ValidateRequests {
		doc, err := api.Load(context.Background())
		if err != nil {
			return err
		}
		opts.OpenAPI = doc
	}

	return rest.RegisterAllRoutes(router, deps.DB.DB, handlers, opts, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	log := logger.LoggerWrapper()

	settings, err := budget.SettingsFromConfig(config.Budget)
	if err != nil {
		return nil, fmt.Errorf("invalid budget config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(log)
	registerEventHandlers(bus, log)

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Bus:    bus,
		Logger: log,
	}

	ruleRepo := rulePostgres.NewRuleRepository(gormDB)
	expenseRepo := expensePostgres.NewExpenseRepository(gormDB)

	deps.Categories = category.NewService(categoryPostgres.NewCategoryRepository(gormDB), log)
	deps.Rules = rule.NewService(ruleRepo, deps.Categories, log)
	deps.Engine = rule.NewEngine(ruleRepo, log)
	deps.Expenses = expense.NewService(expenseRepo, deps.Categories, deps.Engine, bus, settings.Location, log)
	deps.Importer = expense.NewImporter(expenseRepo, deps.Categories, deps.Engine, bus, settings.Location, log)
	deps.Income = income.NewService(incomePostgres.NewIncomeRepository(db), settings.Location, log)
	deps.Budget = budget.NewService(deps.Categories, deps.Expenses, deps.Income, settings, log)

	return deps, nil
}

func (d *Dependencies) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Bus.Drain(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see one set of connections.
func initGorm(db *sqlx.DB, log *slog.Logger) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.NewSlogLogger(log, gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}
