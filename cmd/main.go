package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pvfacade/internal/backend"
	"pvfacade/internal/handlers"
	"pvfacade/internal/logger"
	"pvfacade/internal/models"
	"pvfacade/internal/realtime"
	"pvfacade/internal/repository"
	"pvfacade/internal/server"
	"pvfacade/internal/service"

	"github.com/spf13/viper"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultRecorderTick = 15 * time.Second
)

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log_level"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	client := backend.NewClient(
		viper.GetString("backend.base_url"),
		durationOr("backend.timeout_seconds", backend.DefaultTimeout),
		log,
	)
	store := realtime.NewStore(client, realtime.TickerScheduler{}, 0, log)
	cfg := serviceConfig()
	services := service.NewService(store, repos, client, cfg, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// begin polling every configured facade
	pollInterval := durationOr("polling.interval_seconds", defaultPollInterval)
	facadeIDs := make([]string, 0, len(cfg.Facades))
	for _, fc := range cfg.Facades {
		services.Realtime.StartPolling(fc.ID, pollInterval)
		facadeIDs = append(facadeIDs, fc.ID)
	}

	// start recorder (via composed service)
	go services.Recorder.Run(ctx, durationOr("recorder.tick_seconds", defaultRecorderTick))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, store, facadeIDs, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// serviceConfig maps the raw config onto the service layer's knobs.
func serviceConfig() service.Config {
	var facades []service.FacadeConfig
	raw, _ := viper.Get("facades").([]interface{})
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		typ, _ := m["type"].(string)
		facades = append(facades, service.FacadeConfig{
			ID:   id,
			Type: models.FacadeType(typ),
		})
	}
	return service.Config{
		Facades:         facades,
		ModuleGroupSize: viper.GetInt("module_group_size"),
		PanelTempLowC:   viper.GetFloat64("alerts.panel_temp_low_c"),
		SigningKey:      viper.GetString("auth.signing_key"),
		TokenTTL:        time.Duration(viper.GetInt("auth.token_ttl_minutes")) * time.Minute,
	}
}

// durationOr reads a config key holding whole seconds, with a fallback.
func durationOr(key string, def time.Duration) time.Duration {
	if secs := viper.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, store *realtime.Store, facadeIDs []string, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop pollers so in-flight fetches are orphaned, then background goroutines
	for _, id := range facadeIDs {
		store.StopPolling(id)
	}
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
