// vizgate serves accounts, projects and shared views for an interactive
// visualisation server.
//
// It owns the credential store, the project and view registries, and the
// access resolver that decides what each request may render.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nerrad567/vizgate/internal/access"
	"github.com/nerrad567/vizgate/internal/api"
	"github.com/nerrad567/vizgate/internal/auth"
	"github.com/nerrad567/vizgate/internal/events"
	"github.com/nerrad567/vizgate/internal/infrastructure/config"
	"github.com/nerrad567/vizgate/internal/infrastructure/database"
	"github.com/nerrad567/vizgate/internal/infrastructure/influxdb"
	"github.com/nerrad567/vizgate/internal/infrastructure/logging"
	"github.com/nerrad567/vizgate/internal/infrastructure/mqtt"
	"github.com/nerrad567/vizgate/internal/mail"
	"github.com/nerrad567/vizgate/internal/project"
	"github.com/nerrad567/vizgate/internal/storage"
	"github.com/nerrad567/vizgate/internal/view"
	"github.com/nerrad567/vizgate/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting vizgate",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, cfg.Service.Name, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	emitter, closeMQTT, err := startEvents(cfg, log)
	if err != nil {
		return err
	}
	defer closeMQTT()

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Per-user directories live under <users_data_dir>/userdata.
	layout := storage.NewLayout(filepath.Join(cfg.Storage.UsersDataDir, "userdata"))

	users := auth.NewStore(db.DB)
	lifecycle := auth.NewLifecycle(users, auth.LifecycleConfig{
		Layout:     layout,
		Mailer:     newMailer(cfg, log),
		AutoAccept: cfg.Registration.AutoAccept,
		BaseURL:    cfg.Registration.BaseURL,
		Events:     emitter,
	})
	lifecycle.SetLogger(log.With("component", "auth"))

	projects := project.NewRegistry(db.DB, layout, emitter)
	projects.SetLogger(log.With("component", "project"))

	views := view.NewRegistry(db.DB, emitter)
	views.SetLogger(log.With("component", "view"))

	resolver := access.NewResolver(users, projects, views)
	resolver.SetLogger(log.With("component", "access"))

	health := map[string]api.HealthCheck{"database": db.HealthCheck}
	deps := api.Deps{
		Config:    cfg.API,
		Logger:    log.With("component", "api"),
		Users:     users,
		Lifecycle: lifecycle,
		Projects:  projects,
		Views:     views,
		Access:    resolver,
		Fallback:  access.Context{Title: cfg.Service.Name, ReadOnly: true},
		Health:    health,
		Version:   version,
	}
	if influxClient != nil {
		resolver.SetRecorder(influxClient)
		deps.Metrics = influxClient
		health["influxdb"] = influxClient.HealthCheck
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"registration", registrationMode(cfg),
	)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API, InfluxDB, MQTT, database.
	log.Info("vizgate stopped")
	return nil
}

// openDatabase opens and migrates the database and checks its schema
// version.
func openDatabase(ctx context.Context, cfg *config.Config, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	expected := cfg.Database.SchemaVersion
	if expected == "" {
		expected = migrations.SchemaVersion
	}
	stored, err := db.CheckSchemaVersion(ctx, expected, cfg.Database.IgnoreVersion)
	if err != nil {
		db.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("checking schema version: %w", err)
	}
	if stored != expected {
		log.Warn("schema version mismatch ignored", "stored", stored, "expected", expected)
	}
	log.Info("database migrations complete", "schema_version", stored)
	return db, nil
}

// startEvents connects to MQTT when enabled. The returned close function
// is always safe to call.
func startEvents(cfg *config.Config, log *logging.Logger) (events.Emitter, func(), error) {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT disabled, events are not published")
		return events.Nop{}, func() {}, nil
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.With("component", "mqtt"))
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	closeFn := func() {
		log.Info("disconnecting from MQTT")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}
	return events.NewMQTTEmitter(client, log.With("component", "events")), closeFn, nil
}

// newMailer returns the configured mail sender, or nil when mail is off.
func newMailer(cfg *config.Config, log *logging.Logger) mail.Sender {
	switch {
	case !cfg.Mail.Enabled:
		return nil
	case cfg.Mail.LogOnly:
		log.Warn("mail is log-only; confirmation codes and passwords will be logged")
		return mail.NewLogSender(log.With("component", "mail"))
	default:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}
}

func registrationMode(cfg *config.Config) string {
	switch {
	case cfg.MailAvailable():
		return "mail confirmation"
	case cfg.Registration.AutoAccept:
		return "auto accept"
	default:
		return "disabled"
	}
}

// getConfigPath returns the configuration file path.
// Uses VIZGATE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VIZGATE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
