// Package bootstrap wires the stores together from a config file.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/daybook/internal/auth"
	"github.com/sadopc/daybook/internal/config"
	"github.com/sadopc/daybook/internal/planner"
	"github.com/sadopc/daybook/internal/store"
)

var _ planner.Authenticator = (*auth.Local)(nil)

// App holds everything built at start-up. Close releases it.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Store   *store.Store
	Tasks   *planner.TaskStore
	Events  *planner.EventStore
	Account *planner.AccountStore
	Prefs   *planner.PreferenceStore
}

// Open loads the config at cfgPath (the default location when empty) and
// builds the application from it.
func Open(cfgPath string, log func(config.Config) (*zap.Logger, error)) (*App, error) {
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		cfgPath = p
	}
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := log(cfg)
	if err != nil {
		return nil, err
	}
	app, err := New(cfg, logger)
	if err != nil {
		logger.Error("start failed", zap.Error(err))
		logger.Sync()
		return nil, err
	}
	return app, nil
}

// New opens the database named by cfg and loads every store.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var authn planner.Authenticator
	if cfg.Auth.Enabled {
		authn = auth.NewLocal(s.DB(), log)
	}
	opts := []planner.Option{planner.WithSamples(cfg.SeedSamples)}

	app := &App{
		Config:  cfg,
		Log:     log,
		Store:   s,
		Tasks:   planner.NewTaskStore(s, log, opts...),
		Events:  planner.NewEventStore(s, log, opts...),
		Account: planner.NewAccountStore(s, authn, log),
		Prefs:   planner.NewPreferenceStore(s, log),
	}
	app.Tasks.Load()
	app.Events.Load()
	app.Account.Load()
	app.Prefs.Load()

	log.Info("started",
		zap.String("db", cfg.DBPath),
		zap.Bool("auth", cfg.Auth.Enabled),
		zap.Int("tasks", len(app.Tasks.Tasks())),
		zap.Int("events", len(app.Events.Events())),
	)
	return app, nil
}

func (a *App) Close() error {
	a.Log.Sync()
	return a.Store.Close()
}
