// Package container provides dependency injection for the fintrack client.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"time"

	"fintrack/fintrack/internal/analytics"
	"fintrack/fintrack/internal/api"
	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/dashboard"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/mutation"
	"fintrack/fintrack/internal/offline"
	"fintrack/fintrack/internal/query"
	"fintrack/fintrack/internal/selection"
	"fintrack/fintrack/internal/session"
	"fintrack/fintrack/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	session *session.Session

	backend api.Backend
	auth    api.Authenticator

	controller *query.Controller
	store      *store.Store
	selection  *selection.Manager
	mutations  *mutation.Coordinator
	analytics  *analytics.Provider
	dashboard  *dashboard.Loader
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	logger  logging.Logger
	backend api.Backend
	auth    api.Authenticator
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBackend replaces the configured backend. auth may be nil.
func WithBackend(b api.Backend, auth api.Authenticator) Option {
	return func(o *options) {
		o.backend = b
		o.auth = auth
	}
}

// NewContainer creates and wires all application dependencies.
//
// The query controller and the transaction store depend on each other: the
// store reads the controller's query and the controller triggers store
// refreshes. The store is attached to the controller once both exist.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	sess := session.New(cfg.Session.File, logger)
	if err := sess.Load(); err != nil {
		logger.WithError(err).Warn("Ignoring unreadable session file")
	}

	backend, auth := o.backend, o.auth
	if backend == nil {
		var err error
		backend, auth, err = newBackend(cfg, sess, logger)
		if err != nil {
			return nil, err
		}
	}

	controller := query.NewController(logger)
	txStore := store.New(backend, controller, logger)
	controller.Attach(txStore)

	sel := selection.NewManager(txStore, logger)
	mutations := mutation.New(backend, txStore, logger,
		mutation.WithLookup(txStore),
		mutation.WithSelection(sel))

	provider, err := analytics.NewProvider(cfg.Analytics.Source, backend, txStore, logger)
	if err != nil {
		return nil, err
	}
	loader := dashboard.NewLoader(txStore, backend, provider, logger)

	logger.Debug("Container initialized successfully",
		logging.F("offline", cfg.Offline.Enabled),
		logging.F("analytics_source", cfg.Analytics.Source))

	return &Container{
		logger:     logger,
		config:     cfg,
		session:    sess,
		backend:    backend,
		auth:       auth,
		controller: controller,
		store:      txStore,
		selection:  sel,
		mutations:  mutations,
		analytics:  provider,
		dashboard:  loader,
	}, nil
}

func newBackend(cfg *config.Config, sess *session.Session, logger logging.Logger) (api.Backend, api.Authenticator, error) {
	if cfg.Offline.Enabled {
		b, err := offline.Open(cfg.Offline.TransactionsFile, cfg.Offline.CategoriesFile, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open offline backend: %w", err)
		}
		logger.Info("Using offline backend", logging.F(logging.FieldFile, cfg.Offline.TransactionsFile))
		return b, nil, nil
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
		logger,
		api.WithTokenSource(sess))
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetSession returns the login state.
func (c *Container) GetSession() *session.Session {
	return c.session
}

// GetBackend returns the active backend.
func (c *Container) GetBackend() api.Backend {
	return c.backend
}

// GetAuthenticator returns the account API. The offline backend has none.
func (c *Container) GetAuthenticator() (api.Authenticator, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("accounts: %w", apierror.ErrUnsupported)
	}
	return c.auth, nil
}

// GetController returns the filter and sort controller.
func (c *Container) GetController() *query.Controller {
	return c.controller
}

// GetStore returns the transaction store.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetSelection returns the selection manager.
func (c *Container) GetSelection() *selection.Manager {
	return c.selection
}

// GetMutations returns the mutation coordinator.
func (c *Container) GetMutations() *mutation.Coordinator {
	return c.mutations
}

// GetAnalytics returns the analytics provider.
func (c *Container) GetAnalytics() *analytics.Provider {
	return c.analytics
}

// GetDashboard returns the dashboard loader.
func (c *Container) GetDashboard() *dashboard.Loader {
	return c.dashboard
}

// Close detaches the store so late responses are dropped.
func (c *Container) Close() error {
	c.selection.Close()
	c.store.Close()
	c.logger.Debug("Container closed")
	return nil
}
