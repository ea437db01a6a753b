// Package lifecycle orchestrates the ordered startup sequence of the
// data-access layer: resolve configuration, establish the shared
// connection, register finalized schemas, and provision one facade per
// entity. Stages run strictly in order, fail fast, and the sequence
// runs once per process; after a failure no facade is exposed.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/joinery-data/joinery/internal/config"
	"github.com/joinery-data/joinery/internal/ddl"
	"github.com/joinery-data/joinery/internal/metadata"
	"github.com/joinery-data/joinery/internal/model"
)

// FacadeSuffix is appended to an entity's logical name to form its
// lookup key, so the User entity is served by "UserModel".
const FacadeSuffix = "Model"

type stage int

const (
	stageNew stage = iota
	stageConfigResolved
	stageConnected
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithEnsureSchema makes stage 3 apply the generated DDL for each
// registered schema before facades are provisioned, regardless of the
// ensure_schema config flag.
func WithEnsureSchema() Option {
	return func(c *Coordinator) {
		c.forceEnsure = true
	}
}

// Coordinator owns the shared connection and drives the four startup
// stages. After a successful Start it serves facade lookups; it is the
// only component that closes the connection.
type Coordinator struct {
	resolver    config.Resolver
	connector   Connector
	log         *zap.Logger
	forceEnsure bool

	mu       sync.RWMutex
	stage    stage
	started  bool
	consumed bool
	ready    bool
	cfg      *config.Config
	db       *sql.DB
	schemas  map[string]*metadata.Schema
	facades  map[string]*model.Facade
}

// New creates a coordinator over the given stage collaborators.
func New(resolver config.Resolver, connector Connector, opts ...Option) *Coordinator {
	c := &Coordinator{
		resolver:  resolver,
		connector: connector,
		log:       zap.NewNop(),
		schemas:   make(map[string]*metadata.Schema),
		facades:   make(map[string]*model.Facade),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the full pipeline for the given schemas: resolve config,
// connect, then register and provision each schema in order. Any stage
// failure aborts the run, releases the connection, and leaves no facade
// exposed. Start runs once per coordinator.
func (c *Coordinator) Start(ctx context.Context, schemas ...*metadata.Schema) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("%w: start already ran", ErrLifecycleOrder)
	}
	c.started = true
	c.mu.Unlock()

	if err := c.ResolveConfig(ctx); err != nil {
		c.abort()
		return err
	}
	if err := c.Connect(ctx); err != nil {
		c.abort()
		return err
	}
	for _, schema := range schemas {
		if err := c.RegisterSchema(ctx, schema); err != nil {
			c.abort()
			return err
		}
		if err := c.ProvisionFacades(schema); err != nil {
			c.abort()
			return err
		}
	}

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()

	c.log.Info("data access layer ready",
		zap.Int("schemas", len(schemas)),
		zap.Int("facades", len(c.Facades())))
	return nil
}

// ResolveConfig runs stage 1. It fails with ErrConfigResolution when
// the resolver cannot produce a complete configuration.
func (c *Coordinator) ResolveConfig(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consumed {
		return fmt.Errorf("%w: coordinator already aborted", ErrLifecycleOrder)
	}
	if c.stage != stageNew {
		return fmt.Errorf("%w: config already resolved", ErrLifecycleOrder)
	}
	if c.resolver == nil {
		return fmt.Errorf("%w: no resolver supplied", ErrConfigResolution)
	}

	cfg, err := c.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigResolution, err)
	}

	c.cfg = cfg
	c.stage = stageConfigResolved
	c.log.Info("configuration resolved",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name))
	return nil
}

// Connect runs stage 2, delegating to the connector. A failure is
// fatal; there is no degraded mode.
func (c *Coordinator) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consumed {
		return fmt.Errorf("%w: coordinator already aborted", ErrLifecycleOrder)
	}
	switch c.stage {
	case stageNew:
		return fmt.Errorf("%w: connect called before config resolution", ErrLifecycleOrder)
	case stageConnected:
		return fmt.Errorf("%w: already connected", ErrLifecycleOrder)
	}
	if c.connector == nil {
		return fmt.Errorf("%w: no connector supplied", ErrConnection)
	}

	db, err := c.connector.Connect(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	c.db = db
	c.stage = stageConnected
	c.log.Info("database connection established")
	return nil
}

// RegisterSchema runs stage 3 for one schema, attaching it to the live
// connection. The schema must already be finalized; handing over an
// unfinalized schema is an integration bug. With schema provisioning
// enabled, the schema's DDL is applied here.
func (c *Coordinator) RegisterSchema(ctx context.Context, schema *metadata.Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consumed {
		return fmt.Errorf("%w: coordinator already aborted", ErrLifecycleOrder)
	}
	if c.stage != stageConnected {
		return fmt.Errorf("%w: register schema called before connect", ErrLifecycleOrder)
	}
	if schema == nil {
		return fmt.Errorf("cannot register nil schema")
	}
	if !schema.Finalized() {
		return fmt.Errorf("%w: schema %s is not finalized", ErrLifecycleOrder, schema.Name())
	}
	if _, exists := c.schemas[schema.Name()]; exists {
		return fmt.Errorf("%w: schema %s registered twice", ErrLifecycleOrder, schema.Name())
	}

	if c.forceEnsure || c.cfg.EnsureSchema {
		if err := c.ensureSchema(ctx, schema); err != nil {
			return err
		}
	}

	c.schemas[schema.Name()] = schema
	c.log.Info("schema registered", zap.String("schema", schema.Name()))
	return nil
}

// ProvisionFacades runs stage 4 for one registered schema, building a
// facade per entity over the shared connection. The facade set for the
// schema is staged completely before any of it becomes visible. An
// entity that already has a facade on this connection is not rebuilt.
func (c *Coordinator) ProvisionFacades(schema *metadata.Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consumed {
		return fmt.Errorf("%w: coordinator already aborted", ErrLifecycleOrder)
	}
	if schema == nil {
		return fmt.Errorf("cannot provision nil schema")
	}
	if _, registered := c.schemas[schema.Name()]; !registered {
		return fmt.Errorf("%w: schema %s provisioned before registration", ErrLifecycleOrder, schema.Name())
	}

	entities, err := schema.Entities()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLifecycleOrder, err)
	}

	staged := make(map[string]*model.Facade)
	for _, entity := range entities {
		name := entity.Name() + FacadeSuffix
		if existing, ok := c.facades[name]; ok {
			if existing.Entity() != entity {
				return fmt.Errorf("facade name %s already serves a different entity", name)
			}
			continue
		}
		staged[name] = model.New(entity, c.db)
	}

	for name, facade := range staged {
		c.facades[name] = facade
	}
	c.log.Info("facades provisioned",
		zap.String("schema", schema.Name()),
		zap.Int("count", len(staged)))
	return nil
}

// ensureSchema applies the generated DDL for a schema. Statements are
// idempotent, so reruns over an existing database are safe.
func (c *Coordinator) ensureSchema(ctx context.Context, schema *metadata.Schema) error {
	statements, err := ddl.Statements(schema)
	if err != nil {
		return fmt.Errorf("failed to generate DDL for schema %s: %w", schema.Name(), err)
	}
	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply DDL for schema %s: %w", schema.Name(), err)
		}
	}
	c.log.Info("schema objects ensured",
		zap.String("schema", schema.Name()),
		zap.Int("statements", len(statements)))
	return nil
}

// abort tears down whatever the failed pipeline opened and marks the
// coordinator consumed.
func (c *Coordinator) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.log.Warn("failed to close connection during abort", zap.Error(err))
		}
		c.db = nil
	}
	c.facades = make(map[string]*model.Facade)
	c.schemas = make(map[string]*metadata.Schema)
	c.consumed = true
	c.log.Error("startup aborted, no facades exposed")
}

// Facade returns the facade registered under the given name, such as
// "UserModel".
func (c *Coordinator) Facade(name string) (*model.Facade, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.facades[name]
	return f, ok
}

// Facades returns a copy of the facade table.
func (c *Coordinator) Facades() map[string]*model.Facade {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*model.Facade, len(c.facades))
	for k, v := range c.facades {
		out[k] = v
	}
	return out
}

// Config returns the resolved configuration, nil before stage 1.
func (c *Coordinator) Config() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg
}

// DB returns the shared connection, nil before stage 2. Callers borrow
// it; the coordinator stays its owner.
func (c *Coordinator) DB() *sql.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.db
}

// Ready reports whether Start completed successfully.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.ready
}

// Close releases the shared connection and invalidates the facade
// table. Safe to call more than once.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ready = false
	c.facades = make(map[string]*model.Facade)
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
