package omega

import (
	"database/sql"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/omega-orm/omega/config"
	"github.com/omega-orm/omega/internal/dialect"
	"github.com/omega-orm/omega/internal/identity"
	"github.com/omega-orm/omega/internal/metadata"
	"github.com/omega-orm/omega/internal/statement"
)

// DefaultMaxRetries is the default number of times an operation is retried
// on a transient database error before the wrapped error surfaces.
const DefaultMaxRetries = 3

// EntityManager translates between entity instances and relational rows. It
// owns the per-process metadata registry and identity cache and is safe for
// concurrent use; every operation runs to completion on the caller's
// goroutine, including its retries.
type EntityManager struct {
	db         *sql.DB
	dialect    dialect.Dialect
	metadata   *metadata.Registry
	cache      *identity.Cache
	maxRetries int
	logger     *zap.Logger
	events     Events
}

// Option configures an EntityManager.
type Option func(*EntityManager)

// WithLogger installs a structured logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(em *EntityManager) {
		em.logger = logger
	}
}

// WithMaxRetries overrides the transient-error retry budget.
func WithMaxRetries(n int) Option {
	return func(em *EntityManager) {
		em.maxRetries = n
	}
}

// WithEvents installs observability callbacks.
func WithEvents(events Events) Option {
	return func(em *EntityManager) {
		em.events = events
	}
}

// New creates an entity manager over an open database handle. The driver
// name selects the SQL dialect.
func New(db *sql.DB, driver string, opts ...Option) (*EntityManager, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database handle")
	}
	d, err := dialect.ForDriver(driver)
	if err != nil {
		return nil, err
	}

	em := &EntityManager{
		db:         db,
		dialect:    d,
		metadata:   metadata.NewRegistry(),
		cache:      identity.NewCache(),
		maxRetries: DefaultMaxRetries,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(em)
	}
	return em, nil
}

// Open opens the configured database and creates an entity manager over it.
// The driver must have been registered by the caller.
func Open(cfg *config.Config, opts ...Option) (*EntityManager, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	opts = append([]Option{WithMaxRetries(cfg.Database.MaxRetries)}, opts...)
	return New(db, cfg.Database.Driver, opts...)
}

// DB returns the underlying database handle.
func (em *EntityManager) DB() *sql.DB {
	return em.db
}

// MaxRetries returns the transient-error retry budget.
func (em *EntityManager) MaxRetries() int {
	return em.maxRetries
}

// statementOn builds a statement over db, which is either the pooled handle
// or an open transaction.
func (em *EntityManager) statementOn(db statement.Querier, query string) *statement.Statement {
	return statement.New(db, em.dialect, query)
}

// validIdentifier reports whether id holds a usable identifier value. The
// unset sentinel for numeric keys is any value below one; string and GUID
// keys are unset when empty.
func validIdentifier(id any) bool {
	if id == nil {
		return false
	}
	v := reflect.ValueOf(id)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() > 0
	case reflect.String:
		return v.String() != ""
	default:
		return true
	}
}

// asInt64 folds the driver-dependent representations of an integer value.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case []byte:
		var n int64
		if _, err := fmt.Sscan(string(v), &n); err != nil {
			return 0, false
		}
		return n, true
	case string:
		var n int64
		if _, err := fmt.Sscan(v, &n); err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
