package sybase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/alexbrainman/odbc"      // ODBC driver (Sybase ASE ODBC)
	_ "github.com/denisenkom/go-mssqldb" // TDS driver

	"github.com/rs/zerolog"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
	"github.com/ruslano69/tdtp-sybase/pkg/retry"
)

// AdapterType - имя адаптера в фабрике
const AdapterType = "sybase"

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return New()
	})
}

// Adapter implements adapters.Adapter for Sybase ASE.
type Adapter struct {
	db     *sql.DB
	config adapters.Config

	// nativeTx: sql.Tx вместо BEGIN TRAN/COMMIT TRAN на закрепленном соединении
	nativeTx       bool
	nativeOverride *bool

	logger   zerolog.Logger
	recorder querylog.Recorder
	grammar  *Grammar
	exec     *executor

	// connectRetry - политика повторов Ping при подключении
	connectRetry retry.Config
}

var _ adapters.Adapter = (*Adapter)(nil)

// Option настраивает адаптер
type Option func(*Adapter)

// WithLogger sets the zerolog logger. Logging is disabled otherwise.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithQueryLog sets the recorder that receives every executed statement.
func WithQueryLog(recorder querylog.Recorder) Option {
	return func(a *Adapter) { a.recorder = recorder }
}

// WithNativeTransactions forces sql.Tx on or off regardless of the driver.
func WithNativeTransactions(native bool) Option {
	return func(a *Adapter) { a.nativeOverride = &native }
}

// WithTablePrefix sets the table prefix of the schema grammar.
func WithTablePrefix(prefix string) Option {
	return func(a *Adapter) { a.grammar.TablePrefix = prefix }
}

// WithConnectRetry retries the initial ping by policy.
func WithConnectRetry(policy retry.Config) Option {
	return func(a *Adapter) { a.connectRetry = policy }
}

// New creates an adapter that is not connected yet.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		logger:   zerolog.Nop(),
		recorder: querylog.NullLogger{},
		grammar:  NewGrammar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewWithDB wraps an existing pool. driver selects the transaction mode
// the same way Config.Driver does.
func NewWithDB(db *sql.DB, driver string, opts ...Option) *Adapter {
	a := New(opts...)
	a.config = adapters.Config{Type: AdapterType, Driver: driver}
	a.attach(db)
	return a
}

// Connect implements adapters.Adapter interface.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	cfg = cfg.WithDefaults()
	if cfg.Type == "" {
		cfg.Type = AdapterType
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if err := a.ping(ctx, db, cfg.Timeout); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.LogLevel != "" {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			db.Close()
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		a.logger = a.logger.Level(level)
	}

	if cfg.NativeTransactions != nil && a.nativeOverride == nil {
		a.nativeOverride = cfg.NativeTransactions
	}
	a.config = cfg
	a.attach(db)

	a.logger.Info().
		Str("driver", cfg.Driver).
		Bool("native_tx", a.nativeTx).
		Msg("connected to Sybase ASE")

	return nil
}

// ping проверяет сервер; каждая попытка ограничена timeout
func (a *Adapter) ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	policy := a.connectRetry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		a.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("ping failed, retrying")
	}

	retryer, err := retry.NewRetryer(policy)
	if err != nil {
		return err
	}

	return retryer.Do(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
}

func (a *Adapter) attach(db *sql.DB) {
	a.db = db

	// go-mssqldb поддерживает sql.Tx; ODBC драйвер Sybase - нет
	driver := strings.ToLower(a.config.Driver)
	a.nativeTx = driver == "mssql" || driver == "sqlserver"
	if a.nativeOverride != nil {
		a.nativeTx = *a.nativeOverride
	}

	a.exec = &executor{
		session: db,
		pool:    db,
		tracer:  newTracer(a.logger, a.recorder),
	}
}

// Close implements adapters.Adapter interface.
func (a *Adapter) Close(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	a.exec = nil
	return err
}

// Ping implements adapters.Adapter interface.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return ErrNotConnected
	}
	return a.db.PingContext(ctx)
}

// DB returns the underlying pool.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Grammar returns the schema grammar of the adapter.
func (a *Adapter) Grammar() *Grammar {
	return a.grammar
}

// NativeTransactions reports whether transactions use sql.Tx.
func (a *Adapter) NativeTransactions() bool {
	return a.nativeTx
}

// ========== Queries ==========

// Select implements adapters.Executor interface.
func (a *Adapter) Select(ctx context.Context, stmt query.Statement) ([]adapters.Row, error) {
	if a.exec == nil {
		return nil, ErrNotConnected
	}
	return a.exec.Select(ctx, stmt)
}

// Statement implements adapters.Executor interface.
func (a *Adapter) Statement(ctx context.Context, stmt query.Statement) (bool, error) {
	if a.exec == nil {
		return false, ErrNotConnected
	}
	return a.exec.Statement(ctx, stmt)
}

// AffectingStatement implements adapters.Executor interface.
func (a *Adapter) AffectingStatement(ctx context.Context, stmt query.Statement) (int64, error) {
	if a.exec == nil {
		return 0, ErrNotConnected
	}
	return a.exec.AffectingStatement(ctx, stmt)
}

// ========== Metadata ==========

// GetDatabaseVersion implements adapters.Adapter interface.
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	if a.db == nil {
		return "", ErrNotConnected
	}

	var version string
	if err := a.db.QueryRowContext(ctx, "select @@version").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	return strings.TrimSpace(version), nil
}

// GetDatabaseType implements adapters.Adapter interface.
func (a *Adapter) GetDatabaseType() string {
	return AdapterType
}
