package sybase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

// tracer - zerolog плюс журнал запросов
type tracer struct {
	logger   zerolog.Logger
	recorder querylog.Recorder
}

func newTracer(logger zerolog.Logger, recorder querylog.Recorder) tracer {
	if recorder == nil {
		recorder = querylog.NullLogger{}
	}
	return tracer{logger: logger, recorder: recorder}
}

// record пишет entry в журнал; сбой журнала не влияет на результат запроса
func (t tracer) record(ctx context.Context, entry *querylog.Entry) {
	if err := t.recorder.Log(ctx, entry); err != nil {
		t.logger.Debug().Err(err).Str("entry", entry.ID).Msg("query log append failed")
	}
}

// connPinner отдает отдельное соединение из пула
type connPinner interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// executor runs statements on a session. It backs the adapter itself,
// transactions and pretend handles.
type executor struct {
	session Session

	// pool is nil when session is already a single connection (Conn or Tx)
	pool connPinner

	pretend bool
	tracer  tracer
}

var _ adapters.Executor = (*executor)(nil)

// compile renders a statement into literal SQL on session.
// Catalog queries run only for builder statements that have bindings.
// A statement without bindings is not inlined, so a "?" inside its
// literals survives.
func (e *executor) compile(ctx context.Context, session Session, stmt query.Statement) (string, error) {
	if len(stmt.Bindings) == 0 {
		return stripBrackets(stmt.SQL), nil
	}

	var (
		bindings []CompiledBinding
		err      error
	)

	if stmt.Builder != nil {
		var catalog TypeCatalog
		catalog, err = (&CatalogResolver{session: session, tracer: e.tracer}).Resolve(ctx, stmt.Builder)
		if err != nil {
			return "", err
		}
		bindings, err = CompileBindings(stmt.Builder, catalog)
	} else {
		bindings, err = ClassifyRaw(stmt.Bindings)
	}
	if err != nil {
		return "", err
	}

	if len(bindings) != len(stmt.Bindings) {
		e.tracer.logger.Debug().
			Int("compiled", len(bindings)).
			Int("raw", len(stmt.Bindings)).
			Msg("binding count differs from raw bindings")
	}

	return Inline(stmt.SQL, bindings), nil
}

// Select runs a query and returns the rows of all its result sets.
// A statement with a positive offset is routed through the paginator.
func (e *executor) Select(ctx context.Context, stmt query.Statement) ([]adapters.Row, error) {
	if e.pretend {
		e.recordPretend(ctx, querylog.KindSelect, stmt)
		return []adapters.Row{}, nil
	}

	if stmt.Offset() > 0 {
		return e.paginate(ctx, stmt)
	}

	sqlText, err := e.compile(ctx, e.session, stmt)
	if err != nil {
		return nil, err
	}

	entry := querylog.NewEntry(querylog.KindSelect, sqlText).WithSkeleton(stmt.SQL, stmt.Bindings)
	start := time.Now()

	rows, err := e.session.QueryContext(ctx, sqlText)
	if err != nil {
		e.tracer.record(ctx, entry.WithDuration(time.Since(start)).WithError(err))
		return nil, err
	}
	defer rows.Close()

	result, err := fetchAll(rows)
	entry.WithDuration(time.Since(start))
	if err != nil {
		e.tracer.record(ctx, entry.WithError(err))
		return nil, err
	}

	e.tracer.record(ctx, entry.WithRowsAffected(int64(len(result))))
	return result, nil
}

// Statement runs a statement and reports success.
func (e *executor) Statement(ctx context.Context, stmt query.Statement) (bool, error) {
	if e.pretend {
		e.recordPretend(ctx, querylog.KindStatement, stmt)
		return true, nil
	}

	if _, err := e.exec(ctx, querylog.KindStatement, stmt); err != nil {
		return false, err
	}
	return true, nil
}

// AffectingStatement runs a statement and returns the driver's affected row count.
func (e *executor) AffectingStatement(ctx context.Context, stmt query.Statement) (int64, error) {
	if e.pretend {
		e.recordPretend(ctx, querylog.KindAffecting, stmt)
		return 0, nil
	}

	res, err := e.exec(ctx, querylog.KindAffecting, stmt)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

func (e *executor) exec(ctx context.Context, kind querylog.Kind, stmt query.Statement) (sql.Result, error) {
	sqlText, err := e.compile(ctx, e.session, stmt)
	if err != nil {
		return nil, err
	}

	entry := querylog.NewEntry(kind, sqlText).WithSkeleton(stmt.SQL, stmt.Bindings)
	start := time.Now()

	res, err := e.session.ExecContext(ctx, sqlText)
	entry.WithDuration(time.Since(start))
	if err != nil {
		e.tracer.record(ctx, entry.WithError(err))
		return nil, err
	}

	if n, rerr := res.RowsAffected(); rerr == nil {
		entry.WithRowsAffected(n)
	}
	e.tracer.record(ctx, entry)
	return res, nil
}

// paginate pins one connection so the temporary tables of every step
// stay visible to the next one.
func (e *executor) paginate(ctx context.Context, stmt query.Statement) ([]adapters.Row, error) {
	session := e.session

	if e.pool != nil {
		conn, err := e.pool.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to pin connection for pagination: %w", err)
		}
		defer conn.Close()
		session = conn
	}

	sqlText, err := e.compile(ctx, session, stmt)
	if err != nil {
		return nil, err
	}

	p := &Paginator{session: session, tracer: e.tracer}
	return p.Run(ctx, sqlText, stmt.Builder.From, Window{Offset: stmt.Builder.Offset, Limit: stmt.Builder.Limit})
}

// recordPretend logs a statement that was not executed. Raw classification
// is used for the logged SQL because pretend mode never reads the catalog.
func (e *executor) recordPretend(ctx context.Context, kind querylog.Kind, stmt query.Statement) {
	sqlText := stripBrackets(stmt.SQL)
	if len(stmt.Bindings) > 0 {
		if bindings, err := ClassifyRaw(stmt.Bindings); err == nil {
			sqlText = Inline(stmt.SQL, bindings)
		}
	}

	entry := querylog.NewEntry(kind, sqlText).WithSkeleton(stmt.SQL, stmt.Bindings).WithPretend()
	if stmt.Offset() > 0 {
		entry.WithMetadata("offset", stmt.Builder.Offset)
	}
	e.tracer.record(ctx, entry)
}
