package sybase

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

const (
	beginTran    = "BEGIN TRAN"
	commitTran   = "COMMIT TRAN"
	rollbackTran = "ROLLBACK TRAN"
)

// Transaction implements adapters.Adapter interface.
//
// fn receives an executor bound to the transaction. An error or panic
// from fn rolls the transaction back and is returned (or re-panicked)
// unchanged. Pagination inside fn runs on the transaction's connection.
func (a *Adapter) Transaction(ctx context.Context, fn func(adapters.Executor) error) error {
	if a.db == nil {
		return ErrNotConnected
	}
	if a.nativeTx {
		return a.nativeTransaction(ctx, fn)
	}
	return a.manualTransaction(ctx, fn)
}

func (a *Adapter) nativeTransaction(ctx context.Context, fn func(adapters.Executor) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	exec := &executor{session: tx, tracer: a.exec.tracer}
	a.logger.Debug().Str("mode", "native").Msg("transaction started")

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(exec); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			a.logger.Warn().Err(rbErr).Msg("rollback failed")
		}
		a.logger.Debug().Str("mode", "native").Err(err).Msg("transaction rolled back")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	a.logger.Debug().Str("mode", "native").Msg("transaction committed")
	return nil
}

// manualTransaction pins one connection and drives the transaction with
// BEGIN TRAN / COMMIT TRAN / ROLLBACK TRAN.
func (a *Adapter) manualTransaction(ctx context.Context, fn func(adapters.Executor) error) error {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to pin connection for transaction: %w", err)
	}
	defer conn.Close()

	exec := &executor{session: conn, tracer: a.exec.tracer}

	if err := a.control(ctx, exec, beginTran); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	a.logger.Debug().Str("mode", "manual").Msg("transaction started")

	rollback := func() {
		if rbErr := a.control(context.WithoutCancel(ctx), exec, rollbackTran); rbErr != nil {
			a.logger.Warn().Err(rbErr).Msg("rollback failed")
		}
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := fn(exec); err != nil {
		rollback()
		a.logger.Debug().Str("mode", "manual").Err(err).Msg("transaction rolled back")
		return err
	}

	if err := a.control(ctx, exec, commitTran); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	a.logger.Debug().Str("mode", "manual").Msg("transaction committed")
	return nil
}

func (a *Adapter) control(ctx context.Context, exec *executor, sqlText string) error {
	entry := querylog.NewEntry(querylog.KindTransaction, sqlText)
	start := time.Now()

	_, err := exec.session.ExecContext(ctx, sqlText)
	entry.WithDuration(time.Since(start))
	if err != nil {
		exec.tracer.record(ctx, entry.WithError(err))
		return err
	}
	exec.tracer.record(ctx, entry)
	return nil
}

// Pretend implements adapters.Adapter interface.
//
// fn receives an executor that records statements instead of running
// them: Select returns no rows, Statement returns true and
// AffectingStatement returns 0. The recorded entries are returned and also
// sent to the adapter's query log.
func (a *Adapter) Pretend(ctx context.Context, fn func(adapters.Executor) error) ([]querylog.Entry, error) {
	captured := querylog.NewMemoryAppender(0)

	exec := &executor{
		pretend: true,
		tracer:  newTracer(a.logger, querylog.Tee(a.recorder, querylog.NewLogger(querylog.LoggerConfig{}, captured))),
	}

	err := fn(exec)
	return captured.Entries(), err
}
