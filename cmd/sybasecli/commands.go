package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/adapters/sybase"
	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
	"github.com/ruslano69/tdtp-sybase/pkg/core/schema"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

// App - команды CLI поверх адаптера
type App struct {
	adapter *sybase.Adapter
	out     io.Writer
	pretend bool
}

// DDL компилирует blueprint; с apply выполняет команды на сервере
func (a *App) DDL(ctx context.Context, path string, apply bool) error {
	bp, err := schema.LoadBlueprint(path)
	if err != nil {
		return err
	}

	if !apply || a.pretend {
		statements, err := a.adapter.Grammar().Compile(bp)
		if err != nil {
			return err
		}
		for _, s := range statements {
			fmt.Fprintln(a.out, s)
		}
		return nil
	}

	if err := a.adapter.ApplyBlueprint(ctx, bp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Applied blueprint for %s\n", bp.Table)
	return nil
}

// Select выбирает строки таблицы и печатает их как JSON lines
func (a *App) Select(ctx context.Context, table, where string, limit, offset int64) error {
	b := query.Table(table)
	filters, err := ParseWhere(where)
	if err != nil {
		return err
	}
	for _, f := range filters {
		b.Where(f[0], "=", f[1])
	}
	if limit > 0 {
		b.Take(limit)
	}
	if offset > 0 {
		b.Skip(offset)
	}

	stmt, err := query.NewGenerator().Select(b)
	if err != nil {
		return err
	}

	if a.pretend {
		entries, err := a.adapter.Pretend(ctx, func(ex adapters.Executor) error {
			_, err := ex.Select(ctx, stmt)
			return err
		})
		a.printEntries(entries)
		return err
	}

	rows, err := a.adapter.Select(ctx, stmt)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	tables, err := a.adapter.GetTableNames(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(a.out, t)
	}
	return nil
}

func (a *App) Exists(ctx context.Context, table string) error {
	ok, err := a.adapter.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("table %s does not exist", table)
	}
	fmt.Fprintf(a.out, "✓ Table %s exists\n", table)
	return nil
}

func (a *App) printEntries(entries []querylog.Entry) {
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s: %s\n", e.Kind, e.SQL)
	}
}

// ParseWhere разбирает "col=val,col2=val2" в пары колонка/значение
func ParseWhere(where string) ([][2]string, error) {
	if strings.TrimSpace(where) == "" {
		return nil, nil
	}

	var pairs [][2]string
	for _, part := range strings.Split(where, ",") {
		col, val, ok := strings.Cut(part, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid where filter %q (expected col=val)", part)
		}
		pairs = append(pairs, [2]string{col, strings.TrimSpace(val)})
	}
	return pairs, nil
}
