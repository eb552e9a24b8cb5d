package sybase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
	"github.com/ruslano69/tdtp-sybase/pkg/core/schema"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

// ApplyBlueprint implements adapters.Adapter interface.
// Statements run in order; the first failure stops the sequence.
func (a *Adapter) ApplyBlueprint(ctx context.Context, bp *schema.Blueprint) error {
	if a.exec == nil {
		return ErrNotConnected
	}

	statements, err := a.grammar.Compile(bp)
	if err != nil {
		return err
	}

	for i, sqlText := range statements {
		if _, err := a.exec.exec(ctx, querylog.KindSchema, query.Raw(sqlText)); err != nil {
			return fmt.Errorf("schema statement %d/%d for %s failed: %w", i+1, len(statements), bp.Table, err)
		}
	}

	a.logger.Info().Str("table", bp.Table).Int("statements", len(statements)).Msg("blueprint applied")
	return nil
}

// TableExists implements adapters.Adapter interface.
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	rows, err := a.Select(ctx, query.Raw(a.grammar.CompileTableExists(), a.grammar.TablePrefix+tableName))
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// GetTableNames implements adapters.Adapter interface.
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	rows, err := a.Select(ctx, query.Raw(a.grammar.CompileTableListing()))
	if err != nil {
		return nil, err
	}
	return names(rows, "name"), nil
}

// ColumnListing implements adapters.Adapter interface.
func (a *Adapter) ColumnListing(ctx context.Context, tableName string) ([]string, error) {
	rows, err := a.Select(ctx, query.Raw(a.grammar.CompileColumnListing(tableName)))
	if err != nil {
		return nil, err
	}
	return names(rows, "name"), nil
}

func names(rows []adapters.Row, column string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		switch v := row[column].(type) {
		case string:
			out = append(out, strings.TrimSpace(v))
		case []byte:
			out = append(out, strings.TrimSpace(string(v)))
		}
	}
	return out
}
