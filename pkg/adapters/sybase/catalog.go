package sybase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

// Session - то, на чем выполняются запросы: *sql.DB, *sql.Conn или *sql.Tx
type Session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TypeCatalog maps lowercase column keys to native ASE type names.
// A column is reachable by its bare name, by table.column, by
// db..table.column for qualified references and by alias.column.
type TypeCatalog map[string]string

// Lookup returns the native type for a column key as written in the statement.
func (c TypeCatalog) Lookup(column string) (string, error) {
	if t, ok := c[strings.ToLower(strings.TrimSpace(column))]; ok {
		return t, nil
	}
	return "", &UnresolvedColumnTypeError{Column: column}
}

func (c TypeCatalog) add(ref TableRef, column, nativeType string) {
	col := strings.ToLower(column)
	nativeType = strings.ToLower(strings.TrimSpace(nativeType))

	c[col] = nativeType
	for _, prefix := range ref.keyPrefixes() {
		c[prefix+"."+col] = nativeType
	}
}

// pseudoTypes are user types layered over base types; the base type row is used instead.
const pseudoTypes = "'timestamp', 'sysname', 'longsysname', 'nchar', 'nvarchar'"

func catalogQuery(ref TableRef) string {
	if ref.Kind == RefQualified {
		return fmt.Sprintf(`
			SELECT a.name, st.name AS type
			FROM %[1]s..syscolumns a, %[1]s..systypes b, %[1]s..systypes s, %[1]s..systypes st
			WHERE a.usertype = b.usertype
			AND s.usertype = a.usertype
			AND s.type = st.type
			AND st.name NOT IN (%[2]s)
			AND st.usertype < 100
			AND object_name(a.id, db_id('%[3]s')) = '%[4]s'`,
			ref.Database, pseudoTypes, escapeString(ref.Database), escapeString(ref.Table))
	}

	return fmt.Sprintf(`
		SELECT a.name, st.name AS type
		FROM syscolumns a, systypes b, systypes s, systypes st
		WHERE a.usertype = b.usertype
		AND s.usertype = a.usertype
		AND s.type = st.type
		AND st.name NOT IN (%s)
		AND st.usertype < 100
		AND object_name(a.id) = '%s'`,
		pseudoTypes, escapeString(ref.Table))
}

// CatalogResolver reads column types from the system catalogs of every
// table a statement references.
type CatalogResolver struct {
	session Session
	tracer  tracer
}

// NewCatalogResolver creates a resolver over session.
func NewCatalogResolver(session Session, logger zerolog.Logger, recorder querylog.Recorder) *CatalogResolver {
	return &CatalogResolver{session: session, tracer: newTracer(logger, recorder)}
}

// Resolve builds the type catalog for the FROM table and all joined tables.
func (r *CatalogResolver) Resolve(ctx context.Context, b *query.Builder) (TypeCatalog, error) {
	catalog := TypeCatalog{}

	refs := []string{b.From}
	for _, j := range b.Joins {
		refs = append(refs, j.Table)
	}

	for _, raw := range refs {
		ref := ParseTableRef(raw)
		if ref.Kind == RefUnparsed {
			r.tracer.logger.Warn().Str("table", raw).Msg("ambiguous table reference, using it verbatim")
		}
		if err := r.resolveTable(ctx, ref, catalog); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

func (r *CatalogResolver) resolveTable(ctx context.Context, ref TableRef, catalog TypeCatalog) error {
	sqlText := catalogQuery(ref)
	entry := querylog.NewEntry(querylog.KindCatalog, sqlText).WithMetadata("table", ref.Name())
	start := time.Now()

	rows, err := r.session.QueryContext(ctx, sqlText)
	if err != nil {
		r.tracer.record(ctx, entry.WithDuration(time.Since(start)).WithError(err))
		return fmt.Errorf("failed to read column types of %s: %w", ref.Name(), err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var name, nativeType string
		if err := rows.Scan(&name, &nativeType); err != nil {
			r.tracer.record(ctx, entry.WithError(err))
			return fmt.Errorf("failed to scan column type of %s: %w", ref.Name(), err)
		}
		catalog.add(ref, strings.TrimSpace(name), nativeType)
		count++
	}
	if err := rows.Err(); err != nil {
		r.tracer.record(ctx, entry.WithError(err))
		return fmt.Errorf("failed to read column types of %s: %w", ref.Name(), err)
	}

	r.tracer.record(ctx, entry.WithDuration(time.Since(start)).WithRowsAffected(int64(count)))
	r.tracer.logger.Debug().
		Str("table", ref.Name()).
		Str("ref", ref.Kind.String()).
		Int("columns", count).
		Msg("column types resolved")

	return nil
}
