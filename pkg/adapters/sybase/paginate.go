package sybase

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

// UnboundedUpper is the upper row number used when no limit is set.
const UnboundedUpper = "999999999999999999999999999"

// Window - окно строк: offset и необязательный limit
type Window struct {
	Offset int64
	Limit  *int64
}

// Bounds returns the inclusive 1-based row numbers of the window:
// offset+1 .. offset+limit, or offset+1 .. UnboundedUpper without a limit.
func (w Window) Bounds() (lower, upper string) {
	lo := big.NewInt(w.Offset)
	lo.Add(lo, big.NewInt(1))

	if w.Limit == nil {
		return lo.String(), UnboundedUpper
	}

	hi := big.NewInt(w.Offset)
	hi.Add(hi, big.NewInt(*w.Limit))
	return lo.String(), hi.String()
}

// pageState - шаг конечного автомата пагинации
type pageState int

const (
	pageStart pageState = iota
	pageKeysResolved
	pageStaged
	pageNumbered
	pageFetched
	pageFailed
)

func (s pageState) String() string {
	switch s {
	case pageStart:
		return "start"
	case pageKeysResolved:
		return "keys_resolved"
	case pageStaged:
		return "staged"
	case pageNumbered:
		return "numbered"
	case pageFetched:
		return "fetched"
	default:
		return "failed"
	}
}

const (
	stageTable  = "#tmpPaginate"
	numberTable = "#tmpTable"
	rowNumber   = "idTmp"
)

// Paginator emulates OFFSET for one statement:
//
//	start -> keys_resolved -> staged -> numbered -> fetched
//
// Every step runs on the same session; the temporary tables are visible
// only to the connection that created them. A Paginator is single use.
type Paginator struct {
	session Session
	tracer  tracer

	state pageState
	table TableRef
	keys  []string
}

// NewPaginator creates a paginator bound to one connection or transaction.
func NewPaginator(session Session, logger zerolog.Logger, recorder querylog.Recorder) *Paginator {
	return &Paginator{session: session, tracer: newTracer(logger, recorder)}
}

// Run executes the pagination sequence for literalSQL, a fully inlined
// select over from, and returns the rows of the window.
func (p *Paginator) Run(ctx context.Context, literalSQL, from string, window Window) ([]adapters.Row, error) {
	if p.state != pageStart {
		return nil, fmt.Errorf("sybase: paginator already used (state %s)", p.state)
	}

	p.table = paginationTable(from)

	rows, err := p.run(ctx, literalSQL, window)
	if p.state >= pageStaged {
		p.cleanup(context.WithoutCancel(ctx))
	}
	if err != nil {
		p.transition(pageFailed)
		return nil, err
	}
	return rows, nil
}

// paginationTable parses the first token of from, so an implicit alias
// ("users u") is not part of the probed table name.
func paginationTable(from string) TableRef {
	fields := strings.Fields(from)
	if len(fields) == 0 {
		return ParseTableRef(from)
	}
	return ParseTableRef(fields[0])
}

func (p *Paginator) run(ctx context.Context, literalSQL string, window Window) ([]adapters.Row, error) {
	keys, err := p.resolveKeys(ctx)
	if err != nil {
		return nil, err
	}
	p.keys = keys
	p.transition(pageKeysResolved)

	staged, err := stageSQL(literalSQL)
	if err != nil {
		return nil, err
	}
	if err := p.exec(ctx, "stage", staged); err != nil {
		return nil, err
	}
	p.transition(pageStaged)

	if err := p.exec(ctx, "number", p.numberSQL()); err != nil {
		return nil, err
	}
	p.transition(pageNumbered)

	lower, upper := window.Bounds()
	result, err := p.fetch(ctx, p.fetchSQL(lower, upper))
	if err != nil {
		return nil, err
	}
	p.transition(pageFetched)

	return result, nil
}

func (p *Paginator) transition(next pageState) {
	p.tracer.logger.Debug().
		Str("table", p.table.Name()).
		Str("from", p.state.String()).
		Str("to", next.String()).
		Msg("pagination step")
	p.state = next
}

// resolveKeys returns the identity column if there is one, otherwise the
// primary key columns in key order.
func (p *Paginator) resolveKeys(ctx context.Context) ([]string, error) {
	identity, err := p.queryNames(ctx, "identity", identitySQL(p.table))
	if err != nil {
		return nil, err
	}
	if len(identity) > 0 {
		return identity[:1], nil
	}

	primary, err := p.queryNames(ctx, "primary", primarySQL(p.table))
	if err != nil {
		return nil, err
	}
	if len(primary) == 0 {
		return nil, &NoDeterministicOrderError{Table: p.table.Name()}
	}
	return primary, nil
}

func (p *Paginator) queryNames(ctx context.Context, step, sqlText string) ([]string, error) {
	entry := querylog.NewEntry(querylog.KindPaginate, sqlText).WithMetadata("step", step)
	start := time.Now()

	rows, err := p.session.QueryContext(ctx, sqlText)
	if err != nil {
		p.tracer.record(ctx, entry.WithDuration(time.Since(start)).WithError(err))
		return nil, err
	}
	defer rows.Close()

	var names []string
	seen := make(map[string]bool)
	for rows.Next() {
		var name *string
		if err := rows.Scan(&name); err != nil {
			p.tracer.record(ctx, entry.WithError(err))
			return nil, err
		}
		if name == nil {
			continue
		}
		n := strings.TrimSpace(*name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		p.tracer.record(ctx, entry.WithError(err))
		return nil, err
	}

	p.tracer.record(ctx, entry.WithDuration(time.Since(start)).WithRowsAffected(int64(len(names))))
	return names, nil
}

func (p *Paginator) exec(ctx context.Context, step, sqlText string) error {
	entry := querylog.NewEntry(querylog.KindPaginate, sqlText).WithMetadata("step", step)
	start := time.Now()

	_, err := p.session.ExecContext(ctx, sqlText)
	entry.WithDuration(time.Since(start))
	if err != nil {
		p.tracer.record(ctx, entry.WithError(err))
		return err
	}
	p.tracer.record(ctx, entry)
	return nil
}

func (p *Paginator) fetch(ctx context.Context, sqlText string) ([]adapters.Row, error) {
	entry := querylog.NewEntry(querylog.KindPaginate, sqlText).WithMetadata("step", "fetch")
	start := time.Now()

	rows, err := p.session.QueryContext(ctx, sqlText)
	if err != nil {
		p.tracer.record(ctx, entry.WithDuration(time.Since(start)).WithError(err))
		return nil, err
	}
	defer rows.Close()

	result, err := fetchAll(rows)
	entry.WithDuration(time.Since(start))
	if err != nil {
		p.tracer.record(ctx, entry.WithError(err))
		return nil, err
	}
	p.tracer.record(ctx, entry.WithRowsAffected(int64(len(result))))
	return result, nil
}

// cleanup drops the temporary tables so a pooled connection can paginate again.
// Failures are logged and ignored.
func (p *Paginator) cleanup(ctx context.Context) {
	tables := []string{stageTable}
	if p.state >= pageNumbered {
		tables = []string{numberTable, stageTable}
	}

	for _, t := range tables {
		if _, err := p.session.ExecContext(ctx, "DROP TABLE "+t); err != nil {
			p.tracer.logger.Debug().Err(err).Str("table", t).Msg("temporary table cleanup failed")
		}
	}
}

func (p *Paginator) numberSQL() string {
	projection := make([]string, len(p.keys))
	for i, k := range p.keys {
		projection[i] = fmt.Sprintf("%s+0 AS %s", k, k)
	}
	return fmt.Sprintf("SELECT %s, %s=identity(18) INTO %s FROM %s",
		strings.Join(projection, ", "), rowNumber, numberTable, stageTable)
}

func (p *Paginator) fetchSQL(lower, upper string) string {
	predicate := make([]string, len(p.keys))
	for i, k := range p.keys {
		predicate[i] = fmt.Sprintf("%s.%s = %s.%s", stageTable, k, numberTable, k)
	}
	return fmt.Sprintf(
		"SELECT %[1]s.*, %[2]s.%[3]s FROM %[2]s INNER JOIN %[1]s ON %[4]s WHERE %[2]s.%[3]s BETWEEN %[5]s AND %[6]s ORDER BY %[2]s.%[3]s ASC",
		stageTable, numberTable, rowNumber, strings.Join(predicate, " AND "), lower, upper)
}

func identitySQL(ref TableRef) string {
	if ref.Kind == RefQualified {
		return fmt.Sprintf(
			"SELECT b.name AS 'column' FROM %[1]s..syscolumns AS b INNER JOIN %[1]s..sysobjects AS a ON a.id = b.id WHERE b.status & 128 = 128 AND a.name = '%[2]s'",
			ref.Database, escapeString(ref.Table))
	}
	return fmt.Sprintf(
		"SELECT name AS 'column' FROM syscolumns WHERE status & 128 = 128 AND object_name(id) = '%s'",
		escapeString(ref.Table))
}

// primarySQL lists the key columns of the primary key index (status 2048).
func primarySQL(ref TableRef) string {
	prefix := ""
	if ref.Kind == RefQualified {
		prefix = ref.Database + ".."
	}
	name := escapeString(ref.Name())
	return fmt.Sprintf(
		"SELECT index_col('%[1]s', i.indid, c.colid) AS primary_key FROM %[2]ssysindexes i, %[2]ssyscolumns c WHERE i.id = c.id AND c.colid <= i.keycnt AND i.status & 2048 = 2048 AND i.id = object_id('%[1]s') ORDER BY c.colid",
		name, prefix)
}

// stageSQL inserts "into #tmpPaginate" before the first top-level FROM
// keyword; FROM inside quotes or parentheses is skipped.
func stageSQL(literalSQL string) (string, error) {
	depth := 0
	inQuote := false

	for i := 0; i < len(literalSQL); i++ {
		c := literalSQL[i]

		switch {
		case c == '\'':
			inQuote = !inQuote
			continue
		case inQuote:
			continue
		case c == '(':
			depth++
			continue
		case c == ')':
			if depth > 0 {
				depth--
			}
			continue
		}

		if depth == 0 && isSpace(c) && i+5 < len(literalSQL) &&
			strings.EqualFold(literalSQL[i+1:i+5], "from") && isSpace(literalSQL[i+5]) {
			return literalSQL[:i] + " into " + stageTable + literalSQL[i:], nil
		}
	}

	return "", fmt.Errorf("sybase: no top-level FROM clause to stage for pagination")
}

func isSpace(c byte) bool {
	return c < 0x80 && unicode.IsSpace(rune(c))
}
