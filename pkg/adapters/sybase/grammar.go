package sybase

import (
	"fmt"
	"strings"

	"github.com/ruslano69/tdtp-sybase/pkg/core/schema"
)

// MaxIdentifierLength - предел длины имен ограничений и индексов в ASE
const MaxIdentifierLength = 30

// LimitIdentifier truncates a constraint or index name to MaxIdentifierLength bytes.
func LimitIdentifier(name string) string {
	if len(name) <= MaxIdentifierLength {
		return name
	}
	return name[:MaxIdentifierLength]
}

// Grammar compiles blueprints into Sybase ASE DDL.
type Grammar struct {
	// TablePrefix is prepended to every table name.
	TablePrefix string
}

// NewGrammar creates a grammar without a table prefix.
func NewGrammar() *Grammar {
	return &Grammar{}
}

// Compile validates the blueprint and returns one statement per command.
// Columns of a blueprint that does not create its table are added with an
// implicit ALTER TABLE ... ADD that runs before the explicit commands.
func (g *Grammar) Compile(bp *schema.Blueprint) ([]string, error) {
	if bp != nil {
		for _, col := range bp.Columns {
			if _, ok := columnTypes[col.Type]; !ok {
				return nil, &UnsupportedColumnTypeError{Column: col.Name, Type: col.Type}
			}
		}
	}
	if err := schema.Validate(bp); err != nil {
		return nil, err
	}

	commands := bp.Commands
	if !bp.Creating() && len(bp.Columns) > 0 {
		commands = append([]*schema.Command{{Name: schema.CommandAdd}}, commands...)
	}

	statements := make([]string, 0, len(commands))
	for _, cmd := range commands {
		sqlText, err := g.compileCommand(bp, cmd)
		if err != nil {
			return nil, err
		}
		statements = append(statements, sqlText)
	}
	return statements, nil
}

func (g *Grammar) compileCommand(bp *schema.Blueprint, cmd *schema.Command) (string, error) {
	switch cmd.Name {
	case schema.CommandCreate:
		return g.CompileCreate(bp)
	case schema.CommandAdd:
		return g.CompileAdd(bp)
	case schema.CommandPrimary:
		return g.CompilePrimary(bp, cmd), nil
	case schema.CommandUnique:
		return g.CompileUnique(bp, cmd), nil
	case schema.CommandIndex:
		return g.CompileIndex(bp, cmd), nil
	case schema.CommandForeign:
		return g.CompileForeign(bp, cmd), nil
	case schema.CommandDrop:
		return g.CompileDrop(bp), nil
	case schema.CommandDropIfExists:
		return g.CompileDropIfExists(bp), nil
	case schema.CommandDropColumn:
		return g.CompileDropColumn(bp, cmd), nil
	case schema.CommandDropPrimary, schema.CommandDropForeign:
		return g.CompileDropConstraint(bp, cmd), nil
	case schema.CommandDropUnique, schema.CommandDropIndex:
		return g.CompileDropIndex(bp, cmd), nil
	case schema.CommandRename:
		return g.CompileRename(bp, cmd), nil
	default:
		return "", fmt.Errorf("sybase: unknown schema command %q", cmd.Name)
	}
}

// ========== Таблицы ==========

// CompileCreate - CREATE TABLE t (cols)
func (g *Grammar) CompileCreate(bp *schema.Blueprint) (string, error) {
	cols, err := g.columns(bp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", g.wrapTable(bp.Table), strings.Join(cols, ", ")), nil
}

// CompileAdd - ALTER TABLE t ADD cols
func (g *Grammar) CompileAdd(bp *schema.Blueprint) (string, error) {
	cols, err := g.columns(bp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD %s", g.wrapTable(bp.Table), strings.Join(cols, ", ")), nil
}

func (g *Grammar) CompileDrop(bp *schema.Blueprint) string {
	return "DROP TABLE " + g.wrapTable(bp.Table)
}

func (g *Grammar) CompileDropIfExists(bp *schema.Blueprint) string {
	table := g.wrapTable(bp.Table)
	return fmt.Sprintf("IF EXISTS (SELECT * FROM sysobjects WHERE type = 'U' AND name = '%s') DROP TABLE %s",
		escapeString(table), table)
}

func (g *Grammar) CompileRename(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("sp_rename %s, %s", g.wrapTable(bp.Table), g.wrapTable(cmd.To))
}

// ========== Колонки ==========

func (g *Grammar) CompileDropColumn(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", g.wrapTable(bp.Table), strings.Join(cmd.Columns, ", "))
}

func (g *Grammar) columns(bp *schema.Blueprint) ([]string, error) {
	cols := make([]string, 0, len(bp.Columns))
	for _, col := range bp.Columns {
		def, err := columnDefinition(col)
		if err != nil {
			return nil, err
		}
		cols = append(cols, def)
	}
	return cols, nil
}

// ========== Индексы и ключи ==========

func (g *Grammar) CompilePrimary(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s)",
		g.wrapTable(bp.Table), LimitIdentifier(cmd.Index), strings.Join(cmd.Columns, ", "))
}

func (g *Grammar) CompileUnique(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
		LimitIdentifier(cmd.Index), g.wrapTable(bp.Table), strings.Join(cmd.Columns, ", "))
}

func (g *Grammar) CompileIndex(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		LimitIdentifier(cmd.Index), g.wrapTable(bp.Table), strings.Join(cmd.Columns, ", "))
}

func (g *Grammar) CompileForeign(bp *schema.Blueprint, cmd *schema.Command) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.wrapTable(bp.Table), LimitIdentifier(cmd.Index), strings.Join(cmd.Columns, ", "),
		g.wrapTable(cmd.On), strings.Join(cmd.References, ", "))

	if cmd.OnDelete != "" {
		sb.WriteString(" ON DELETE " + cmd.OnDelete)
	}
	if cmd.OnUpdate != "" {
		sb.WriteString(" ON UPDATE " + cmd.OnUpdate)
	}
	return sb.String()
}

// CompileDropConstraint - DROP CONSTRAINT для первичного и внешнего ключа
func (g *Grammar) CompileDropConstraint(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.wrapTable(bp.Table), LimitIdentifier(cmd.Index))
}

// CompileDropIndex - DROP INDEX для unique и обычного индекса
func (g *Grammar) CompileDropIndex(bp *schema.Blueprint, cmd *schema.Command) string {
	return fmt.Sprintf("DROP INDEX %s ON %s", LimitIdentifier(cmd.Index), g.wrapTable(bp.Table))
}

// ========== Introspection ==========

// CompileTableExists returns a statement with one "?" for the table name.
func (g *Grammar) CompileTableExists() string {
	return "SELECT * FROM sysobjects WHERE type = 'U' AND name = ?"
}

// CompileColumnListing returns the column names of a user table.
func (g *Grammar) CompileColumnListing(table string) string {
	return fmt.Sprintf(
		"SELECT col.name FROM syscolumns col JOIN sysobjects obj ON col.id = obj.id WHERE obj.type = 'U' AND obj.name = '%s'",
		escapeString(g.wrapTable(table)))
}

// CompileTableListing returns the names of all user tables.
func (g *Grammar) CompileTableListing() string {
	return "SELECT name FROM sysobjects WHERE type = 'U' ORDER BY name"
}

func (g *Grammar) wrapTable(table string) string {
	return g.TablePrefix + table
}
