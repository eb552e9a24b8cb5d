package query

import (
	"fmt"
	"strings"
)

// Generator строит скелеты SQL с плейсхолдерами "?" из Builder.
// Синтаксис семейства T-SQL: "top N" вместо LIMIT, многострочный INSERT
// через "select ... union all select ...". Offset в скелет не попадает,
// постраничную выборку выполняет адаптер диалекта.
type Generator struct{}

// NewGenerator создает новый генератор скелетов
func NewGenerator() *Generator {
	return &Generator{}
}

// Select строит SELECT
func (g *Generator) Select(b *Builder) (Statement, error) {
	if b == nil || b.From == "" {
		return Statement{}, fmt.Errorf("query: select requires a table")
	}

	var parts []string

	head := "select "
	if b.Limit != nil && b.Offset == 0 {
		head += fmt.Sprintf("top %d ", *b.Limit)
	}

	columns := "*"
	if len(b.Columns) > 0 {
		columns = strings.Join(b.Columns, ", ")
	}
	parts = append(parts, head+columns+" from "+b.From)

	for _, j := range b.Joins {
		joinType := j.Type
		if joinType == "" {
			joinType = "inner"
		}
		parts = append(parts, fmt.Sprintf("%s join %s on %s %s %s", joinType, j.Table, j.First, j.Operator, j.Second))
	}

	if where := g.compileWheres(b.Wheres); where != "" {
		parts = append(parts, "where "+where)
	}

	if len(b.Orders) > 0 {
		orders := make([]string, 0, len(b.Orders))
		for _, o := range b.Orders {
			dir := strings.ToLower(o.Direction)
			if dir != "desc" {
				dir = "asc"
			}
			orders = append(orders, o.Column+" "+dir)
		}
		parts = append(parts, "order by "+strings.Join(orders, ", "))
	}

	return g.statement(strings.Join(parts, " "), b), nil
}

// Insert строит INSERT. Все строки должны иметь одинаковый набор колонок.
func (g *Generator) Insert(b *Builder) (Statement, error) {
	if b == nil || b.From == "" {
		return Statement{}, fmt.Errorf("query: insert requires a table")
	}
	if len(b.Values) == 0 {
		return Statement{}, fmt.Errorf("query: insert into %s has no values", b.From)
	}

	first := b.Values[0]
	columns := make([]string, len(first))
	for i, a := range first {
		columns[i] = a.Column
	}

	for i, row := range b.Values[1:] {
		if len(row) != len(columns) {
			return Statement{}, fmt.Errorf("query: insert row %d has %d columns, expected %d", i+1, len(row), len(columns))
		}
		for j, a := range row {
			if a.Column != columns[j] {
				return Statement{}, fmt.Errorf("query: insert row %d column %d is %q, expected %q", i+1, j, a.Column, columns[j])
			}
		}
	}

	placeholders := placeholderList(len(columns))
	sql := fmt.Sprintf("insert into %s (%s) ", b.From, strings.Join(columns, ", "))

	if len(b.Values) == 1 {
		sql += "values (" + placeholders + ")"
	} else {
		selects := make([]string, len(b.Values))
		for i := range b.Values {
			selects[i] = "select " + placeholders
		}
		sql += strings.Join(selects, " union all ")
	}

	return g.statement(sql, b), nil
}

// Update строит UPDATE
func (g *Generator) Update(b *Builder) (Statement, error) {
	if b == nil || b.From == "" {
		return Statement{}, fmt.Errorf("query: update requires a table")
	}
	if len(b.Set) == 0 {
		return Statement{}, fmt.Errorf("query: update of %s has no assignments", b.From)
	}

	sets := make([]string, len(b.Set))
	for i, a := range b.Set {
		sets[i] = a.Column + " = ?"
	}

	sql := fmt.Sprintf("update %s set %s", b.From, strings.Join(sets, ", "))
	if where := g.compileWheres(b.Wheres); where != "" {
		sql += " where " + where
	}

	return g.statement(sql, b), nil
}

// Delete строит DELETE
func (g *Generator) Delete(b *Builder) (Statement, error) {
	if b == nil || b.From == "" {
		return Statement{}, fmt.Errorf("query: delete requires a table")
	}

	sql := "delete from " + b.From
	if where := g.compileWheres(b.Wheres); where != "" {
		sql += " where " + where
	}

	return g.statement(sql, b), nil
}

func (g *Generator) statement(sql string, b *Builder) Statement {
	snapshot := b.Clone()
	return Statement{
		SQL:      sql,
		Bindings: snapshot.Bindings(),
		Builder:  snapshot,
	}
}

// compileWheres конвертирует условия в SQL, сохраняя связки and/or
func (g *Generator) compileWheres(wheres []Where) string {
	var sb strings.Builder

	for _, w := range wheres {
		condition := g.compileWhere(w)
		if condition == "" {
			continue
		}

		if sb.Len() > 0 {
			boolean := strings.ToLower(w.Boolean)
			if boolean != "or" {
				boolean = "and"
			}
			sb.WriteString(" " + boolean + " ")
		}
		sb.WriteString(condition)
	}

	return sb.String()
}

func (g *Generator) compileWhere(w Where) string {
	switch w.Kind {
	case WhereBasic:
		op := w.Operator
		if op == "" {
			op = "="
		}
		return fmt.Sprintf("%s %s ?", w.Column, op)

	case WhereIn:
		if len(w.Values) == 0 {
			return "0 = 1"
		}
		return fmt.Sprintf("%s in (%s)", w.Column, placeholderList(len(w.Values)))

	case WhereNotIn:
		if len(w.Values) == 0 {
			return "1 = 1"
		}
		return fmt.Sprintf("%s not in (%s)", w.Column, placeholderList(len(w.Values)))

	case WhereNull:
		return w.Column + " is null"

	case WhereNotNull:
		return w.Column + " is not null"

	case WhereNested:
		if w.Query == nil {
			return ""
		}
		inner := g.compileWheres(w.Query.Wheres)
		if inner == "" {
			return ""
		}
		return "(" + inner + ")"
	}

	return ""
}

func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
