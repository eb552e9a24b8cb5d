// Package query описывает метаданные построителя запросов: таблицы, join,
// условия WHERE, значения INSERT/UPDATE, limit и offset.
//
// Builder является снимком одного запроса. Он передается явно во все функции
// компиляции; адаптер диалекта не хранит его между вызовами.
package query

import "fmt"

// WhereKind - вид условия WHERE
type WhereKind int

const (
	// WhereBasic - сравнение "col op ?", одно значение
	WhereBasic WhereKind = iota

	// WhereIn - "col in (?, ?, ...)", по значению на элемент
	WhereIn

	// WhereNotIn - "col not in (?, ?, ...)"
	WhereNotIn

	// WhereNested - вложенная группа условий в скобках
	WhereNested

	// WhereNull - "col is null", без значений
	WhereNull

	// WhereNotNull - "col is not null", без значений
	WhereNotNull
)

// String - строковое представление вида условия
func (k WhereKind) String() string {
	switch k {
	case WhereBasic:
		return "Basic"
	case WhereIn:
		return "In"
	case WhereNotIn:
		return "NotIn"
	case WhereNested:
		return "Nested"
	case WhereNull:
		return "Null"
	case WhereNotNull:
		return "NotNull"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Where - одно условие WHERE
type Where struct {
	Kind     WhereKind
	Column   string
	Operator string
	Value    any
	Values   []any

	// Boolean - связка с предыдущим условием: "and" или "or"
	Boolean string

	// Query - вложенная группа (только для WhereNested)
	Query *Builder
}

// Join - присоединяемая таблица
type Join struct {
	Type     string // inner, left, right
	Table    string
	First    string
	Operator string
	Second   string
}

// Assignment - пара колонка/значение для INSERT и UPDATE
type Assignment struct {
	Column string
	Value  any
}

// Order - элемент ORDER BY
type Order struct {
	Column    string
	Direction string
}

// Builder - снимок метаданных одного запроса
type Builder struct {
	// From - основная таблица: "users", "users as u" или "otherdb..users"
	From string

	Columns []string
	Joins   []Join
	Wheres  []Where

	// Values - строки INSERT, колонки в порядке объявления
	Values [][]Assignment

	// Set - присваивания UPDATE в порядке объявления
	Set []Assignment

	Orders []Order

	// Limit - nil означает без ограничения
	Limit *int64

	Offset int64
}

// Table создает builder для таблицы
func Table(from string) *Builder {
	return &Builder{From: from}
}

// Select задает список колонок
func (b *Builder) Select(columns ...string) *Builder {
	b.Columns = append(b.Columns, columns...)
	return b
}

// Join добавляет inner join
func (b *Builder) Join(table, first, operator, second string) *Builder {
	b.Joins = append(b.Joins, Join{Type: "inner", Table: table, First: first, Operator: operator, Second: second})
	return b
}

// LeftJoin добавляет left join
func (b *Builder) LeftJoin(table, first, operator, second string) *Builder {
	b.Joins = append(b.Joins, Join{Type: "left", Table: table, First: first, Operator: operator, Second: second})
	return b
}

// Where добавляет условие сравнения через "and"
func (b *Builder) Where(column, operator string, value any) *Builder {
	b.Wheres = append(b.Wheres, Where{Kind: WhereBasic, Column: column, Operator: operator, Value: value, Boolean: "and"})
	return b
}

// OrWhere добавляет условие сравнения через "or"
func (b *Builder) OrWhere(column, operator string, value any) *Builder {
	b.Wheres = append(b.Wheres, Where{Kind: WhereBasic, Column: column, Operator: operator, Value: value, Boolean: "or"})
	return b
}

// WhereIn добавляет условие принадлежности множеству
func (b *Builder) WhereIn(column string, values ...any) *Builder {
	b.Wheres = append(b.Wheres, Where{Kind: WhereIn, Column: column, Values: values, Boolean: "and"})
	return b
}

// WhereNotIn добавляет условие непринадлежности множеству
func (b *Builder) WhereNotIn(column string, values ...any) *Builder {
	b.Wheres = append(b.Wheres, Where{Kind: WhereNotIn, Column: column, Values: values, Boolean: "and"})
	return b
}

// WhereNull добавляет "col is null"
func (b *Builder) WhereNull(column string) *Builder {
	b.Wheres = append(b.Wheres, Where{Kind: WhereNull, Column: column, Boolean: "and"})
	return b
}

// WhereNotNull добавляет "col is not null"
func (b *Builder) WhereNotNull(column string) *Builder {
	b.Wheres = append(b.Wheres, Where{Kind: WhereNotNull, Column: column, Boolean: "and"})
	return b
}

// WhereGroup добавляет вложенную группу условий.
// fn получает пустой builder той же таблицы и заполняет его условия.
func (b *Builder) WhereGroup(boolean string, fn func(*Builder)) *Builder {
	nested := &Builder{From: b.From}
	fn(nested)
	b.Wheres = append(b.Wheres, Where{Kind: WhereNested, Query: nested, Boolean: boolean})
	return b
}

// OrderBy добавляет сортировку
func (b *Builder) OrderBy(column, direction string) *Builder {
	b.Orders = append(b.Orders, Order{Column: column, Direction: direction})
	return b
}

// Take задает limit
func (b *Builder) Take(limit int64) *Builder {
	b.Limit = &limit
	return b
}

// Skip задает offset
func (b *Builder) Skip(offset int64) *Builder {
	b.Offset = offset
	return b
}

// AddRow добавляет строку INSERT
func (b *Builder) AddRow(row ...Assignment) *Builder {
	b.Values = append(b.Values, row)
	return b
}

// SetValue добавляет присваивание UPDATE
func (b *Builder) SetValue(column string, value any) *Builder {
	b.Set = append(b.Set, Assignment{Column: column, Value: value})
	return b
}

// Clone возвращает глубокую копию снимка
func (b *Builder) Clone() *Builder {
	if b == nil {
		return nil
	}

	clone := *b
	clone.Columns = append([]string(nil), b.Columns...)
	clone.Joins = append([]Join(nil), b.Joins...)
	clone.Orders = append([]Order(nil), b.Orders...)
	clone.Set = append([]Assignment(nil), b.Set...)

	if b.Limit != nil {
		limit := *b.Limit
		clone.Limit = &limit
	}

	if b.Values != nil {
		clone.Values = make([][]Assignment, len(b.Values))
		for i, row := range b.Values {
			clone.Values[i] = append([]Assignment(nil), row...)
		}
	}

	if b.Wheres != nil {
		clone.Wheres = make([]Where, len(b.Wheres))
		for i, w := range b.Wheres {
			w.Values = append([]any(nil), w.Values...)
			w.Query = w.Query.Clone()
			clone.Wheres[i] = w
		}
	}

	return &clone
}

// Bindings возвращает сырые значения в порядке плейсхолдеров:
// строки INSERT, затем присваивания UPDATE, затем условия WHERE.
func (b *Builder) Bindings() []any {
	var out []any

	for _, row := range b.Values {
		for _, a := range row {
			out = append(out, a.Value)
		}
	}

	for _, a := range b.Set {
		out = append(out, a.Value)
	}

	for _, w := range FlattenAll(b.Wheres) {
		switch w.Kind {
		case WhereBasic:
			out = append(out, w.Value)
		case WhereIn, WhereNotIn:
			out = append(out, w.Values...)
		}
	}

	return out
}

// Statement - то, что построитель передает адаптеру диалекта:
// скелет с плейсхолдерами "?", сырые значения и снимок метаданных.
// Builder может быть nil для сырых запросов.
type Statement struct {
	SQL      string
	Bindings []any
	Builder  *Builder
}

// Raw создает Statement без метаданных построителя
func Raw(sql string, bindings ...any) Statement {
	return Statement{SQL: sql, Bindings: bindings}
}

// Offset возвращает offset снимка или 0 для сырых запросов
func (s Statement) Offset() int64 {
	if s.Builder == nil {
		return 0
	}
	return s.Builder.Offset
}
