// Package schema описывает декларативную модель таблицы (blueprint):
// колонки с абстрактными типами и команды DDL. Модель только хранит данные;
// перевод в SQL конкретного диалекта выполняет грамматика адаптера.
package schema

import "fmt"

// ColumnType - абстрактный тип колонки
type ColumnType string

const (
	TypeChar          ColumnType = "char"
	TypeString        ColumnType = "string"
	TypeText          ColumnType = "text"
	TypeMediumText    ColumnType = "mediumText"
	TypeLongText      ColumnType = "longText"
	TypeInteger       ColumnType = "integer"
	TypeBigInteger    ColumnType = "bigInteger"
	TypeMediumInteger ColumnType = "mediumInteger"
	TypeTinyInteger   ColumnType = "tinyInteger"
	TypeSmallInteger  ColumnType = "smallInteger"
	TypeFloat         ColumnType = "float"
	TypeDouble        ColumnType = "double"
	TypeDecimal       ColumnType = "decimal"
	TypeNumeric       ColumnType = "numeric"
	TypeBoolean       ColumnType = "boolean"
	TypeEnum          ColumnType = "enum"
	TypeJSON          ColumnType = "json"
	TypeJSONB         ColumnType = "jsonb"
	TypeDate          ColumnType = "date"
	TypeDateTime      ColumnType = "dateTime"
	TypeDateTimeTz    ColumnType = "dateTimeTz"
	TypeTime          ColumnType = "time"
	TypeTimeTz        ColumnType = "timeTz"
	TypeTimestamp     ColumnType = "timestamp"
	TypeTimestampTz   ColumnType = "timestampTz"
	TypeBinary        ColumnType = "binary"
)

// Значения по умолчанию для размерных типов
const (
	DefaultStringLength = 255
	DefaultTotal        = 8
	DefaultPlaces       = 2
)

// IsValidType проверяет, что тип известен модели
func IsValidType(t ColumnType) bool {
	switch t {
	case TypeChar, TypeString, TypeText, TypeMediumText, TypeLongText,
		TypeInteger, TypeBigInteger, TypeMediumInteger, TypeTinyInteger, TypeSmallInteger,
		TypeFloat, TypeDouble, TypeDecimal, TypeNumeric, TypeBoolean, TypeEnum,
		TypeJSON, TypeJSONB, TypeDate, TypeDateTime, TypeDateTimeTz,
		TypeTime, TypeTimeTz, TypeTimestamp, TypeTimestampTz, TypeBinary:
		return true
	default:
		return false
	}
}

// Expression - значение по умолчанию, которое выводится в SQL как есть,
// без кавычек (например getdate()).
type Expression string

// Column - описание колонки
type Column struct {
	Name          string
	Type          ColumnType
	Length        int
	Total         int
	Places        int
	Nullable      bool
	Default       any
	AutoIncrement bool

	// Allowed - допустимые значения для TypeEnum
	Allowed []string
}

// Null помечает колонку как допускающую NULL
func (c *Column) Null() *Column {
	c.Nullable = true
	return c
}

// WithDefault задает значение по умолчанию
func (c *Column) WithDefault(value any) *Column {
	c.Default = value
	return c
}

// WithAutoIncrement помечает колонку как автоинкрементную
func (c *Column) WithAutoIncrement() *Column {
	c.AutoIncrement = true
	return c
}

// CommandName - вид команды DDL
type CommandName string

const (
	CommandCreate       CommandName = "create"
	CommandAdd          CommandName = "add"
	CommandPrimary      CommandName = "primary"
	CommandUnique       CommandName = "unique"
	CommandIndex        CommandName = "index"
	CommandForeign      CommandName = "foreign"
	CommandDrop         CommandName = "drop"
	CommandDropIfExists CommandName = "dropIfExists"
	CommandDropColumn   CommandName = "dropColumn"
	CommandDropPrimary  CommandName = "dropPrimary"
	CommandDropUnique   CommandName = "dropUnique"
	CommandDropIndex    CommandName = "dropIndex"
	CommandDropForeign  CommandName = "dropForeign"
	CommandRename       CommandName = "rename"
)

// Command - одна команда DDL над таблицей
type Command struct {
	Name    CommandName
	Index   string
	Columns []string

	// To - новое имя таблицы (CommandRename)
	To string

	// Внешний ключ (CommandForeign)
	On         string
	References []string
	OnDelete   string
	OnUpdate   string
}

// ReferencesOn задает целевую таблицу и колонки внешнего ключа
func (c *Command) ReferencesOn(table string, columns ...string) *Command {
	c.On = table
	c.References = columns
	return c
}

// WithOnDelete задает действие ON DELETE
func (c *Command) WithOnDelete(action string) *Command {
	c.OnDelete = action
	return c
}

// WithOnUpdate задает действие ON UPDATE
func (c *Command) WithOnUpdate(action string) *Command {
	c.OnUpdate = action
	return c
}

// WithName переопределяет сгенерированное имя индекса
func (c *Command) WithName(name string) *Command {
	c.Index = name
	return c
}

// ValidationError ошибка валидации blueprint
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("validation error for table '%s': %s", e.Table, e.Message)
	}
	return fmt.Sprintf("validation error for column '%s.%s': %s", e.Table, e.Column, e.Message)
}
