package schema

import "strings"

// Blueprint помогает строить описание таблицы: колонки и команды DDL
type Blueprint struct {
	Table    string
	Columns  []*Column
	Commands []*Command
}

// NewBlueprint создает новый blueprint для таблицы
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{Table: table}
}

// Creating сообщает, создает ли blueprint новую таблицу
func (b *Blueprint) Creating() bool {
	for _, c := range b.Commands {
		if c.Name == CommandCreate {
			return true
		}
	}
	return false
}

// ========== Команды таблицы ==========

// Create добавляет команду CREATE TABLE
func (b *Blueprint) Create() *Blueprint {
	b.addCommand(&Command{Name: CommandCreate})
	return b
}

// Drop добавляет команду DROP TABLE
func (b *Blueprint) Drop() *Blueprint {
	b.addCommand(&Command{Name: CommandDrop})
	return b
}

// DropIfExists добавляет условный DROP TABLE
func (b *Blueprint) DropIfExists() *Blueprint {
	b.addCommand(&Command{Name: CommandDropIfExists})
	return b
}

// Rename переименовывает таблицу
func (b *Blueprint) Rename(to string) *Blueprint {
	b.addCommand(&Command{Name: CommandRename, To: to})
	return b
}

// ========== Колонки ==========

// AddColumn добавляет колонку произвольного типа
func (b *Blueprint) AddColumn(t ColumnType, name string) *Column {
	col := &Column{Name: name, Type: t}
	b.Columns = append(b.Columns, col)
	return col
}

// Increments добавляет автоинкрементный integer (identity primary key)
func (b *Blueprint) Increments(name string) *Column {
	return b.AddColumn(TypeInteger, name).WithAutoIncrement()
}

// BigIncrements добавляет автоинкрементный bigInteger
func (b *Blueprint) BigIncrements(name string) *Column {
	return b.AddColumn(TypeBigInteger, name).WithAutoIncrement()
}

// Char добавляет char(length)
func (b *Blueprint) Char(name string, length int) *Column {
	col := b.AddColumn(TypeChar, name)
	col.Length = lengthOrDefault(length)
	return col
}

// String добавляет string(length); length 0 означает 255
func (b *Blueprint) String(name string, length int) *Column {
	col := b.AddColumn(TypeString, name)
	col.Length = lengthOrDefault(length)
	return col
}

func (b *Blueprint) Text(name string) *Column       { return b.AddColumn(TypeText, name) }
func (b *Blueprint) MediumText(name string) *Column { return b.AddColumn(TypeMediumText, name) }
func (b *Blueprint) LongText(name string) *Column   { return b.AddColumn(TypeLongText, name) }
func (b *Blueprint) Integer(name string) *Column    { return b.AddColumn(TypeInteger, name) }
func (b *Blueprint) BigInteger(name string) *Column { return b.AddColumn(TypeBigInteger, name) }
func (b *Blueprint) TinyInteger(name string) *Column {
	return b.AddColumn(TypeTinyInteger, name)
}
func (b *Blueprint) SmallInteger(name string) *Column {
	return b.AddColumn(TypeSmallInteger, name)
}
func (b *Blueprint) MediumInteger(name string) *Column {
	return b.AddColumn(TypeMediumInteger, name)
}
func (b *Blueprint) Float(name string) *Column       { return b.AddColumn(TypeFloat, name) }
func (b *Blueprint) Double(name string) *Column      { return b.AddColumn(TypeDouble, name) }
func (b *Blueprint) Boolean(name string) *Column     { return b.AddColumn(TypeBoolean, name) }
func (b *Blueprint) JSON(name string) *Column        { return b.AddColumn(TypeJSON, name) }
func (b *Blueprint) JSONB(name string) *Column       { return b.AddColumn(TypeJSONB, name) }
func (b *Blueprint) Date(name string) *Column        { return b.AddColumn(TypeDate, name) }
func (b *Blueprint) DateTime(name string) *Column    { return b.AddColumn(TypeDateTime, name) }
func (b *Blueprint) DateTimeTz(name string) *Column  { return b.AddColumn(TypeDateTimeTz, name) }
func (b *Blueprint) Time(name string) *Column        { return b.AddColumn(TypeTime, name) }
func (b *Blueprint) TimeTz(name string) *Column      { return b.AddColumn(TypeTimeTz, name) }
func (b *Blueprint) Timestamp(name string) *Column   { return b.AddColumn(TypeTimestamp, name) }
func (b *Blueprint) TimestampTz(name string) *Column { return b.AddColumn(TypeTimestampTz, name) }
func (b *Blueprint) Binary(name string) *Column      { return b.AddColumn(TypeBinary, name) }

// Decimal добавляет decimal(total, places)
func (b *Blueprint) Decimal(name string, total, places int) *Column {
	if total == 0 {
		total = DefaultTotal
	}
	if places == 0 {
		places = DefaultPlaces
	}

	col := b.AddColumn(TypeDecimal, name)
	col.Total = total
	col.Places = places
	return col
}

// Numeric добавляет numeric(total, 0)
func (b *Blueprint) Numeric(name string, total int) *Column {
	if total == 0 {
		total = DefaultTotal
	}

	col := b.AddColumn(TypeNumeric, name)
	col.Total = total
	return col
}

// Enum добавляет enum с допустимыми значениями
func (b *Blueprint) Enum(name string, allowed ...string) *Column {
	col := b.AddColumn(TypeEnum, name)
	col.Allowed = allowed
	return col
}

// Timestamps добавляет nullable created_at и updated_at
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Null()
	b.Timestamp("updated_at").Null()
}

// ========== Индексы и ключи ==========

// Primary добавляет первичный ключ
func (b *Blueprint) Primary(columns ...string) *Command {
	return b.indexCommand(CommandPrimary, "primary", columns)
}

// Unique добавляет уникальный индекс
func (b *Blueprint) Unique(columns ...string) *Command {
	return b.indexCommand(CommandUnique, "unique", columns)
}

// Index добавляет обычный индекс
func (b *Blueprint) Index(columns ...string) *Command {
	return b.indexCommand(CommandIndex, "index", columns)
}

// Foreign добавляет внешний ключ; цель задается через ReferencesOn
func (b *Blueprint) Foreign(columns ...string) *Command {
	return b.indexCommand(CommandForeign, "foreign", columns)
}

// DropColumn удаляет колонки
func (b *Blueprint) DropColumn(columns ...string) *Command {
	return b.addCommand(&Command{Name: CommandDropColumn, Columns: columns})
}

// DropPrimary удаляет первичный ключ по имени ограничения
func (b *Blueprint) DropPrimary(index string) *Command {
	return b.addCommand(&Command{Name: CommandDropPrimary, Index: index})
}

// DropUnique удаляет уникальный индекс
func (b *Blueprint) DropUnique(index string) *Command {
	return b.addCommand(&Command{Name: CommandDropUnique, Index: index})
}

// DropIndex удаляет индекс
func (b *Blueprint) DropIndex(index string) *Command {
	return b.addCommand(&Command{Name: CommandDropIndex, Index: index})
}

// DropForeign удаляет внешний ключ
func (b *Blueprint) DropForeign(index string) *Command {
	return b.addCommand(&Command{Name: CommandDropForeign, Index: index})
}

// IndexName строит имя индекса: <table>_<col1>_<col2>_<kind>,
// в нижнем регистре, '-' и '.' заменены на '_'.
// Ограничение длины имени накладывает грамматика диалекта.
func (b *Blueprint) IndexName(kind string, columns []string) string {
	name := b.Table + "_" + strings.Join(columns, "_") + "_" + kind
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return strings.ToLower(name)
}

func (b *Blueprint) indexCommand(name CommandName, kind string, columns []string) *Command {
	return b.addCommand(&Command{
		Name:    name,
		Index:   b.IndexName(kind, columns),
		Columns: columns,
	})
}

func (b *Blueprint) addCommand(c *Command) *Command {
	b.Commands = append(b.Commands, c)
	return c
}

func lengthOrDefault(length int) int {
	if length <= 0 {
		return DefaultStringLength
	}
	return length
}
