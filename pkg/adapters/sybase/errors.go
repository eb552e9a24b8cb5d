package sybase

import (
	"errors"
	"fmt"

	"github.com/ruslano69/tdtp-sybase/pkg/core/schema"
)

var (
	// ErrNotConnected is returned by operations on an adapter without a pool.
	ErrNotConnected = errors.New("sybase: adapter is not connected")

	// ErrUnresolvedColumnType marks a binding whose column is absent from the type catalog.
	ErrUnresolvedColumnType = errors.New("sybase: unresolved column type")

	// ErrInvalidNumericLiteral marks a value that cannot be rendered unquoted.
	ErrInvalidNumericLiteral = errors.New("sybase: invalid numeric literal")

	// ErrNoDeterministicOrder marks a paginated table with neither an identity column nor a primary key.
	ErrNoDeterministicOrder = errors.New("sybase: no deterministic row order for pagination")

	// ErrUnsupportedColumnType marks a blueprint column type the grammar cannot render.
	ErrUnsupportedColumnType = errors.New("sybase: unsupported column type")
)

// UnresolvedColumnTypeError - колонка привязки не найдена в каталоге типов
type UnresolvedColumnTypeError struct {
	Column string
}

func (e *UnresolvedColumnTypeError) Error() string {
	return fmt.Sprintf("sybase: no catalog type for column %q", e.Column)
}

func (e *UnresolvedColumnTypeError) Is(target error) bool {
	return target == ErrUnresolvedColumnType
}

// InvalidNumericLiteralError - значение для quote-free колонки не является числом
type InvalidNumericLiteralError struct {
	Column     string
	NativeType string
	Value      any
}

func (e *InvalidNumericLiteralError) Error() string {
	return fmt.Sprintf("sybase: value %v (%T) is not a valid literal for %s column %q",
		e.Value, e.Value, e.NativeType, e.Column)
}

func (e *InvalidNumericLiteralError) Is(target error) bool {
	return target == ErrInvalidNumericLiteral
}

// NoDeterministicOrderError - у таблицы нет ни identity, ни первичного ключа
type NoDeterministicOrderError struct {
	Table string
}

func (e *NoDeterministicOrderError) Error() string {
	return fmt.Sprintf("sybase: table %q has no identity column and no primary key, offset pagination is not possible", e.Table)
}

func (e *NoDeterministicOrderError) Is(target error) bool {
	return target == ErrNoDeterministicOrder
}

// UnsupportedColumnTypeError - тип колонки blueprint не имеет отображения в ASE
type UnsupportedColumnTypeError struct {
	Column string
	Type   schema.ColumnType
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("sybase: column %q has unsupported type %q", e.Column, e.Type)
}

func (e *UnsupportedColumnTypeError) Is(target error) bool {
	return target == ErrUnsupportedColumnType
}

// IsUnresolvedColumnType reports whether err is an unresolved catalog lookup.
func IsUnresolvedColumnType(err error) bool {
	return errors.Is(err, ErrUnresolvedColumnType)
}

// IsInvalidNumericLiteral reports whether err is a numeric normalization failure.
func IsInvalidNumericLiteral(err error) bool {
	return errors.Is(err, ErrInvalidNumericLiteral)
}

// IsNoDeterministicOrder reports whether err is a pagination ordering failure.
func IsNoDeterministicOrder(err error) bool {
	return errors.Is(err, ErrNoDeterministicOrder)
}
