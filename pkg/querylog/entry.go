// Package querylog записывает выполненные (и pretend) запросы адаптера:
// скелет, итоговый литеральный SQL, длительность, результат.
package querylog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Kind - вид записанного запроса
type Kind string

const (
	KindSelect      Kind = "select"
	KindStatement   Kind = "statement"
	KindAffecting   Kind = "affecting"
	KindCatalog     Kind = "catalog"
	KindPaginate    Kind = "paginate"
	KindTransaction Kind = "transaction"
	KindSchema      Kind = "schema"
)

// Status - статус выполнения запроса
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPretend Status = "pretend"
)

// Entry - запись в логе запросов
type Entry struct {
	// ID - уникальный идентификатор записи
	ID string `json:"id"`

	// Timestamp - время выполнения
	Timestamp time.Time `json:"timestamp"`

	Kind   Kind   `json:"kind"`
	Status Status `json:"status"`

	// Skeleton - SQL с плейсхолдерами до подстановки литералов
	Skeleton string `json:"skeleton,omitempty"`

	// SQL - итоговый литеральный SQL, отправленный драйверу
	SQL string `json:"sql"`

	// Bindings - сырые значения, как их передал построитель
	Bindings []any `json:"bindings,omitempty"`

	// Fingerprint - xxh3 скелета (или SQL, если скелета нет)
	Fingerprint string `json:"fingerprint"`

	Duration     time.Duration `json:"duration,omitempty"`
	RowsAffected int64         `json:"rows_affected,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`

	// Metadata - дополнительные метаданные (таблица, шаг пагинации и т.д.)
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEntry - создать новую запись для литерального SQL
func NewEntry(kind Kind, sql string) *Entry {
	return &Entry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		Kind:        kind,
		Status:      StatusSuccess,
		SQL:         sql,
		Fingerprint: Fingerprint(sql),
	}
}

// WithSkeleton - установить скелет и сырые значения; отпечаток считается по скелету
func (e *Entry) WithSkeleton(skeleton string, bindings []any) *Entry {
	e.Skeleton = skeleton
	e.Bindings = bindings
	if skeleton != "" {
		e.Fingerprint = Fingerprint(skeleton)
	}
	return e
}

// WithDuration - установить длительность
func (e *Entry) WithDuration(d time.Duration) *Entry {
	e.Duration = d
	return e
}

// WithRowsAffected - установить количество затронутых строк
func (e *Entry) WithRowsAffected(n int64) *Entry {
	e.RowsAffected = n
	return e
}

// WithError - установить ошибку
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithPretend - пометить запись как невыполненную (pretend)
func (e *Entry) WithPretend() *Entry {
	e.Status = StatusPretend
	return e
}

// WithMetadata - добавить метаданные
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// ToJSON - преобразовать в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление
func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s (%v) %s",
		e.Timestamp.Format(time.RFC3339),
		e.Kind,
		e.Status,
		e.Duration,
		e.SQL,
	)
}

// Clone - создать копию записи
func (e *Entry) Clone() *Entry {
	clone := *e

	if e.Bindings != nil {
		clone.Bindings = append([]any(nil), e.Bindings...)
	}

	if e.Metadata != nil {
		clone.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// Fingerprint - xxh3 хэш текста запроса в hex. Одинаковые скелеты с разными
// значениями дают одинаковый отпечаток.
func Fingerprint(sql string) string {
	return strconv.FormatUint(xxh3.HashString(sql), 16)
}
