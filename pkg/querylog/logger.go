package querylog

import (
	"context"
	"fmt"
	"sync"
)

// Recorder - то, чем адаптер пишет лог запросов
type Recorder interface {
	Log(ctx context.Context, entry *Entry) error
}

// Logger - fan-out записей во все appenders, синхронно или через канал
type Logger struct {
	appenders    []Appender
	asyncMode    bool
	entryChannel chan *Entry
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	config       LoggerConfig
}

// LoggerConfig - конфигурация логгера
type LoggerConfig struct {
	// AsyncMode - асинхронная запись в appenders
	AsyncMode bool

	// BufferSize - размер буфера для асинхронного режима
	BufferSize int

	// OnError - callback при ошибке записи
	OnError func(error)
}

// NewLogger - создать новый логгер запросов
func NewLogger(config LoggerConfig, appenders ...Appender) *Logger {
	ctx, cancel := context.WithCancel(context.Background())

	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	logger := &Logger{
		appenders: appenders,
		asyncMode: config.AsyncMode,
		ctx:       ctx,
		cancel:    cancel,
		config:    config,
	}

	if logger.asyncMode {
		logger.entryChannel = make(chan *Entry, config.BufferSize)
		logger.wg.Add(1)
		go logger.processEntries()
	}

	return logger
}

// Log - записать entry
func (l *Logger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}

	if l.asyncMode {
		select {
		case l.entryChannel <- entry:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ctx.Done():
			return fmt.Errorf("logger is closed")
		default:
			// Буфер переполнен, записываем синхронно
			return l.writeEntry(ctx, entry)
		}
	}

	return l.writeEntry(ctx, entry)
}

// writeEntry - записать entry во все appenders
func (l *Logger) writeEntry(ctx context.Context, entry *Entry) error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error

	for _, appender := range appenders {
		if err := appender.Append(ctx, entry); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("appender failed: %w", err))
		}
	}

	return firstError
}

// processEntries - обработка entries в асинхронном режиме
func (l *Logger) processEntries() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.entryChannel:
			l.writeEntry(context.Background(), entry)

		case <-l.ctx.Done():
			// Обрабатываем оставшиеся entries
			for {
				select {
				case entry := <-l.entryChannel:
					l.writeEntry(context.Background(), entry)
				default:
					return
				}
			}
		}
	}
}

// Flush - сбросить буферы appenders, поддерживающих Flush
func (l *Logger) Flush() error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error

	for _, appender := range appenders {
		if flusher, ok := appender.(interface{ Flush() error }); ok {
			if err := flusher.Flush(); err != nil && firstError == nil {
				firstError = err
			}
		}
	}

	return firstError
}

// Close - дождаться записи очереди и закрыть appenders
func (l *Logger) Close() error {
	l.cancel()
	l.wg.Wait()
	l.Flush()

	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error

	for _, appender := range appenders {
		if err := appender.Close(); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("close failed: %w", err))
		}
	}

	return firstError
}

// AddAppender - добавить appender
func (l *Logger) AddAppender(appender Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.appenders = append(l.appenders, appender)
}

func (l *Logger) handleError(err error) {
	if l.config.OnError != nil {
		l.config.OnError(err)
	}
}

// Tee - recorder, передающий entry в несколько recorders по порядку.
// Возвращает первую ошибку, остальные recorders все равно вызываются.
func Tee(recorders ...Recorder) Recorder {
	return teeRecorder(recorders)
}

type teeRecorder []Recorder

func (t teeRecorder) Log(ctx context.Context, entry *Entry) error {
	var firstError error
	for _, r := range t {
		if r == nil {
			continue
		}
		if err := r.Log(ctx, entry); err != nil && firstError == nil {
			firstError = err
		}
	}
	return firstError
}

// NullLogger - пустой recorder (по умолчанию в адаптере)
type NullLogger struct{}

// Log - ничего не делает
func (NullLogger) Log(ctx context.Context, entry *Entry) error {
	return nil
}
