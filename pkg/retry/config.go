package retry

import (
	"fmt"
	"time"
)

// BackoffStrategy определяет рост задержки между попытками
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// Config - политика повторов для установки соединения с сервером
type Config struct {
	// MaxAttempts - число попыток, включая первую. 0 или 1 - без повторов.
	MaxAttempts int

	// InitialDelay - задержка перед первым повтором
	InitialDelay time.Duration

	// MaxDelay - верхняя граница задержки
	MaxDelay time.Duration

	Strategy BackoffStrategy

	// Multiplier для exponential, по умолчанию 2
	Multiplier float64

	// Jitter - доля случайного разброса задержки, 0.0 - 1.0
	Jitter float64

	// Retryable решает, стоит ли повторять после ошибки.
	// nil - повторять любую ошибку, кроме отмены контекста.
	Retryable func(error) bool

	// OnRetry вызывается перед каждым повтором
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Validate проверяет политику и подставляет значения по умолчанию
func (c *Config) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = c.InitialDelay
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}

	switch c.Strategy {
	case "":
		c.Strategy = BackoffExponential
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %s", c.Strategy)
	}

	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}
	return nil
}

// DefaultConfig - три попытки с экспоненциальной задержкой от секунды
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Strategy:     BackoffExponential,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}
