package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Strategy:     BackoffConstant,
	}
}

func TestRetryer_SuccessFirstAttempt(t *testing.T) {
	r, err := NewRetryer(fastConfig(3))
	if err != nil {
		t.Fatalf("NewRetryer() error = %v", err)
	}

	attempts := 0
	err = r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})
	if err != nil || attempts != 1 {
		t.Errorf("Do() = %v after %d attempts, want nil after 1", err, attempts)
	}
}

func TestRetryer_SuccessAfterRetries(t *testing.T) {
	r, _ := NewRetryer(fastConfig(5))

	var retried []int
	r.config.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if attempts != 3 || len(retried) != 2 {
		t.Errorf("attempts = %d, retries = %v", attempts, retried)
	}
}

func TestRetryer_GivesUp(t *testing.T) {
	r, _ := NewRetryer(fastConfig(3))
	cause := errors.New("login failed")

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return cause
	})
	if !errors.Is(err, cause) {
		t.Errorf("Do() error = %v, want wrapped cause", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryer_SingleAttemptReturnsErrorUnchanged(t *testing.T) {
	r, _ := NewRetryer(Config{})
	cause := errors.New("boom")

	if err := r.Do(context.Background(), func(ctx context.Context) error { return cause }); err != cause {
		t.Errorf("Do() error = %v, want the same error", err)
	}
}

func TestRetryer_NonRetryable(t *testing.T) {
	cfg := fastConfig(5)
	permanent := errors.New("permission denied")
	cfg.Retryable = func(err error) bool { return !errors.Is(err, permanent) }
	r, _ := NewRetryer(cfg)

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return permanent
	})
	if err != permanent || attempts != 1 {
		t.Errorf("Do() = %v after %d attempts", err, attempts)
	}
}

func TestRetryer_ContextCancelled(t *testing.T) {
	cfg := fastConfig(10)
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = time.Second
	r, _ := NewRetryer(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Do(ctx, func(ctx context.Context) error { return errors.New("down") })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want deadline exceeded", err)
	}
}

func TestRetryer_Delay(t *testing.T) {
	tests := []struct {
		strategy BackoffStrategy
		attempt  int
		want     time.Duration
	}{
		{BackoffConstant, 3, 10 * time.Millisecond},
		{BackoffLinear, 3, 30 * time.Millisecond},
		{BackoffExponential, 3, 40 * time.Millisecond},
		{BackoffExponential, 10, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			r, err := NewRetryer(Config{
				MaxAttempts:  10,
				InitialDelay: 10 * time.Millisecond,
				MaxDelay:     100 * time.Millisecond,
				Strategy:     tt.strategy,
			})
			if err != nil {
				t.Fatalf("NewRetryer() error = %v", err)
			}
			if got := r.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	bad := []Config{
		{MaxAttempts: -1},
		{InitialDelay: time.Second, MaxDelay: time.Millisecond},
		{Strategy: "fibonacci"},
		{Jitter: 1.5},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", c)
		}
	}

	def := DefaultConfig()
	if err := def.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}
