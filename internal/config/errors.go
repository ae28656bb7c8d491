package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// retryIntervals определяет интервалы ожидания между попытками повторения операции.
var retryIntervals = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// ErrRetriable помечает ошибку как временную для RetryWithBackoff.
var ErrRetriable = errors.New("retriable")

// RetryWithBackoff выполняет функцию op с повторными попытками и растущей задержкой между ними.
//
// Повтор выполняется только для временных ошибок (см. isRetriableError).
// Если все попытки исчерпаны, возвращается обёртка над последней ошибкой;
// при отмене контекста — ошибка контекста.
func RetryWithBackoff(ctx context.Context, op func() error) error {
	var lastErr error
	for _, wait := range retryIntervals {
		err := op()
		if err == nil {
			return nil
		}
		if !isRetriableError(err) {
			return err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("operation failed after retries: %w", lastErr)
}

// isRetriableError определяет, является ли ошибка временной.
//
// Временными считаются ошибки соединения PostgreSQL (SQLSTATE класса "08"),
// таймауты и отказ в соединении на сетевом уровне, а также ошибки, обёрнутые в ErrRetriable.
func isRetriableError(err error) bool {
	if errors.Is(err, ErrRetriable) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
