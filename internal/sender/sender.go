// Package sender отправляет JSON-пакеты по HTTP: gzip, подпись HMAC и повтор при временных ошибках.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RoGogDBD/vitals-monitor/internal/config"
	"github.com/RoGogDBD/vitals-monitor/internal/crypto"
	"github.com/go-resty/resty/v2"
)

// Sender отправляет payload по пути path.
type Sender interface {
	Send(ctx context.Context, path string, payload any) error
}

// RestySender — реализация Sender поверх resty.
type RestySender struct {
	Client *resty.Client
	Key    string
}

// NewClient создаёт resty-клиент с базовым адресом и таймаутом.
func NewClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second)
}

// New создаёт RestySender для baseURL. Пустой key отключает подпись.
func New(baseURL, key string) *RestySender {
	return &RestySender{Client: NewClient(baseURL), Key: key}
}

// Send сериализует payload в JSON, сжимает его и отправляет POST-запросом.
// Подпись считается от несжатого JSON.
//
// Ответы 5xx и сетевые ошибки повторяются через config.RetryWithBackoff,
// остальные коды, кроме 200, возвращаются сразу.
func (rs *RestySender) Send(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	compressed, err := config.GzipCompress(body)
	if err != nil {
		return fmt.Errorf("failed to compress payload: %w", err)
	}

	return config.RetryWithBackoff(ctx, func() error {
		req := rs.Client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Content-Encoding", "gzip").
			SetBody(compressed)

		if rs.Key != "" {
			req.SetHeader(crypto.HeaderHash, crypto.Sign(body, rs.Key))
		}

		resp, err := req.Post(path)
		if err != nil {
			return fmt.Errorf("failed to POST %s: %w", path, err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("unexpected status %d: %w", resp.StatusCode(), config.ErrRetriable)
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode())
		}
		return nil
	})
}
