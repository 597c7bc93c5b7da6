// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cotiza-workers/internal/common/config"
	"cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with retry and error mapping.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines backoff for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// ClientConfigFrom maps the camunda config section onto a ClientConfig.
func ClientConfigFrom(cfg config.CamundaConfig) *ClientConfig {
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Timeout),
		RequestTimeout:         config.GetDuration(cfg.RequestTimeout),
		RetryConfig:            DefaultRetryConfig,
	}
}

// NewClientWithConfig dials the gateway and checks the topology once.
func NewClientWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig
	}
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.GatewayAddress, err)
	}

	return &Client{client: zeebeClient, config: cfg}, nil
}

// Connect retries NewClientWithConfig with backoff until the broker answers.
func Connect(ctx context.Context, cfg *ClientConfig, attempts int, log logger.Logger) (*Client, error) {
	var c *Client
	rc := &RetryConfig{MaxRetries: attempts - 1, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
	err := WithBackoff(ctx, rc, "zeebe connect", log, func(context.Context) error {
		var err error
		c, err = NewClientWithConfig(cfg)
		return err
	})
	return c, err
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// WithBackoff runs op until it succeeds, the attempts are used up or ctx ends.
// The delay doubles from BaseDelay up to MaxDelay.
func WithBackoff(ctx context.Context, rc *RetryConfig, operation string, log logger.Logger, op func(context.Context) error) error {
	var err error
	delay := rc.BaseDelay
	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == rc.MaxRetries {
			break
		}
		if log != nil {
			log.Warn(operation+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     attempt + 1,
				"maxRetries":  rc.MaxRetries,
				"nextRetryIn": delay.String(),
			})
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
		delay *= 2
		if delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, rc.MaxRetries+1, err)
}

// sendWithRetry runs a Zeebe command, retrying only transient failures.
func sendWithRetry(ctx context.Context, rc *RetryConfig, operation string, send func(context.Context) error) error {
	var (
		attempts int
		lastErr  error
	)
	for attempts = 0; attempts <= rc.MaxRetries; attempts++ {
		if lastErr = send(ctx); lastErr == nil {
			return nil
		}
		if !isRetryableZeebeError(lastErr) || attempts == rc.MaxRetries {
			break
		}

		delay := rc.BaseDelay * time.Duration(1<<attempts)
		if delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled after %d attempts: %w", operation, attempts+1, ctx.Err())
		}
	}
	return mapZeebeError(lastErr, operation, attempts)
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError turns a gateway error into an EXTERNAL_SERVICE_ERROR tagged
// with the failure reason.
func mapZeebeError(err error, operation string, attempt int) error {
	msg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempt > 0 {
		msg += fmt.Sprintf(" after %d attempts", attempt+1)
	}

	lower := strings.ToLower(err.Error())
	reason := "unknown"
	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		reason = "timeout"
	case strings.Contains(lower, "connection") || strings.Contains(lower, "unavailable") || strings.Contains(lower, "unreachable"):
		reason = "unavailable"
	case strings.Contains(lower, "not found"):
		reason = "not_found"
	case strings.Contains(lower, "permission denied") || strings.Contains(lower, "unauthorized"):
		reason = "unauthorized"
	}

	stdErr := errors.NewExternalServiceError("zeebe", fmt.Errorf("%s: %w", msg, err))
	if reason == "not_found" || reason == "unauthorized" {
		stdErr.Retryable = false
	}
	return stdErr.WithMetadata("reason", reason)
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
