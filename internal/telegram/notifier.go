package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"alpha-radar/internal/domain"
)

// sendTimeout bounds one alert delivery.
const sendTimeout = 10 * time.Second

// Notifier formats trending alerts and sends them to the user's self chat.
// In dry-run mode it logs the alert instead of sending it.
type Notifier struct {
	client *Client
	dryRun bool
	logger *slog.Logger
}

// NewNotifier creates a notifier over the gateway client.
func NewNotifier(client *Client, dryRun bool, logger *slog.Logger) *Notifier {
	return &Notifier{
		client: client,
		dryRun: dryRun,
		logger: logger.With("component", "notifier"),
	}
}

// Send delivers one alert. A delivery failure is returned with the full
// payload already logged so the operator can recover the alert manually;
// it is never retried here.
func (n *Notifier) Send(ctx context.Context, t *domain.TrendingToken) error {
	msg := FormatAlert(t)

	if n.dryRun {
		n.logger.Info("dry-run alert", "contract", t.Contract, "chain", t.Chain,
			"score", t.Score, "message", msg)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := n.client.SendSelf(ctx, msg); err != nil {
		n.logger.Error("alert delivery failed", "contract", t.Contract,
			"chain", t.Chain, "score", t.Score, "payload", msg, "error", err)
		return fmt.Errorf("notify %s: %w", t.Contract, err)
	}

	n.logger.Info("alert sent", "contract", t.Contract, "chain", t.Chain, "score", t.Score)
	return nil
}
