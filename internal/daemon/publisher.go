package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const defaultSubject = "sitectl.builds"

// Publisher emits build lifecycle events to NATS for downstream consumers
// (deploy hooks, notification bots).
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS.
func NewPublisher(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = defaultSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("sitectl"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	slog.Info("Connected to NATS", "url", url, "subject", subject)
	return &Publisher{conn: conn, subject: subject}, nil
}

// PublishBuildStatus publishes the outcome of one build. Failures are
// logged, not returned; event delivery is best effort.
func (p *Publisher) PublishBuildStatus(_ context.Context, status *BuildStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		slog.Warn("Failed to marshal build status", "error", err)
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		slog.Warn("Failed to publish build status", "error", err)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", "error", err)
	}
}
