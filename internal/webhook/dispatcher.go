package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/pispas/incident-service/internal/config"
)

const sourceHeader = "pispas-incident-system"

// Delivery is one pending outbound notification.
type Delivery struct {
	Channel Channel
	Payload Payload
}

// Sender enqueues a delivery for best-effort dispatch.
type Sender interface {
	Enqueue(delivery Delivery)
}

// Dispatcher performs at-most-once webhook delivery off the request path.
// Jobs are queued onto a bounded channel consumed by a single worker; every
// failure mode (missing URL, network error, non-2xx status, full queue) is
// logged and dropped, never surfaced to the caller.
type Dispatcher struct {
	urls   map[Channel]string
	client *http.Client
	logger *zap.Logger
	jobs   chan Delivery
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher builds the dispatcher and starts its worker.
func NewDispatcher(cfg config.WebhookConfig, logger *zap.Logger) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		urls: map[Channel]string{
			ChannelBilling:    cfg.BillingURL,
			ChannelMechanical: cfg.MechanicalURL,
			ChannelOther:      cfg.OtherURL,
		},
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
		jobs:   make(chan Delivery, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands a delivery to the worker without blocking. When the queue is
// full the delivery is dropped; at-most-once semantics permit this.
func (d *Dispatcher) Enqueue(delivery Delivery) {
	select {
	case d.jobs <- delivery:
	default:
		d.logger.Warn("webhook queue full, dropping delivery",
			zap.String("channel", string(delivery.Channel)),
			zap.String("incident_number", delivery.Payload.IncidentNumber))
	}
}

// Close stops accepting deliveries and waits for queued ones to finish.
// In-flight deliveries interrupted by shutdown are lost, which the delivery
// contract allows.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.jobs)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for delivery := range d.jobs {
		d.send(delivery)
	}
}

func (d *Dispatcher) send(delivery Delivery) {
	url := d.urls[delivery.Channel]
	if url == "" {
		d.logger.Debug("webhook channel not configured",
			zap.String("channel", string(delivery.Channel)))
		return
	}

	body, err := json.Marshal(delivery.Payload)
	if err != nil {
		d.logger.Error("marshal webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Source", sourceHeader)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("webhook delivery failed",
			zap.String("channel", string(delivery.Channel)),
			zap.String("incident_number", delivery.Payload.IncidentNumber),
			zap.Error(err))
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Error("webhook delivery rejected",
			zap.String("channel", string(delivery.Channel)),
			zap.String("incident_number", delivery.Payload.IncidentNumber),
			zap.Int("status", resp.StatusCode))
		return
	}

	d.logger.Info("webhook delivered",
		zap.String("channel", string(delivery.Channel)),
		zap.String("incident_number", delivery.Payload.IncidentNumber),
		zap.Int("status", resp.StatusCode))
}
