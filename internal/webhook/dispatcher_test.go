package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pispas/incident-service/internal/config"
)

type capturedRequest struct {
	payload Payload
	source  string
	content string
}

func TestDispatcherDeliversPayload(t *testing.T) {
	var mu sync.Mutex
	var captured []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		captured = append(captured, capturedRequest{
			payload: payload,
			source:  r.Header.Get("X-Webhook-Source"),
			content: r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := NewDispatcher(config.WebhookConfig{
		BillingURL: server.URL,
		QueueSize:  4,
	}, zap.NewNop())

	dispatcher.Enqueue(Delivery{
		Channel: ChannelBilling,
		Payload: Payload{Type: "billing_resolved", IncidentNumber: "PSP-260829-1234"},
	})
	dispatcher.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, captured, 1)
	require.Equal(t, "billing_resolved", captured[0].payload.Type)
	require.Equal(t, "PSP-260829-1234", captured[0].payload.IncidentNumber)
	require.Equal(t, "pispas-incident-system", captured[0].source)
	require.Equal(t, "application/json", captured[0].content)
}

func TestDispatcherSkipsUnconfiguredChannel(t *testing.T) {
	dispatcher := NewDispatcher(config.WebhookConfig{QueueSize: 4}, zap.NewNop())

	// no URL configured for any channel; must drain without panicking
	dispatcher.Enqueue(Delivery{Channel: ChannelMechanical, Payload: Payload{Type: "mechanical_resolved"}})
	dispatcher.Close()
}

func TestDispatcherSwallowsEndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dispatcher := NewDispatcher(config.WebhookConfig{
		OtherURL:  server.URL,
		QueueSize: 4,
	}, zap.NewNop())

	dispatcher.Enqueue(Delivery{Channel: ChannelOther, Payload: Payload{Type: "other_resolved"}})
	dispatcher.Close()
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(config.WebhookConfig{QueueSize: 1}, zap.NewNop())
	dispatcher.Close()
	dispatcher.Close()
}
