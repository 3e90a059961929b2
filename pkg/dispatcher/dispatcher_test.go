package dispatcher_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/dispatcher"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/mocks"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

func webhookAction(t *testing.T, url string) *models.Action {
	t.Helper()

	config, err := json.Marshal(map[string]any{
		"url": url,
		"headers": map[string]any{
			"X-Token": map[string]any{"value": "abc123", "secret": true},
		},
	})
	require.NoError(t, err)

	return &models.Action{
		ID:        "action-1",
		ProjectID: "project-1",
		Type:      models.ActionTypeWebhook,
		Config:    config,
	}
}

func dispatchJob() *events.WebhookDispatch {
	job := &events.WebhookDispatch{
		BaseEvent:    events.NewBaseEvent(events.WebhookDispatchEvent, "project-1"),
		ExecutionID:  "exec-1",
		AutomationID: "automation-1",
		TriggerID:    "trigger-1",
		ActionID:     "action-1",
		EntitySource: models.EventSourceDataset,
		EntityID:     "dataset-1",
		Action:       models.ChangeActionCreated,
		Snapshot:     map[string]any{"id": "dataset-1", "name": "prod-eu"},
	}
	job.ID = "job-1"

	return job
}

func TestDispatch_SuccessfulDelivery(t *testing.T) {
	t.Parallel()

	var (
		received map[string]any
		headers  http.Header
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		headers = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := mocks.NewMockPersistence()
	store.GetMockActionRepository().
		On("GetByID", mock.Anything, "action-1").
		Return(webhookAction(t, server.URL), nil)
	store.GetMockExecutionRepository().
		On("UpdateStatus", mock.Anything, "exec-1", models.ExecutionStatusSuccess, "").
		Return(nil)

	d := dispatcher.NewDispatcher(store, slog.Default())

	err := d.Dispatch(context.Background(), dispatchJob())
	require.NoError(t, err)

	store.GetMockExecutionRepository().AssertExpectations(t)

	assert.Equal(t, "prod-eu", received["name"])
	assert.Equal(t, "created", received["action"])
	assert.Equal(t, "dataset", received["type"])
	assert.Equal(t, map[string]any{"dataset": "v1"}, received["apiVersion"])
	assert.Equal(t, map[string]any{}, received["metadata"], "nullable structured field defaults to empty object")

	assert.Equal(t, "abc123", headers.Get("X-Token"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "hookline/1.0", headers.Get("User-Agent"))
	assert.Equal(t, "dataset.created", headers.Get("X-Hookline-Event"))
	assert.Equal(t, "exec-1", headers.Get("X-Hookline-Delivery"))
}

func TestDispatch_EndpointErrorSettlesExecutionAsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := mocks.NewMockPersistence()
	store.GetMockActionRepository().
		On("GetByID", mock.Anything, "action-1").
		Return(webhookAction(t, server.URL), nil)
	store.GetMockExecutionRepository().
		On("UpdateStatus", mock.Anything, "exec-1", models.ExecutionStatusError, mock.MatchedBy(func(message string) bool {
			return message != ""
		})).
		Return(nil)

	d := dispatcher.NewDispatcher(store, slog.Default())

	// A failed delivery is settled and acked, never returned for redelivery.
	err := d.Dispatch(context.Background(), dispatchJob())
	require.NoError(t, err)

	store.GetMockExecutionRepository().AssertExpectations(t)
}

func TestDispatch_UnreachableEndpointSettlesExecutionAsError(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockPersistence()
	store.GetMockActionRepository().
		On("GetByID", mock.Anything, "action-1").
		Return(webhookAction(t, "http://127.0.0.1:1"), nil)
	store.GetMockExecutionRepository().
		On("UpdateStatus", mock.Anything, "exec-1", models.ExecutionStatusError, mock.Anything).
		Return(nil)

	d := dispatcher.NewDispatcher(store, slog.Default())

	err := d.Dispatch(context.Background(), dispatchJob())
	require.NoError(t, err)

	store.GetMockExecutionRepository().AssertExpectations(t)
}

func TestDispatch_MissingActionSettlesExecutionAsError(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockPersistence()
	store.GetMockActionRepository().
		On("GetByID", mock.Anything, "action-1").
		Return(nil, persistence.ErrActionNotFound)
	store.GetMockExecutionRepository().
		On("UpdateStatus", mock.Anything, "exec-1", models.ExecutionStatusError, mock.Anything).
		Return(nil)

	d := dispatcher.NewDispatcher(store, slog.Default())

	err := d.Dispatch(context.Background(), dispatchJob())
	require.NoError(t, err)

	store.GetMockExecutionRepository().AssertExpectations(t)
}

func TestDispatch_StoreFailurePropagatesForRedelivery(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockPersistence()
	store.GetMockActionRepository().
		On("GetByID", mock.Anything, "action-1").
		Return(nil, persistence.NewStoreError("GetByID", "action", "action-1", assert.AnError))

	d := dispatcher.NewDispatcher(store, slog.Default())

	err := d.Dispatch(context.Background(), dispatchJob())
	assert.Error(t, err)
}
