package processor_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/channels/gochannel"
	"github.com/hooklinehq/hookline/pkg/dispatcher"
	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence/file"
	"github.com/hooklinehq/hookline/pkg/processor"
)

// Full pipeline over a real in-memory bus: a change event flows through the
// processor, the webhook job crosses the bus, and the dispatcher delivers it
// and settles the execution. The handler asserts the execution record is
// already pending when the job becomes visible.
func TestPipeline_ChangeEventToDeliveredWebhook(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := file.NewPersistence(t.TempDir())

	delivered := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			delivered <- payload
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	trigger := &models.Trigger{
		ProjectID:   "project-1",
		Name:        "prod datasets",
		EventSource: models.EventSourceDataset,
		Status:      models.TriggerStatusActive,
	}
	require.NoError(t, store.Triggers().Save(ctx, trigger))

	action := &models.Action{
		ProjectID: "project-1",
		Type:      models.ActionTypeWebhook,
		Config:    json.RawMessage(fmt.Sprintf(`{"url":%q}`, server.URL)),
	}
	require.NoError(t, store.Actions().Save(ctx, action))

	automation := &models.Automation{
		ProjectID: "project-1",
		Name:      "notify ops",
		TriggerID: trigger.ID,
		ActionID:  action.ID,
	}
	require.NoError(t, store.Automations().Save(ctx, automation))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	d := dispatcher.NewDispatcher(store, slog.Default())
	settled := make(chan string, 1)

	err = bus.Handle(events.WebhookDispatchEvent, func(ctx context.Context, event any) error {
		job, ok := event.(*events.WebhookDispatch)
		require.True(t, ok)

		// The execution record must exist, pending, before the job is
		// visible on the bus.
		execution, err := store.Executions().GetByID(ctx, job.ExecutionID)
		require.NoError(t, err)
		require.Equal(t, models.ExecutionStatusPending, execution.Status)

		err = d.Dispatch(ctx, job)
		if err != nil {
			return err
		}

		settled <- job.ExecutionID

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	p := processor.NewProcessor(store, bus, testFields(), nil, slog.Default())

	event := &events.EntityChanged{
		BaseEvent:    events.NewBaseEvent(events.EntityChangedEvent, "project-1"),
		EntitySource: models.EventSourceDataset,
		EntityID:     "dataset-1",
		Action:       models.ChangeActionCreated,
		Snapshot:     map[string]any{"name": "prod-eu"},
	}
	event.ID = bus.GenerateID()

	require.NoError(t, p.ProcessEvent(ctx, event))

	select {
	case payload := <-delivered:
		assert.Equal(t, "prod-eu", payload["name"])
		assert.Equal(t, "created", payload["action"])
		assert.Equal(t, "dataset", payload["type"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for webhook delivery")
	}

	select {
	case executionID := <-settled:
		execution, err := store.Executions().GetByID(ctx, executionID)
		require.NoError(t, err)
		assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
		require.NotNil(t, execution.FinishedAt)
	case <-ctx.Done():
		t.Fatal("timed out waiting for execution to settle")
	}
}
