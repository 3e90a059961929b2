package dispatcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hooklinehq/hookline/pkg/dispatcher"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/webhook"
)

func TestBuildPayload_EnvelopeAndVersion(t *testing.T) {
	t.Parallel()

	config := &webhook.Config{
		URL: "https://example.com",
		APIVersions: map[models.EventSource]string{
			models.EventSourcePrompt: "v2",
		},
	}

	job := &events.WebhookDispatch{
		EntitySource: models.EventSourcePrompt,
		EntityID:     "prompt-1",
		Action:       models.ChangeActionUpdated,
		Snapshot: map[string]any{
			"id":   "prompt-1",
			"name": "summarize",
		},
	}

	payload := dispatcher.BuildPayload(config, job)

	assert.Equal(t, "summarize", payload["name"])
	assert.Equal(t, "updated", payload["action"])
	assert.Equal(t, "prompt", payload["type"])
	assert.Equal(t, map[string]string{"prompt": "v2"}, payload["apiVersion"])
}

func TestBuildPayload_NormalizesNullableStructuredFields(t *testing.T) {
	t.Parallel()

	config := &webhook.Config{URL: "https://example.com"}

	t.Run("prompt labels and tags", func(t *testing.T) {
		t.Parallel()

		job := &events.WebhookDispatch{
			EntitySource: models.EventSourcePrompt,
			Action:       models.ChangeActionCreated,
			Snapshot: map[string]any{
				"id":     "prompt-1",
				"labels": nil,
			},
		}

		payload := dispatcher.BuildPayload(config, job)

		assert.Equal(t, []any{}, payload["labels"])
		assert.Equal(t, []any{}, payload["tags"])
	})

	t.Run("dataset metadata", func(t *testing.T) {
		t.Parallel()

		job := &events.WebhookDispatch{
			EntitySource: models.EventSourceDataset,
			Action:       models.ChangeActionDeleted,
			Snapshot:     map[string]any{"id": "dataset-1"},
		}

		payload := dispatcher.BuildPayload(config, job)

		assert.Equal(t, map[string]any{}, payload["metadata"])
	})

	t.Run("populated fields are kept", func(t *testing.T) {
		t.Parallel()

		job := &events.WebhookDispatch{
			EntitySource: models.EventSourcePrompt,
			Action:       models.ChangeActionUpdated,
			Snapshot: map[string]any{
				"id":     "prompt-1",
				"labels": []any{"production"},
			},
		}

		payload := dispatcher.BuildPayload(config, job)

		assert.Equal(t, []any{"production"}, payload["labels"])
	})
}
