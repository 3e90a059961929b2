package dispatcher

import (
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/webhook"
)

// structuredDefaults maps nullable structured snapshot fields to the empty
// shape receivers should see instead of null.
var structuredDefaults = map[models.EventSource]map[string]func() any{
	models.EventSourceDataset: {
		"metadata": func() any { return map[string]any{} },
	},
	models.EventSourcePrompt: {
		"labels": func() any { return []any{} },
		"tags":   func() any { return []any{} },
	},
}

// BuildPayload assembles the outbound body for one delivery: the entity
// snapshot plus the change action, the entity type and the negotiated
// apiVersion map. Snapshot keys never override the envelope keys.
func BuildPayload(config *webhook.Config, job *events.WebhookDispatch) map[string]any {
	payload := make(map[string]any, len(job.Snapshot)+3)

	for key, value := range job.Snapshot {
		payload[key] = value
	}

	for field, empty := range structuredDefaults[job.EntitySource] {
		if value, ok := payload[field]; !ok || value == nil {
			payload[field] = empty()
		}
	}

	payload["action"] = string(job.Action)
	payload["type"] = string(job.EntitySource)
	payload["apiVersion"] = config.APIVersion(job.EntitySource)

	return payload
}
