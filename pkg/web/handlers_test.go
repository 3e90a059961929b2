package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/filter"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/persistence/file"
	"github.com/hooklinehq/hookline/pkg/web"
	"github.com/hooklinehq/hookline/pkg/webhook"
)

func setupTestApp(t *testing.T) (*fiber.App, persistence.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	handlers := web.NewAPIHandlers(store, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	tr := app.Group("/triggers")
	tr.Get("/", handlers.GetTriggers)
	tr.Post("/", handlers.CreateTrigger)
	tr.Get("/:id", handlers.GetTrigger)
	tr.Patch("/:id", handlers.UpdateTrigger)
	tr.Delete("/:id", handlers.DeleteTrigger)

	ac := app.Group("/actions")
	ac.Post("/", handlers.CreateAction)
	ac.Get("/:id", handlers.GetAction)
	ac.Put("/:id", handlers.UpdateAction)
	ac.Delete("/:id", handlers.DeleteAction)

	au := app.Group("/automations")
	au.Post("/", handlers.CreateAutomation)
	au.Get("/:id", handlers.GetAutomation)
	au.Delete("/:id", handlers.DeleteAutomation)

	app.Get("/executions/:id", handlers.GetExecution)

	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request)
	require.NoError(t, err)

	payload, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())

	return response, payload
}

func TestCreateTrigger(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	t.Run("successful creation defaults to active", func(t *testing.T) {
		response, body := doJSON(t, app, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
			ProjectID:   "project-1",
			Name:        "prod datasets",
			EventSource: "dataset",
			Filter: filter.Predicate{
				Conditions: []filter.Condition{
					{Column: "name", Operator: filter.OperatorContains, Value: "prod"},
				},
			},
		})

		require.Equal(t, http.StatusCreated, response.StatusCode)

		var trigger models.Trigger
		require.NoError(t, json.Unmarshal(body, &trigger))
		assert.NotEmpty(t, trigger.ID)
		assert.Equal(t, models.TriggerStatusActive, trigger.Status)
	})

	t.Run("unknown event source rejected", func(t *testing.T) {
		response, _ := doJSON(t, app, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
			ProjectID:   "project-1",
			Name:        "bad source",
			EventSource: "score",
		})

		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("short name rejected", func(t *testing.T) {
		response, _ := doJSON(t, app, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
			ProjectID:   "project-1",
			Name:        "ab",
			EventSource: "dataset",
		})

		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
}

func TestGetTriggers_FiltersByProjectAndSource(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	_, _ = doJSON(t, app, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
		ProjectID: "project-1", Name: "dataset trigger", EventSource: "dataset",
	})
	_, _ = doJSON(t, app, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
		ProjectID: "project-1", Name: "prompt trigger", EventSource: "prompt",
	})

	response, body := doJSON(t, app, http.MethodGet, "/triggers/?project_id=project-1&source=dataset", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var result struct {
		Triggers []models.Trigger `json:"triggers"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Len(t, result.Triggers, 1)
	assert.Equal(t, "dataset trigger", result.Triggers[0].Name)

	response, _ = doJSON(t, app, http.MethodGet, "/triggers/?project_id=project-1&source=score", nil)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestCreateAction_HeaderValidation(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	response, body := doJSON(t, app, http.MethodPost, "/actions/", web.UpsertWebhookActionRequest{
		ProjectID: "project-1",
		URL:       "https://example.com/hooks",
		Headers: []webhook.HeaderEntry{
			{Name: "Authorization", Value: "Bearer zzz"},
			{Name: "X-Team"},
			{Name: "X-Env", Value: "prod"},
			{Name: "x-env", Value: "staging"},
		},
	})

	require.Equal(t, http.StatusBadRequest, response.StatusCode)

	var result struct {
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Len(t, result.Violations, 3)
	assert.Contains(t, result.Violations, `header "Authorization" conflicts with a default header`)
	assert.Contains(t, result.Violations, `header "X-Team" requires a value`)
	assert.Contains(t, result.Violations, `duplicate header "x-env"`)
}

func TestActionLifecycle_SecretsNeverEcho(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	response, body := doJSON(t, app, http.MethodPost, "/actions/", web.UpsertWebhookActionRequest{
		ProjectID: "project-1",
		URL:       "https://example.com/hooks",
		Headers: []webhook.HeaderEntry{
			{Name: "X-Token", Value: "super-secret", Secret: true},
			{Name: "X-Team", Value: "ops"},
		},
		APIVersions: map[string]string{"dataset": "v2"},
	})

	require.Equal(t, http.StatusCreated, response.StatusCode)

	var created web.WebhookActionResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	for _, header := range created.Headers {
		if header.Secret {
			assert.Empty(t, header.DisplayValue)
		}
	}

	// Update without resubmitting the secret value keeps the stored plaintext.
	response, _ = doJSON(t, app, http.MethodPut, "/actions/"+created.ID, web.UpsertWebhookActionRequest{
		ProjectID: "project-1",
		URL:       "https://example.com/hooks/v2",
		Headers: []webhook.HeaderEntry{
			{Name: "X-Token", Secret: true},
			{Name: "X-Team", Value: "platform"},
		},
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	action, err := store.Actions().GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	config, err := webhook.ParseConfig(action.Config)
	require.NoError(t, err)
	assert.Equal(t, "super-secret", config.Headers["X-Token"].Value)
	assert.Equal(t, "platform", config.Headers["X-Team"].Value)

	response, body = doJSON(t, app, http.MethodGet, "/actions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.NotContains(t, string(body), "super-secret")
}

func TestUpdateAction_CaseChangedSecretResubmitKeepsValue(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	response, body := doJSON(t, app, http.MethodPost, "/actions/", web.UpsertWebhookActionRequest{
		ProjectID: "project-1",
		URL:       "https://example.com/hooks",
		Headers: []webhook.HeaderEntry{
			{Name: "X-Token", Value: "super-secret", Secret: true},
		},
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)

	var created web.WebhookActionResponse
	require.NoError(t, json.Unmarshal(body, &created))

	// Resubmitting the stored secret under a different casing and without a
	// value keeps the stored plaintext, same as an exact-name resubmit.
	response, _ = doJSON(t, app, http.MethodPut, "/actions/"+created.ID, web.UpsertWebhookActionRequest{
		ProjectID: "project-1",
		URL:       "https://example.com/hooks",
		Headers: []webhook.HeaderEntry{
			{Name: "x-token", Secret: true},
		},
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	action, err := store.Actions().GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	config, err := webhook.ParseConfig(action.Config)
	require.NoError(t, err)
	assert.Equal(t, "super-secret", config.Headers["x-token"].Value)
	assert.True(t, config.Headers["x-token"].Secret)
}

func TestCreateAutomation_EnforcesSingleAutomationPerTrigger(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)
	ctx := context.Background()

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
		Config:    json.RawMessage(`{"url":"https://example.com"}`),
	}
	require.NoError(t, store.Actions().Save(ctx, action))

	request := web.CreateAutomationRequest{
		ProjectID: "project-1",
		Name:      "notify ops",
		TriggerID: trigger.ID,
		ActionID:  action.ID,
	}

	response, _ := doJSON(t, app, http.MethodPost, "/automations/", request)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	response, _ = doJSON(t, app, http.MethodPost, "/automations/", request)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestGetExecution(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	execution := &models.Execution{
		ProjectID:    "project-1",
		AutomationID: "automation-1",
		TriggerID:    "trigger-1",
		ActionID:     "action-1",
		Status:       models.ExecutionStatusPending,
		SourceID:     "dataset-1",
	}
	require.NoError(t, store.Executions().Create(context.Background(), execution))

	response, body := doJSON(t, app, http.MethodGet, "/executions/"+execution.ID, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var loaded models.Execution
	require.NoError(t, json.Unmarshal(body, &loaded))
	assert.Equal(t, models.ExecutionStatusPending, loaded.Status)

	response, _ = doJSON(t, app, http.MethodGet, "/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}
