// Package web provides HTTP handlers and REST API endpoints for automation
// configuration.
package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/webhook"
)

type APIHandlers struct {
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(persistence persistence.Persistence, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		persistence: persistence,
		validator:   validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())

	status := "healthy"
	message := "Hookline API is healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		message = "Hookline API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// GetTriggers lists the active triggers of one project and event source,
// the same read the processor performs per change event.
func (h *APIHandlers) GetTriggers(c fiber.Ctx) error {
	projectID := c.Query("project_id")
	if projectID == "" {
		return badRequest(c, "project_id query parameter is required")
	}

	source := models.EventSource(c.Query("source"))
	if source != models.EventSourceDataset && source != models.EventSourcePrompt {
		return badRequest(c, "source query parameter must be dataset or prompt")
	}

	triggers, err := h.persistence.Triggers().ActiveBySource(c.Context(), projectID, source)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{
		"triggers": triggers,
	})
}

func (h *APIHandlers) GetTrigger(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Trigger ID is required")
	}

	trigger, err := h.persistence.Triggers().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(trigger)
}

func (h *APIHandlers) CreateTrigger(c fiber.Ctx) error {
	var req CreateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	status := models.TriggerStatus(req.Status)
	if status == "" {
		status = models.TriggerStatusActive
	}

	trigger := &models.Trigger{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		EventSource: models.EventSource(req.EventSource),
		Status:      status,
		Filter:      req.Filter,
	}

	err := h.persistence.Triggers().Save(c.Context(), trigger)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(trigger)
}

func (h *APIHandlers) UpdateTrigger(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Trigger ID is required")
	}

	var req UpdateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.Triggers().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Status != nil {
		existing.Status = models.TriggerStatus(*req.Status)
	}

	if req.Filter != nil {
		existing.Filter = *req.Filter
	}

	err = h.persistence.Triggers().Save(c.Context(), existing)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteTrigger(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Trigger ID is required")
	}

	err := h.persistence.Triggers().Delete(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetAction returns the redacted read model of a webhook action. The stored
// plaintext of secret headers never leaves the store through this path.
func (h *APIHandlers) GetAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Action ID is required")
	}

	action, err := h.persistence.Actions().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	config, err := webhook.ParseConfig(action.Config)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TransformWebhookActionResponse(action, config))
}

func (h *APIHandlers) CreateAction(c fiber.Ctx) error {
	return h.upsertAction(c, nil)
}

func (h *APIHandlers) UpdateAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Action ID is required")
	}

	action, err := h.persistence.Actions().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return h.upsertAction(c, action)
}

// upsertAction is the shared webhook action write path. Header violations
// are collected, not short-circuited, so one submission reports every
// problem at once.
func (h *APIHandlers) upsertAction(c fiber.Ctx, existing *models.Action) error {
	var req UpsertWebhookActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	previous := make(map[string]webhook.HeaderValue)

	if existing != nil {
		previousConfig, err := webhook.ParseConfig(existing.Config)
		if err != nil {
			return internalError(c, err)
		}

		previous = previousConfig.Headers
	}

	violations := webhook.ValidateHeaders(req.Headers, previous)
	if len(violations) > 0 {
		return validationFailed(c, violations)
	}

	config := webhook.Config{
		URL:         req.URL,
		Headers:     mergeHeaders(req.Headers, previous),
		APIVersions: make(map[models.EventSource]string, len(req.APIVersions)),
	}
	for source, version := range req.APIVersions {
		config.APIVersions[models.EventSource(source)] = version
	}

	rawConfig, err := json.Marshal(config)
	if err != nil {
		return internalError(c, err)
	}

	schemaViolations, err := webhook.ValidateConfigDocument(rawConfig)
	if err != nil {
		return internalError(c, err)
	}

	if len(schemaViolations) > 0 {
		return validationFailed(c, schemaViolations)
	}

	action := existing
	if action == nil {
		action = &models.Action{
			ProjectID: req.ProjectID,
			Type:      models.ActionTypeWebhook,
		}
	}

	action.Config = rawConfig

	err = h.persistence.Actions().Save(c.Context(), action)
	if err != nil {
		return handleStoreError(c, err)
	}

	httpStatus := fiber.StatusOK
	if existing == nil {
		httpStatus = fiber.StatusCreated
	}

	return c.Status(httpStatus).JSON(TransformWebhookActionResponse(action, &config))
}

// mergeHeaders resolves submitted header rows against the stored map. A
// secret row submitted without a value keeps the stored plaintext. Stored
// values are looked up case-insensitively, matching how validation resolves
// them, so a case-changed resubmit never wipes a secret.
func mergeHeaders(entries []webhook.HeaderEntry, previous map[string]webhook.HeaderValue) map[string]webhook.HeaderValue {
	previousByName := make(map[string]webhook.HeaderValue, len(previous))
	for name, header := range previous {
		previousByName[strings.ToLower(name)] = header
	}

	merged := make(map[string]webhook.HeaderValue, len(entries))

	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}

		value := entry.Value
		if entry.Secret && value == "" {
			value = previousByName[strings.ToLower(entry.Name)].Value
		}

		merged[entry.Name] = webhook.HeaderValue{
			Value:  value,
			Secret: entry.Secret,
		}
	}

	return merged
}

func (h *APIHandlers) DeleteAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Action ID is required")
	}

	err := h.persistence.Actions().Delete(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateAutomation(c fiber.Ctx) error {
	var req CreateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if _, err := h.persistence.Triggers().GetByID(c.Context(), req.TriggerID); err != nil {
		return handleStoreError(c, err)
	}

	if _, err := h.persistence.Actions().GetByID(c.Context(), req.ActionID); err != nil {
		return handleStoreError(c, err)
	}

	siblings, err := h.persistence.Automations().GetByTriggerID(c.Context(), req.TriggerID)
	if err != nil {
		return handleStoreError(c, err)
	}

	if len(siblings) > 0 {
		return badRequest(c, "trigger already has an automation")
	}

	automation := &models.Automation{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		TriggerID: req.TriggerID,
		ActionID:  req.ActionID,
	}

	err = h.persistence.Automations().Save(c.Context(), automation)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(automation)
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automation ID is required")
	}

	automation, err := h.persistence.Automations().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automation ID is required")
	}

	err := h.persistence.Automations().Delete(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.persistence.Executions().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(execution)
}
