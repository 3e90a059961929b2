// Package dispatcher consumes webhook jobs and delivers them over HTTP,
// settling each execution record into its terminal state.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/otelhelper"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/webhook"
)

const requestTimeout = 30 * time.Second

// Dispatcher delivers webhook jobs. A delivery fault settles the execution
// as errored and acks the job; retry policy belongs to the operator who
// re-triggers, not to this loop.
type Dispatcher struct {
	persistence persistence.Persistence
	client      *http.Client
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewDispatcher creates a webhook dispatcher.
func NewDispatcher(store persistence.Persistence, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		persistence: store,
		client:      &http.Client{Timeout: requestTimeout},
		tracer:      otel.Tracer("hookline/dispatcher"),
		logger:      logger.With("module", "webhook_dispatcher"),
	}
}

// Dispatch handles one webhook job. The action config is read fresh from
// the store so edits made after enqueue apply to deliveries still in
// flight. Only store faults are returned for redelivery; everything else
// settles the execution.
func (d *Dispatcher) Dispatch(ctx context.Context, job *events.WebhookDispatch) error {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "dispatcher.dispatch",
		attribute.String(otelhelper.ExecutionIDKey, job.ExecutionID),
		attribute.String(otelhelper.AutomationIDKey, job.AutomationID),
		attribute.String(otelhelper.ActionIDKey, job.ActionID),
		attribute.String(otelhelper.ProjectIDKey, job.ProjectID),
	)
	defer span.End()

	logger := d.logger.With(
		"execution_id", job.ExecutionID,
		"action_id", job.ActionID,
		"project_id", job.ProjectID,
	)

	action, err := d.persistence.Actions().GetByID(ctx, job.ActionID)
	if err != nil {
		if persistence.IsActionNotFound(err) {
			return d.settle(ctx, logger, job.ExecutionID, models.ExecutionStatusError,
				fmt.Sprintf("action %s no longer exists", job.ActionID))
		}

		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to load action %s: %w", job.ActionID, err)
	}

	if action.Type != models.ActionTypeWebhook {
		return d.settle(ctx, logger, job.ExecutionID, models.ExecutionStatusError,
			fmt.Sprintf("unsupported action type %q", action.Type))
	}

	config, err := webhook.ParseConfig(action.Config)
	if err != nil {
		return d.settle(ctx, logger, job.ExecutionID, models.ExecutionStatusError,
			fmt.Sprintf("invalid webhook config: %s", err))
	}

	err = d.deliver(ctx, config, job)
	if err != nil {
		logger.WarnContext(ctx, "Webhook delivery failed", "url", config.URL, "error", err)
		otelhelper.SetError(span, err)

		return d.settle(ctx, logger, job.ExecutionID, models.ExecutionStatusError, err.Error())
	}

	logger.InfoContext(ctx, "Webhook delivered", "url", config.URL)

	return d.settle(ctx, logger, job.ExecutionID, models.ExecutionStatusSuccess, "")
}

func (d *Dispatcher) deliver(ctx context.Context, config *webhook.Config, job *events.WebhookDispatch) error {
	payload := BuildPayload(config, job)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	for name, value := range config.OutboundHeaders(job.ExecutionID, job.EntitySource, job.Action) {
		request.Header.Set(name, value)
	}

	response, err := d.client.Do(request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))
		_ = response.Body.Close()
	}()

	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("endpoint returned status %d", response.StatusCode)
	}

	return nil
}

// settle records the terminal state. A settle failure is returned so the
// bus redelivers the job; redelivery of an already delivered webhook is
// the accepted trade for never leaving an execution pending forever.
func (d *Dispatcher) settle(ctx context.Context, logger *slog.Logger, executionID string, status models.ExecutionStatus, message string) error {
	err := d.persistence.Executions().UpdateStatus(ctx, executionID, status, message)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to settle execution", "status", status, "error", err)

		return fmt.Errorf("failed to settle execution %s: %w", executionID, err)
	}

	return nil
}
