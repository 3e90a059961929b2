package publisher_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/mocks"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/publisher"
)

func TestPublishChange(t *testing.T) {
	t.Parallel()

	eventBus := &mocks.MockEventBus{}
	eventBus.On("GenerateID").Return("01JC0000000000000000000000")
	eventBus.
		On("Publish", mock.Anything, "project-1", mock.MatchedBy(func(published any) bool {
			event, ok := published.(events.EntityChanged)

			return ok &&
				event.ID == "01JC0000000000000000000000" &&
				event.EntitySource == models.EventSourceDataset &&
				event.Action == models.ChangeActionUpdated
		})).
		Return(nil)

	p := publisher.NewChangePublisher(eventBus, slog.Default())

	event, err := p.PublishChange(
		context.Background(),
		"project-1",
		models.EventSourceDataset,
		"dataset-1",
		models.ChangeActionUpdated,
		map[string]any{"name": "prod-eu"},
	)
	require.NoError(t, err)
	assert.Equal(t, "01JC0000000000000000000000", event.ID)
	assert.Equal(t, "prod-eu", event.Snapshot["name"])

	eventBus.AssertExpectations(t)
}

func TestPublishChange_RefusesIncompleteEvent(t *testing.T) {
	t.Parallel()

	eventBus := &mocks.MockEventBus{}
	eventBus.On("GenerateID").Return("01JC0000000000000000000001")

	p := publisher.NewChangePublisher(eventBus, slog.Default())

	_, err := p.PublishChange(context.Background(), "project-1", models.EventSourceDataset, "", models.ChangeActionCreated, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, events.ErrInvalidEventData)

	eventBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishChange_PropagatesPublishFailure(t *testing.T) {
	t.Parallel()

	eventBus := &mocks.MockEventBus{}
	eventBus.On("GenerateID").Return("01JC0000000000000000000002")
	eventBus.On("Publish", mock.Anything, "project-1", mock.Anything).Return(errors.New("broker unavailable"))

	p := publisher.NewChangePublisher(eventBus, slog.Default())

	_, err := p.PublishChange(
		context.Background(),
		"project-1",
		models.EventSourcePrompt,
		"prompt-1",
		models.ChangeActionDeleted,
		nil,
	)
	assert.Error(t, err)
}
