package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// MockTriggerRepository is a mock implementation of persistence.TriggerRepository interface.
type MockTriggerRepository struct {
	mock.Mock
}

func (m *MockTriggerRepository) ActiveBySource(ctx context.Context, projectID string, source models.EventSource) ([]*models.Trigger, error) {
	args := m.Called(ctx, projectID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Trigger), args.Error(1)
}

func (m *MockTriggerRepository) GetByID(ctx context.Context, id string) (*models.Trigger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Trigger), args.Error(1)
}

func (m *MockTriggerRepository) Save(ctx context.Context, trigger *models.Trigger) error {
	args := m.Called(ctx, trigger)

	return args.Error(0)
}

func (m *MockTriggerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockActionRepository is a mock implementation of persistence.ActionRepository interface.
type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) GetByID(ctx context.Context, id string) (*models.Action, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Action), args.Error(1)
}

func (m *MockActionRepository) Save(ctx context.Context, action *models.Action) error {
	args := m.Called(ctx, action)

	return args.Error(0)
}

func (m *MockActionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockAutomationRepository is a mock implementation of persistence.AutomationRepository interface.
type MockAutomationRepository struct {
	mock.Mock
}

func (m *MockAutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Automation), args.Error(1)
}

func (m *MockAutomationRepository) GetByTriggerID(ctx context.Context, triggerID string) ([]*models.Automation, error) {
	args := m.Called(ctx, triggerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Automation), args.Error(1)
}

func (m *MockAutomationRepository) Save(ctx context.Context, automation *models.Automation) error {
	args := m.Called(ctx, automation)

	return args.Error(0)
}

func (m *MockAutomationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockExecutionRepository is a mock implementation of persistence.ExecutionRepository interface.
type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	args := m.Called(ctx, execution)

	return args.Error(0)
}

func (m *MockExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Execution), args.Error(1)
}

func (m *MockExecutionRepository) UpdateStatus(ctx context.Context, id string, status models.ExecutionStatus, errorMessage string) error {
	args := m.Called(ctx, id, status, errorMessage)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	triggerRepo    *MockTriggerRepository
	actionRepo     *MockActionRepository
	automationRepo *MockAutomationRepository
	executionRepo  *MockExecutionRepository
}

// NewMockPersistence creates a new MockPersistence with all mock repositories.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		triggerRepo:    &MockTriggerRepository{},
		actionRepo:     &MockActionRepository{},
		automationRepo: &MockAutomationRepository{},
		executionRepo:  &MockExecutionRepository{},
	}
}

// GetMockTriggerRepository returns the underlying mock trigger repository for setting up expectations.
func (m *MockPersistence) GetMockTriggerRepository() *MockTriggerRepository {
	return m.triggerRepo
}

// GetMockActionRepository returns the underlying mock action repository for setting up expectations.
func (m *MockPersistence) GetMockActionRepository() *MockActionRepository {
	return m.actionRepo
}

// GetMockAutomationRepository returns the underlying mock automation repository for setting up expectations.
func (m *MockPersistence) GetMockAutomationRepository() *MockAutomationRepository {
	return m.automationRepo
}

// GetMockExecutionRepository returns the underlying mock execution repository for setting up expectations.
func (m *MockPersistence) GetMockExecutionRepository() *MockExecutionRepository {
	return m.executionRepo
}

func (m *MockPersistence) Triggers() persistence.TriggerRepository {
	return m.triggerRepo
}

func (m *MockPersistence) Actions() persistence.ActionRepository {
	return m.actionRepo
}

func (m *MockPersistence) Automations() persistence.AutomationRepository {
	return m.automationRepo
}

func (m *MockPersistence) Executions() persistence.ExecutionRepository {
	return m.executionRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
