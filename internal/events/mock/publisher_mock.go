package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campuskul/crm-console-api/internal/model"
)

// PublisherMock mocks the events.Publisher interface
type PublisherMock struct {
	mock.Mock
}

// LeadCreated mocks the LeadCreated method
func (m *PublisherMock) LeadCreated(ctx context.Context, lead *model.Lead) {
	m.Called(ctx, lead)
}

// LeadUpdated mocks the LeadUpdated method
func (m *PublisherMock) LeadUpdated(ctx context.Context, lead *model.Lead) {
	m.Called(ctx, lead)
}

// LeadStageChanged mocks the LeadStageChanged method
func (m *PublisherMock) LeadStageChanged(ctx context.Context, leadID uint, oldStatus, newStatus string) {
	m.Called(ctx, leadID, oldStatus, newStatus)
}

// LeadDeleted mocks the LeadDeleted method
func (m *PublisherMock) LeadDeleted(ctx context.Context, leadID uint) {
	m.Called(ctx, leadID)
}

// FollowUpsChanged mocks the FollowUpsChanged method
func (m *PublisherMock) FollowUpsChanged(ctx context.Context, organizationID uint) {
	m.Called(ctx, organizationID)
}

// Close mocks the Close method
func (m *PublisherMock) Close() {
	m.Called()
}
