// File: internal/notification/service_test.go
package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID, seen bool) ([]Notification, error) {
	args := m.Called(ctx, userID, seen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockRepository) MarkAllSeen(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) DeleteSeenOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo Repository) Service {
	return NewService(repo, zap.NewNop())
}

func TestNotify_PersistsEntry(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	userID := uuid.New()

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.UserID == userID && n.Type == TypeApplyDoctorRequest && !n.Seen
	})).Return(nil).Once()

	err := service.Notify(context.Background(), NewNotificationInput{
		UserID:      userID,
		Type:        TypeApplyDoctorRequest,
		Message:     "JOHN DOE has applied for a doctor account.",
		OnClickPath: "/adminhome/doctors",
	})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestNotify_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
		Return(errors.New("db down")).Once()

	err := service.Notify(context.Background(), NewNotificationInput{
		UserID:  uuid.New(),
		Type:    TypeNewAppointmentRequest,
		Message: "A new appointment request has arrived.",
	})

	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestInbox_SplitsSeenAndUnseen(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	userID := uuid.New()

	unseen := []Notification{{UserID: userID, Type: TypeNewAppointmentRequest, Message: "new"}}
	seen := []Notification{
		{UserID: userID, Type: TypeDoctorAccountStatus, Message: "old one", Seen: true},
		{UserID: userID, Type: TypeAppointmentStatusUpdated, Message: "old two", Seen: true},
	}
	mockRepo.On("ListByUser", mock.Anything, userID, false).Return(unseen, nil).Once()
	mockRepo.On("ListByUser", mock.Anything, userID, true).Return(seen, nil).Once()

	inbox, err := service.Inbox(context.Background(), userID)

	require.NoError(t, err)
	require.NotNil(t, inbox)
	assert.Len(t, inbox.Notifications, 1)
	assert.Len(t, inbox.SeenNotifications, 2)
	assert.Equal(t, "new", inbox.Notifications[0].Message)
	mockRepo.AssertExpectations(t)
}

func TestInbox_Empty(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	userID := uuid.New()

	mockRepo.On("ListByUser", mock.Anything, userID, false).Return([]Notification{}, nil).Once()
	mockRepo.On("ListByUser", mock.Anything, userID, true).Return([]Notification{}, nil).Once()

	inbox, err := service.Inbox(context.Background(), userID)

	require.NoError(t, err)
	assert.NotNil(t, inbox.Notifications)
	assert.NotNil(t, inbox.SeenNotifications)
	assert.Empty(t, inbox.Notifications)
	assert.Empty(t, inbox.SeenNotifications)
}

func TestMarkAllRead_EmptyInboxIsNoOp(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	userID := uuid.New()

	mockRepo.On("MarkAllSeen", mock.Anything, userID).Return(int64(0), nil).Once()

	count, err := service.MarkAllRead(context.Background(), userID)

	assert.NoError(t, err)
	assert.Zero(t, count)
	mockRepo.AssertExpectations(t)
}

func TestClearAll_RemovesEverything(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	userID := uuid.New()

	mockRepo.On("DeleteAllForUser", mock.Anything, userID).Return(int64(5), nil).Once()

	count, err := service.ClearAll(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)
	mockRepo.AssertExpectations(t)
}

func TestPurgeSeenOlderThan_UsesRetentionCutoff(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	retention := 30 * 24 * time.Hour

	mockRepo.On("DeleteSeenOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().Add(-retention)
		return cutoff.Sub(expected) < time.Minute && expected.Sub(cutoff) < time.Minute
	})).Return(int64(3), nil).Once()

	purged, err := service.PurgeSeenOlderThan(context.Background(), retention)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	mockRepo.AssertExpectations(t)
}
