package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) seed(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return user
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	r.seed(user)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Role = role
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) SetBanned(_ context.Context, id string, banned bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Banned = banned
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role {
			result = append(result, *user)
		}
	}
	return result, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification

	failCreate bool
}

func (r *memNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("insert failed")
	}
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *memNotificationRepo) CreateIfAbsent(ctx context.Context, notification *domain.Notification) (bool, error) {
	r.mu.Lock()
	for _, existing := range r.notifications {
		if existing.UserID == notification.UserID && existing.EventID == notification.EventID && !existing.Read {
			r.mu.Unlock()
			return false, nil
		}
	}
	r.mu.Unlock()
	if err := r.Create(ctx, notification); err != nil {
		return false, err
	}
	return true, nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *memNotificationRepo) DeleteByEvent(_ context.Context, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.Notification
	var removed int64
	for _, n := range r.notifications {
		if n.EventID == eventID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return removed, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
			clone := r.notifications[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type failingMailer struct {
	calls int
}

func (m *failingMailer) Send(context.Context, string, string, string) error {
	m.calls++
	return errors.New("smtp unavailable")
}

func TestBroadcastCreatesOnePerUser(t *testing.T) {
	users := newMemUserRepo()
	users.seed(&domain.User{Name: "alice", Email: "alice@example.com"})
	users.seed(&domain.User{Name: "bob", Email: "bob@example.com"})
	users.seed(&domain.User{Name: "carol", Email: "carol@example.com"})
	notifications := &memNotificationRepo{}

	svc := NewNotificationService(notifications, users, nil, nil, zap.NewNop())

	svc.Broadcast(context.Background(), "event-1", "A new event has been added: GopherCon")
	assert.Len(t, notifications.notifications, 3)

	// Re-running must not duplicate notifications still unread.
	svc.Broadcast(context.Background(), "event-1", "A new event has been added: GopherCon")
	assert.Len(t, notifications.notifications, 3)
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	users := newMemUserRepo()
	users.seed(&domain.User{Name: "alice", Email: "alice@example.com"})
	notifications := &memNotificationRepo{failCreate: true}

	svc := NewNotificationService(notifications, users, nil, nil, zap.NewNop())

	// Must not panic or return an error path to the caller.
	svc.Broadcast(context.Background(), "event-1", "hello")
	assert.Empty(t, notifications.notifications)
}

func TestDirectNotification(t *testing.T) {
	notifications := &memNotificationRepo{}
	svc := NewNotificationService(notifications, newMemUserRepo(), nil, nil, zap.NewNop())

	svc.Direct(context.Background(), "organizer-1", "event-1", "A new user has registered for an event: GopherCon")

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "organizer-1", notifications.notifications[0].UserID)
	assert.False(t, notifications.notifications[0].Read)
}

func TestMarkReadNotFound(t *testing.T) {
	svc := NewNotificationService(&memNotificationRepo{}, newMemUserRepo(), nil, nil, zap.NewNop())

	_, err := svc.MarkRead(context.Background(), "missing")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestMarkReadFlipsFlag(t *testing.T) {
	notifications := &memNotificationRepo{}
	svc := NewNotificationService(notifications, newMemUserRepo(), nil, nil, zap.NewNop())

	target := &domain.Notification{UserID: "user-1", EventID: "event-1", Message: "hi"}
	require.NoError(t, notifications.Create(context.Background(), target))

	updated, err := svc.MarkRead(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, updated.Read)
}

func TestUserRegisteredHandlerNotifiesOrganizer(t *testing.T) {
	notifications := &memNotificationRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(notifications, newMemUserRepo(), dispatcher, nil, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      uuid.NewString(),
		Type:    events.UserRegistered,
		EventID: "event-1",
		ActorID: "user-1",
		Payload: events.UserRegisteredPayload{
			UserID:      "user-1",
			OrganizerID: "organizer-1",
			EventName:   "GopherCon",
		},
	})
	require.NoError(t, err)

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "organizer-1", notifications.notifications[0].UserID)
	assert.Contains(t, notifications.notifications[0].Message, "GopherCon")
}

func TestConfirmationEmailFailureStillNotifiesOrganizer(t *testing.T) {
	notifications := &memNotificationRepo{}
	mail := &failingMailer{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(notifications, newMemUserRepo(), dispatcher, mail, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      uuid.NewString(),
		Type:    events.UserRegistered,
		EventID: "event-1",
		ActorID: "user-1",
		Payload: events.UserRegisteredPayload{
			UserID:      "user-1",
			UserEmail:   "alice@example.com",
			OrganizerID: "organizer-1",
			EventName:   "GopherCon",
			EventDate:   time.Now().Add(24 * time.Hour),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, mail.calls)
	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "organizer-1", notifications.notifications[0].UserID)
}

func TestEventDeletedPurgesItsNotifications(t *testing.T) {
	notifications := &memNotificationRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(notifications, newMemUserRepo(), dispatcher, nil, zap.NewNop())
	svc.RegisterHandlers()

	require.NoError(t, notifications.Create(context.Background(), &domain.Notification{UserID: "u1", EventID: "event-1", Message: "A new event has been added: GopherCon"}))
	require.NoError(t, notifications.Create(context.Background(), &domain.Notification{UserID: "u2", EventID: "event-1", Message: "A new event has been added: GopherCon"}))
	require.NoError(t, notifications.Create(context.Background(), &domain.Notification{UserID: "u1", EventID: "event-2", Message: "A new event has been added: GoLab"}))

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventDeleted,
		EventID: "event-1",
	}))

	require.Len(t, notifications.notifications, 1)
	assert.Equal(t, "event-2", notifications.notifications[0].EventID)
}
