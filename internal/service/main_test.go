package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"rehire/internal/database/dbtest"
	"rehire/internal/models"
	"rehire/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	db            *gorm.DB
	clock         *fakeClock
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	store         *MessageStore
	directory     *ConversationDirectory
	messaging     *MessagingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, dbtest.Open(t))
}

func newTestEnvOn(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	clock := newFakeClock()

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	messages := repository.NewMessageRepository(db)
	conversations := repository.NewConversationRepository(db)

	store := NewMessageStore(messages)
	store.SetClock(clock.Now)
	directory := NewConversationDirectory(conversations, messages, profiles)

	return &testEnv{
		db:            db,
		clock:         clock,
		messages:      messages,
		conversations: conversations,
		store:         store,
		directory:     directory,
		messaging:     NewMessagingService(users, profiles, store, directory),
	}
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
		Name:     name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err), err.Error())
}
