package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rehire/internal/database/dbtest"
	"rehire/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t)
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

func createMessage(t *testing.T, db *gorm.DB, from, to uint, content string, at time.Time) *models.Message {
	t.Helper()
	msg := &models.Message{SenderID: from, ReceiverID: to, Content: content, CreatedAt: at}
	require.NoError(t, NewMessageRepository(db).Create(context.Background(), msg))
	return msg
}
