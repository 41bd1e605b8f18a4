package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"rehire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStore_Send_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	tooMany := make([]models.Attachment, models.MaxMessageAttachments+1)
	for i := range tooMany {
		tooMany[i] = models.Attachment{Filename: "cv.pdf", URL: "https://files.example.com/cv.pdf"}
	}

	tests := []struct {
		name        string
		in          SendInput
		expectError bool
	}{
		{"single character", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "x"}, false},
		{"max length in runes", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: strings.Repeat("é", 5000)}, false},
		{"empty", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: ""}, true},
		{"whitespace only", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: " \n\t "}, true},
		{"too long", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: strings.Repeat("a", 5001)}, true},
		{"to self", SendInput{SenderID: alice.ID, ReceiverID: alice.ID, Content: "hi me"}, true},
		{"too many attachments", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "files", Attachments: tooMany}, true},
		{"attachment without url", SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "file",
			Attachments: []models.Attachment{{Filename: "cv.pdf"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := env.store.Send(ctx, tt.in)
			if tt.expectError {
				requireCode(t, err, models.CodeValidation)
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, msg.ID)
			assert.False(t, msg.IsRead)
			assert.False(t, msg.IsEdited)
			assert.False(t, msg.ShowEditedTag)
			assert.Nil(t, msg.ReadAt)
			assert.Equal(t, baseTime, msg.CreatedAt)
		})
	}
}

func TestMessageStore_Edit_GraceWindow(t *testing.T) {
	tests := []struct {
		name   string
		after  time.Duration
		tagged bool
	}{
		{"within window", 4*time.Minute + 59*time.Second, false},
		{"exactly at window", 5 * time.Minute, false},
		{"just past window", 5*time.Minute + time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			alice := createUser(t, env.db, "alice")
			bob := createUser(t, env.db, "bob")

			msg, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "helo"})
			require.NoError(t, err)

			env.clock.Advance(tt.after)
			edited, err := env.store.Edit(ctx, msg.ID, alice.ID, "hello")
			require.NoError(t, err)
			assert.True(t, edited.IsEdited)
			assert.Equal(t, tt.tagged, edited.ShowEditedTag)
			require.NotNil(t, edited.EditedAt)
			assert.True(t, edited.EditedAt.Equal(baseTime.Add(tt.after)))

			stored, err := env.messages.GetByID(ctx, msg.ID)
			require.NoError(t, err)
			assert.Equal(t, "hello", stored.Content)
			assert.Equal(t, tt.tagged, stored.ShowEditedTag)
		})
	}
}

func TestMessageStore_Edit_TagIsSticky(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	msg, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "one"})
	require.NoError(t, err)

	env.clock.Advance(10 * time.Minute)
	edited, err := env.store.Edit(ctx, msg.ID, alice.ID, "two")
	require.NoError(t, err)
	require.True(t, edited.ShowEditedTag)

	// Moving the clock back cannot clear the tag.
	env.clock.Set(baseTime.Add(time.Minute))
	edited, err = env.store.Edit(ctx, msg.ID, alice.ID, "three")
	require.NoError(t, err)
	assert.True(t, edited.ShowEditedTag)
}

func TestMessageStore_Edit_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	msg, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = env.store.Edit(ctx, msg.ID+100, alice.ID, "x")
	requireCode(t, err, models.CodeNotFound)

	_, err = env.store.Edit(ctx, msg.ID, bob.ID, "x")
	requireCode(t, err, models.CodeForbidden)

	_, err = env.store.Edit(ctx, msg.ID, alice.ID, "   ")
	requireCode(t, err, models.CodeValidation)

	_, err = env.store.Edit(ctx, msg.ID, alice.ID, strings.Repeat("b", 5001))
	requireCode(t, err, models.CodeValidation)
}

func TestMessageStore_SoftDeleteForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")

	msg, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	t.Run("Idempotent", func(t *testing.T) {
		once, err := env.store.SoftDeleteForUser(ctx, msg.ID, bob.ID)
		require.NoError(t, err)
		twice, err := env.store.SoftDeleteForUser(ctx, msg.ID, bob.ID)
		require.NoError(t, err)

		assert.Equal(t, models.NewUserIDSet(bob.ID), once.DeletedFor)
		assert.Equal(t, once.DeletedFor, twice.DeletedFor)

		var rows int64
		require.NoError(t, env.db.Model(&models.MessageDeletion{}).Where("message_id = ?", msg.ID).Count(&rows).Error)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("Outsider forbidden", func(t *testing.T) {
		_, err := env.store.SoftDeleteForUser(ctx, msg.ID, carol.ID)
		requireCode(t, err, models.CodeForbidden)
	})

	t.Run("Missing message", func(t *testing.T) {
		_, err := env.store.SoftDeleteForUser(ctx, msg.ID+100, bob.ID)
		requireCode(t, err, models.CodeNotFound)
	})
}

func TestMessageStore_FetchThread_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	first, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "first"})
	require.NoError(t, err)
	env.clock.Advance(time.Second)
	second, err := env.store.Send(ctx, SendInput{SenderID: bob.ID, ReceiverID: alice.ID, Content: "second"})
	require.NoError(t, err)

	_, err = env.store.SoftDeleteForUser(ctx, first.ID, bob.ID)
	require.NoError(t, err)

	forBob, err := env.store.FetchThread(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, forBob, 1)
	assert.Equal(t, second.ID, forBob[0].ID)

	forAlice, err := env.store.FetchThread(ctx, alice.ID, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, forAlice, 2)
	assert.Equal(t, first.ID, forAlice[0].ID)
	assert.Equal(t, second.ID, forAlice[1].ID)
	assert.True(t, forAlice[0].DeletedFor.Has(bob.ID))
}

func TestMessageStore_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	msg, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = env.store.MarkRead(ctx, msg.ID, alice.ID)
	requireCode(t, err, models.CodeForbidden)

	env.clock.Advance(time.Minute)
	read, err := env.store.MarkRead(ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)
	firstReadAt := *read.ReadAt

	env.clock.Advance(time.Hour)
	again, err := env.store.MarkRead(ctx, msg.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, again.ReadAt)
	assert.True(t, firstReadAt.Equal(*again.ReadAt), "readAt must not move")
}

func TestMessageStore_CountUnread_ExcludesOwnDeletions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	var last *models.Message
	for i := 0; i < 3; i++ {
		msg, err := env.store.Send(ctx, SendInput{SenderID: alice.ID, ReceiverID: bob.ID, Content: "ping"})
		require.NoError(t, err)
		last = msg
	}

	n, err := env.store.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = env.store.SoftDeleteForUser(ctx, last.ID, bob.ID)
	require.NoError(t, err)
	n, err = env.store.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = env.store.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
