package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rehire/internal/database/dbtest"
	"rehire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBuiltinPresets(t *testing.T) {
	presets, err := ParsePresets(builtinPresets)
	require.NoError(t, err)
	for _, name := range []string{"small", "demo", "load"} {
		assert.Contains(t, presets, name)
	}

	p, err := LoadPreset("small", "")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Users)
	assert.Equal(t, 4, p.MessagesPerConversation)

	_, err = LoadPreset("huge", "")
	assert.Error(t, err)
}

func TestLoadPreset_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yml")
	require.NoError(t, os.WriteFile(path, []byte("tiny:\n  users: 3\n  conversations: 2\n"), 0o600))

	p, err := LoadPreset("tiny", path)
	require.NoError(t, err)
	assert.Equal(t, Preset{Users: 3, Conversations: 2}, p)
}

func TestPresetValidate(t *testing.T) {
	tests := []struct {
		name    string
		preset  Preset
		wantErr bool
	}{
		{"empty", Preset{}, false},
		{"negative", Preset{Users: -1}, true},
		{"ratio above one", Preset{Users: 2, OpenToWorkRatio: 1.5}, true},
		{"conversation without partner", Preset{Users: 1, Conversations: 1}, true},
		{"too many pairs", Preset{Users: 3, Conversations: 4}, true},
		{"all pairs", Preset{Users: 3, Conversations: 3}, false},
		{"posts without users", Preset{HiringPosts: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.preset.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := ParsePresets([]byte("bad:\n  users: -2\n"))
	assert.Error(t, err)
}

func TestSeeder_Run(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	s, err := NewSeeder(db, Options{Seed: 42, PasswordCost: bcrypt.MinCost})
	require.NoError(t, err)

	preset := Preset{
		Users:                   6,
		HiringPosts:             4,
		Referrals:               3,
		Conversations:           5,
		MessagesPerConversation: 3,
		OpenToWorkRatio:         1,
	}
	report, err := s.Run(ctx, preset)
	require.NoError(t, err)
	assert.Equal(t, &Report{Users: 6, HiringPosts: 4, Referrals: 3, Conversations: 5, Messages: 15}, report)

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(6), count(&models.User{}))
	assert.Equal(t, int64(6), count(&models.Profile{}))
	assert.Equal(t, int64(4), count(&models.HiringPost{}))
	assert.Equal(t, int64(3), count(&models.Referral{}))
	assert.Equal(t, int64(5), count(&models.Conversation{}))
	assert.Equal(t, int64(15), count(&models.Message{}))

	var openToWork int64
	require.NoError(t, db.Model(&models.Profile{}).Where("open_to_work = ?", true).Count(&openToWork).Error)
	assert.Equal(t, int64(6), openToWork)

	// Per-conversation counters add up to the unread message total.
	var unreadCounters, unreadMessages int64
	require.NoError(t, db.Model(&models.ConversationParticipant{}).
		Select("COALESCE(SUM(unread_count), 0)").Scan(&unreadCounters).Error)
	require.NoError(t, db.Model(&models.Message{}).Where("is_read = ?", false).Count(&unreadMessages).Error)
	assert.Equal(t, unreadMessages, unreadCounters)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, int64(0), count(&models.User{}))
	assert.Equal(t, int64(0), count(&models.Message{}))
	assert.Equal(t, int64(0), count(&models.Conversation{}))
}
