package repository

import (
	"context"
	"testing"
	"time"

	"rehire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRepository_Summary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	author := createUser(t, db, "kim")
	other := createUser(t, db, "lee")
	require.NoError(t, NewProfileRepository(db).Upsert(ctx, &models.Profile{UserID: author.ID, OpenToWork: true}))
	require.NoError(t, NewProfileRepository(db).Upsert(ctx, &models.Profile{UserID: other.ID, OpenToWork: false}))

	posts := seedPosts(t, db, author.ID)
	require.NoError(t, NewHiringPostRepository(db).SetActive(ctx, posts[1].ID, false))

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, NewReferralRepository(db).Create(ctx, &models.Referral{
		ReferrerID: other.ID, Company: "Acme", Role: "SRE", Slots: 1, IsActive: true,
	}))
	createMessage(t, db, author.ID, other.ID, "recent", now.Add(-24*time.Hour))
	createMessage(t, db, author.ID, other.ID, "old", now.Add(-30*24*time.Hour))

	s, err := NewAnalyticsRepository(db).Summary(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.TotalUsers)
	assert.Equal(t, int64(1), s.OpenToWork)
	assert.Equal(t, int64(2), s.ActiveHiringPosts)
	assert.Equal(t, int64(1), s.ActiveReferrals)
	assert.Equal(t, int64(1), s.MessagesLast7Days)

	assert.Equal(t, []models.FacetCount{{Key: "full-time", Count: 2}}, s.ByEmploymentType)
	assert.Equal(t, []models.FacetCount{{Key: "remote", Count: 1}, {Key: "on-site", Count: 1}}, s.RemoteSplit)
	assert.Equal(t, []models.FacetCount{{Key: "Acme", Count: 1}}, s.ReferralsByCompany)
	require.NotEmpty(t, s.TopSkills)
	assert.Equal(t, models.FacetCount{Key: "Go", Count: 2}, s.TopSkills[0])
	assert.Len(t, s.TopLocations, 2, "locations are grouped verbatim")
}
