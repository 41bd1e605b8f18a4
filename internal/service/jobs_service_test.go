package service

import (
	"context"
	"testing"
	"time"

	"rehire/internal/database/dbtest"
	"rehire/internal/models"
	"rehire/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestHiringService_Lifecycle(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	svc := NewHiringService(repository.NewHiringPostRepository(db))
	author := createUser(t, db, "hiring-manager")
	other := createUser(t, db, "other")

	_, err := svc.Create(ctx, author.ID, HiringPostInput{Company: "Acme", Title: ""})
	requireCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, author.ID, HiringPostInput{
		Company: "Acme", Title: "SRE", SalaryMin: intPtr(150000), SalaryMax: intPtr(100000),
	})
	requireCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, author.ID, HiringPostInput{Company: "Acme", Title: "SRE", EmploymentType: "gig"})
	requireCode(t, err, models.CodeValidation)

	post, err := svc.Create(ctx, author.ID, HiringPostInput{
		Company: " Acme ", Title: "SRE", Location: "Lisbon", Remote: true,
		Skills: []string{"Go", "Terraform", "go"},
	})
	require.NoError(t, err)
	assert.True(t, post.IsActive)
	assert.Equal(t, "Acme", post.Company)
	assert.Equal(t, models.EmploymentFullTime, post.EmploymentType)
	assert.Equal(t, []string{"Go", "Terraform"}, post.Skills)
	require.NotNil(t, post.Author)

	_, err = svc.Update(ctx, post.ID, other.ID, HiringPostInput{Company: "Acme", Title: "Hijacked"})
	requireCode(t, err, models.CodeForbidden)

	updated, err := svc.Update(ctx, post.ID, author.ID, HiringPostInput{
		Company: "Acme", Title: "Senior SRE", EmploymentType: models.EmploymentContract,
	})
	require.NoError(t, err)
	assert.Equal(t, "Senior SRE", updated.Title)
	assert.Equal(t, models.EmploymentContract, updated.EmploymentType)
	assert.True(t, updated.IsActive)

	_, err = svc.Close(ctx, post.ID, other.ID)
	requireCode(t, err, models.CodeForbidden)

	closed, err := svc.Close(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)

	active, total, err := svc.Search(ctx, repository.HiringPostFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Zero(t, total)

	err = svc.Delete(ctx, post.ID, other.ID)
	requireCode(t, err, models.CodeForbidden)
	require.NoError(t, svc.Delete(ctx, post.ID, author.ID))
	_, err = svc.Get(ctx, post.ID)
	requireCode(t, err, models.CodeNotFound)
}

func TestReferralService_Lifecycle(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	clock := newFakeClock()
	svc := NewReferralService(repository.NewReferralRepository(db))
	svc.SetClock(clock.Now)
	referrer := createUser(t, db, "insider")
	other := createUser(t, db, "other")

	past := baseTime.Add(-time.Hour)
	_, err := svc.Create(ctx, referrer.ID, ReferralInput{Company: "Globex", Role: "QA", ExpiresAt: &past})
	requireCode(t, err, models.CodeValidation)

	expires := baseTime.Add(48 * time.Hour)
	referral, err := svc.Create(ctx, referrer.ID, ReferralInput{Company: "Globex", Role: "QA", ExpiresAt: &expires})
	require.NoError(t, err)
	assert.True(t, referral.IsActive)
	assert.Equal(t, 1, referral.Slots)

	active := true
	found, _, err := svc.Search(ctx, repository.ReferralFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// Past the expiry the referral reads as inactive without any write.
	clock.Advance(72 * time.Hour)
	found, _, err = svc.Search(ctx, repository.ReferralFilter{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = svc.Update(ctx, referral.ID, other.ID, ReferralInput{Company: "Globex", Role: "QA"})
	requireCode(t, err, models.CodeForbidden)

	updated, err := svc.Update(ctx, referral.ID, referrer.ID, ReferralInput{Company: "Globex", Role: "QA Lead", Slots: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Slots)
	assert.Nil(t, updated.ExpiresAt)

	closed, err := svc.Close(ctx, referral.ID, referrer.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)

	require.NoError(t, svc.Delete(ctx, referral.ID, referrer.ID))
	_, err = svc.Get(ctx, referral.ID)
	requireCode(t, err, models.CodeNotFound)
}
