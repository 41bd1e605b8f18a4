package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hiringPostJSON struct {
	ID             uint     `json:"id"`
	AuthorID       uint     `json:"author_id"`
	Company        string   `json:"company"`
	Title          string   `json:"title"`
	Remote         bool     `json:"remote"`
	EmploymentType string   `json:"employment_type"`
	Skills         []string `json:"skills"`
	IsActive       bool     `json:"is_active"`
}

type hiringPage struct {
	Items  []hiringPostJSON `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func TestHiringPostEndpoints(t *testing.T) {
	tc := newTestClient(t)
	alice := tc.signup("alice")
	bob := tc.signup("bob")

	create := func(a account, body map[string]interface{}) hiringPostJSON {
		t.Helper()
		status, env := tc.do(http.MethodPost, "/api/hiring-posts", a.Token, body)
		require.Equal(t, http.StatusCreated, status, env.Message)
		var post hiringPostJSON
		tc.decode(env, &post)
		return post
	}

	backend := create(alice, map[string]interface{}{
		"company": "Acme", "title": "Backend Engineer", "location": "Berlin",
		"remote": true, "skills": []string{"Go", "Postgres"},
	})
	assert.Equal(t, alice.ID, backend.AuthorID)
	assert.Equal(t, "full-time", backend.EmploymentType)
	assert.True(t, backend.IsActive)

	create(bob, map[string]interface{}{
		"company": "Globex", "title": "Frontend Contractor", "location": "Lisbon",
		"employment_type": "contract", "skills": []string{"TypeScript"},
	})

	t.Run("invalid input", func(t *testing.T) {
		status, env := tc.do(http.MethodPost, "/api/hiring-posts", alice.Token, map[string]interface{}{
			"company": "Acme", "title": "x", "employment_type": "gig",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, env.Errors, "employment_type")

		status, _ = tc.do(http.MethodPost, "/api/hiring-posts", alice.Token, map[string]interface{}{
			"company": "Acme", "title": "x", "salary_min": 200, "salary_max": 100,
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			query    string
			expected []string
		}{
			{"", []string{"Frontend Contractor", "Backend Engineer"}},
			{"?remote=true", []string{"Backend Engineer"}},
			{"?employmentType=contract", []string{"Frontend Contractor"}},
			{"?skill=go", []string{"Backend Engineer"}},
			{"?q=globex", []string{"Frontend Contractor"}},
			{"?location=berlin", []string{"Backend Engineer"}},
			{"?limit=1", []string{"Frontend Contractor"}},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				status, env := tc.do(http.MethodGet, "/api/hiring-posts"+tt.query, bob.Token, nil)
				require.Equal(t, http.StatusOK, status, env.Message)
				var page hiringPage
				tc.decode(env, &page)
				titles := make([]string, 0, len(page.Items))
				for _, p := range page.Items {
					titles = append(titles, p.Title)
				}
				assert.Equal(t, tt.expected, titles)
			})
		}

		status, _ := tc.do(http.MethodGet, "/api/hiring-posts?remote=sometimes", bob.Token, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("only the author can change a post", func(t *testing.T) {
		path := "/api/hiring-posts/" + itoa(backend.ID)

		status, _ := tc.do(http.MethodPatch, path+"/close", bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, env := tc.do(http.MethodPut, path, alice.Token, map[string]interface{}{
			"company": "Acme", "title": "Senior Backend Engineer", "remote": true,
		})
		require.Equal(t, http.StatusOK, status, env.Message)
		var updated hiringPostJSON
		tc.decode(env, &updated)
		assert.Equal(t, "Senior Backend Engineer", updated.Title)

		status, env = tc.do(http.MethodPatch, path+"/close", alice.Token, nil)
		require.Equal(t, http.StatusOK, status)
		var closed hiringPostJSON
		tc.decode(env, &closed)
		assert.False(t, closed.IsActive)

		_, env = tc.do(http.MethodGet, "/api/hiring-posts", bob.Token, nil)
		var page hiringPage
		tc.decode(env, &page)
		assert.Equal(t, int64(1), page.Total)

		_, env = tc.do(http.MethodGet, "/api/hiring-posts?includeClosed=true", bob.Token, nil)
		tc.decode(env, &page)
		assert.Equal(t, int64(2), page.Total)

		status, _ = tc.do(http.MethodDelete, path, bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, status)
		status, _ = tc.do(http.MethodDelete, path, alice.Token, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = tc.do(http.MethodGet, path, alice.Token, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestReferralEndpoints(t *testing.T) {
	tc := newTestClient(t)
	alice := tc.signup("alice")
	bob := tc.signup("bob")

	status, env := tc.do(http.MethodPost, "/api/referrals", alice.Token, map[string]interface{}{
		"company": "Initech", "role": "Platform Engineer", "slots": 3,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var referral struct {
		ID         uint   `json:"id"`
		ReferrerID uint   `json:"referrer_id"`
		Slots      int    `json:"slots"`
		Company    string `json:"company"`
	}
	tc.decode(env, &referral)
	assert.Equal(t, alice.ID, referral.ReferrerID)
	assert.Equal(t, 3, referral.Slots)

	status, env = tc.do(http.MethodPost, "/api/referrals", alice.Token, map[string]interface{}{
		"company": "Initech", "role": "SRE", "expires_at": time.Now().Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "expires_at")

	type page struct {
		Total int64 `json:"total"`
	}
	list := func(query string) int64 {
		t.Helper()
		status, env := tc.do(http.MethodGet, "/api/referrals"+query, bob.Token, nil)
		require.Equal(t, http.StatusOK, status, env.Message)
		var p page
		tc.decode(env, &p)
		return p.Total
	}

	assert.Equal(t, int64(1), list("?active=true&company=initech"))
	assert.Equal(t, int64(0), list("?company=globex"))

	path := "/api/referrals/" + itoa(referral.ID)
	status, _ = tc.do(http.MethodPatch, path+"/close", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = tc.do(http.MethodPatch, path+"/close", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, int64(0), list("?active=true"))
	assert.Equal(t, int64(1), list("?active=false"))

	status, _ = tc.do(http.MethodDelete, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = tc.do(http.MethodGet, path, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnalyticsSummaryEndpoint(t *testing.T) {
	tc := newTestClient(t)
	alice := tc.signup("alice")
	bob := tc.signup("bob")

	status, _ := tc.do(http.MethodPost, "/api/hiring-posts", alice.Token, map[string]interface{}{
		"company": "Acme", "title": "Backend Engineer", "remote": true, "skills": []string{"Go"},
	})
	require.Equal(t, http.StatusCreated, status)
	tc.send(alice, bob.ID, "hello")

	status, env := tc.do(http.MethodGet, "/api/analytics/summary", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalUsers        int64 `json:"total_users"`
		OpenToWork        int64 `json:"open_to_work"`
		ActiveHiringPosts int64 `json:"active_hiring_posts"`
		MessagesLast7Days int64 `json:"messages_last_7_days"`
	}
	tc.decode(env, &summary)
	assert.Equal(t, int64(2), summary.TotalUsers)
	assert.Equal(t, int64(2), summary.OpenToWork)
	assert.Equal(t, int64(1), summary.ActiveHiringPosts)
	assert.Equal(t, int64(1), summary.MessagesLast7Days)
}
