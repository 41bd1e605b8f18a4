package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"rehire/internal/config"
	"rehire/internal/database/dbtest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_secret"

// envelope mirrors models.Response with a raw payload for typed decoding.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type testClient struct {
	t   *testing.T
	app *fiber.App
	srv *Server
}

// newTestClient wires a Server against a private SQLite database and an
// in-process Redis.
func newTestClient(t *testing.T) *testClient {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(&config.Config{JWTSecret: testSecret}, dbtest.Open(t), rdb)
	require.NoError(t, err)
	srv.users.SetPasswordCost(bcrypt.MinCost)

	return &testClient{t: t, app: srv.App(), srv: srv}
}

// do sends a JSON request and decodes the envelope.
func (tc *testClient) do(method, path, token string, body interface{}) (int, envelope) {
	tc.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.app.Test(req, -1)
	require.NoError(tc.t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	require.NoError(tc.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// decode unmarshals the envelope payload into dest.
func (tc *testClient) decode(env envelope, dest interface{}) {
	tc.t.Helper()
	require.NoError(tc.t, json.Unmarshal(env.Data, dest))
}

type account struct {
	ID    uint
	Token string
}

// signup registers name@example.com and returns its id and token.
func (tc *testClient) signup(name string) account {
	tc.t.Helper()

	status, env := tc.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": "hunter22x",
		"name":     name,
	})
	require.Equal(tc.t, http.StatusCreated, status, env.Message)

	var res struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	tc.decode(env, &res)
	require.NotEmpty(tc.t, res.Token)
	return account{ID: res.User.ID, Token: res.Token}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
