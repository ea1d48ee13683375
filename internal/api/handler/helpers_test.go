package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"modhub/backend/internal/api/handler"
	"modhub/backend/internal/auth"
	"modhub/backend/internal/chathub"
	"modhub/backend/internal/config"
	"modhub/backend/internal/markup"
	"modhub/backend/internal/models"
	"modhub/backend/internal/moderation"
	"modhub/backend/internal/storage"
	"modhub/backend/internal/upload"
)

type testServer struct {
	router *gin.Engine
	store  *storage.Service
	hub    *chathub.ManagerService
	tokens *auth.TokenService
	// uploadDir is where accepted files land.
	uploadDir string
	seq       int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewStorageService(context.Background(), nil)
	filter := moderation.NewFilter()
	hub := chathub.NewManagerService(store, filter)
	tokens := auth.NewTokenService("test-secret", time.Hour)

	enforcer, err := auth.NewEnforcer()
	require.NoError(t, err)
	uploadDir := t.TempDir()
	uploader, err := upload.NewUploader(uploadDir, "/uploads", config.MaxUploadSize)
	require.NoError(t, err)

	h := handler.NewHandler(store, hub, tokens, enforcer, filter, markup.NewRenderer(), uploader,
		handler.Options{BcryptCost: bcrypt.MinCost})

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	return &testServer{router: handler.NewRouter(h), store: store, hub: hub, tokens: tokens, uploadDir: uploadDir}
}

// createUser stores an account directly and returns it with a valid token.
func (ts *testServer) createUser(t *testing.T, username string, admin bool) (*models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	user, err := ts.store.CreateUser(models.InsertUser{Username: username, PasswordHash: hash, IsAdmin: admin})
	require.NoError(t, err)

	token, err := ts.tokens.Issue(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.send(req, token)
}

func (ts *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// listen registers an in-process subscriber on the hub.
func (ts *testServer) listen(t *testing.T, userID int64, topics ...string) *testClient {
	t.Helper()
	client := &testClient{userID: userID, topics: topics, send: make(chan models.Envelope, 16)}
	want := ts.hub.ClientCount() + 1
	require.True(t, ts.hub.Register(client))
	require.Eventually(t, func() bool { return ts.hub.ClientCount() == want }, time.Second, 5*time.Millisecond)
	return client
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Message string `json:"message"`
}

type testClient struct {
	userID int64
	topics []string
	send   chan models.Envelope
}

func (c *testClient) GetUserID() int64                       { return c.userID }
func (c *testClient) Subscribed(topic string) bool           { return slices.Contains(c.topics, topic) }
func (c *testClient) GetSendChannel() chan<- models.Envelope { return c.send }
func (c *testClient) Run()                                   {}
func (c *testClient) Close()                                 { close(c.send) }

// events returns the types of every event queued so far.
func (c *testClient) events() []string {
	var out []string
	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, env.Type)
		default:
			return out
		}
	}
}
