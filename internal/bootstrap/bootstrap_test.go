package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/config"
	"github.com/yigit/flashclass/internal/docstore/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	deps   *Dependencies
}

func (c apiClient) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (c apiClient) login(email, password string) string {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, code)
	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &resp))
	return resp.Token.AccessToken
}

func (c apiClient) register(name, email, password string) (string, string) {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(c.t, http.StatusCreated, code)
	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &resp))
	return resp.Token.AccessToken, resp.User.ID
}

func createdID(t *testing.T, env envelope) string {
	t.Helper()
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func newTestAPI(t *testing.T) apiClient {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = config.StoreMemory
	cfg.JWT.Secret = "test-secret"
	cfg.Admin.Email = "admin@example.com"
	cfg.Admin.Password = "adminpass1"

	deps, err := BuildDependencies(cfg, memory.New(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, SeedDefaultData(context.Background(), cfg, deps))

	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	return apiClient{t: t, router: router, deps: deps}
}

func TestClassMaterialsOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	adminToken := api.login("admin@example.com", "adminpass1")
	aliceToken, aliceID := api.register("Alice", "alice@example.com", "alicepass1")
	bobToken, _ := api.register("Bob", "bob@example.com", "bobpass12")

	code, env := api.do(http.MethodPost, "/api/v1/folders", adminToken, map[string]string{"name": "Algebra"})
	require.Equal(t, http.StatusCreated, code)
	folderID := createdID(t, env)

	code, env = api.do(http.MethodPost, "/api/v1/flashcards", adminToken, map[string]any{
		"title": "Sum", "question": "2+2?", "answer": "4", "folderId": folderID,
	})
	require.Equal(t, http.StatusCreated, code)
	cardID := createdID(t, env)

	code, env = api.do(http.MethodPost, "/api/v1/classes", adminToken, map[string]string{"name": "Maths"})
	require.Equal(t, http.StatusCreated, code)
	classID := createdID(t, env)

	code, _ = api.do(http.MethodPut, "/api/v1/classes/"+classID+"/members", adminToken, map[string]any{
		"members": []string{aliceID},
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodPut, "/api/v1/classes/"+classID+"/materials", adminToken, map[string]any{
		"flashcards": []string{cardID, "missing"},
		"folders":    []string{folderID},
	})
	require.Equal(t, http.StatusOK, code)

	t.Run("member sees the card twice and the dangling id is skipped", func(t *testing.T) {
		code, env := api.do(http.MethodGet, "/api/v1/classes/"+classID+"/materials", aliceToken, nil)
		require.Equal(t, http.StatusOK, code)
		var resp struct {
			Count      int `json:"count"`
			Flashcards []struct {
				ID string `json:"id"`
			} `json:"flashcards"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Flashcards, 2)
		assert.Equal(t, cardID, resp.Flashcards[0].ID)
		assert.Equal(t, cardID, resp.Flashcards[1].ID)
	})

	t.Run("member may view a shared card", func(t *testing.T) {
		code, _ := api.do(http.MethodGet, "/api/v1/flashcards/"+cardID, aliceToken, nil)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("outsider is denied", func(t *testing.T) {
		code, env := api.do(http.MethodGet, "/api/v1/classes/"+classID+"/materials", bobToken, nil)
		assert.Equal(t, http.StatusForbidden, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "AUTH_009", env.Error.Code)
	})

	t.Run("member cannot mutate the class", func(t *testing.T) {
		code, _ := api.do(http.MethodPut, "/api/v1/classes/"+classID+"/members", aliceToken, map[string]any{
			"members": []string{},
		})
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("unknown class is not found", func(t *testing.T) {
		code, env := api.do(http.MethodGet, "/api/v1/classes/nope/materials", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "RES_001", env.Error.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		code, _ := api.do(http.MethodGet, "/api/v1/classes", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestHealthAndPing(t *testing.T) {
	api := newTestAPI(t)

	code, _ := api.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"memory"`)
}

func TestEventStreamStopsAfterRemoval(t *testing.T) {
	api := newTestAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	go api.deps.Hub.Run(ctx)
	srv := httptest.NewServer(api.router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	adminToken := api.login("admin@example.com", "adminpass1")
	aliceToken, aliceID := api.register("Alice", "alice@example.com", "alicepass1")

	code, env := api.do(http.MethodPost, "/api/v1/classes", adminToken, map[string]string{"name": "Maths"})
	require.Equal(t, http.StatusCreated, code)
	classID := createdID(t, env)
	code, _ = api.do(http.MethodPut, "/api/v1/classes/"+classID+"/members", adminToken, map[string]any{
		"members": []string{aliceID},
	})
	require.Equal(t, http.StatusOK, code)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/classes/" + classID + "/events?token=" + aliceToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return api.deps.Hub.GetClientsCount(classID) == 1 }, time.Second, 10*time.Millisecond)

	code, _ = api.do(http.MethodPut, "/api/v1/classes/"+classID+"/members", adminToken, map[string]any{
		"members": []string{},
	})
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodGet, "/api/v1/classes/"+classID, aliceToken, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, "/api/v1/classes/"+classID+"/manual-members", adminToken, map[string]string{
		"name": "Jane", "email": "jane@private.example", "roll": "7",
	})
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		assert.NotContains(t, string(data), "jane@private.example")
	}
	assert.Equal(t, 0, api.deps.Hub.GetClientsCount(classID))
}
