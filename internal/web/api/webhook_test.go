package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookrelay/auth"
	"hookrelay/internal/dispatch"
	"hookrelay/internal/models"
	"hookrelay/internal/web/middleware"
	"hookrelay/internal/weblog"
)

type stubRuleSource struct {
	rules []models.Rule
	err   error
}

func (s stubRuleSource) GetAllRules(context.Context) ([]models.Rule, error) {
	return s.rules, s.err
}

type recordingSink struct {
	chats []string
}

func (s *recordingSink) Send(_ context.Context, _, chatID, _ string) (json.RawMessage, error) {
	s.chats = append(s.chats, chatID)
	return json.RawMessage(`{"ok":true}`), nil
}

func newWebhookRouter(src dispatch.RuleSource, sink dispatch.Sink) (*gin.Engine, *weblog.MemoryStore) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := weblog.NewMemoryStore()
	token := "tok"
	service := dispatch.NewService(src, dispatch.NewDispatcher(sink, &token), weblog.NewRecorder(store))

	authModule := auth.NewAuthModule(nil, nil, "test-secret")
	mw := middleware.NewMiddlewareManager(nil, nil, authModule)
	RegisterWebhookRoutes(router, mw, service, store)
	return router, store
}

func postWebhook(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookVerifyShortCircuit(t *testing.T) {
	var callbackHit bool
	cb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callbackHit = true
		w.WriteHeader(200)
	}))
	defer cb.Close()

	sink := &recordingSink{}
	router, store := newWebhookRouter(stubRuleSource{rules: []models.Rule{
		{ID: 1, Condition: `payload.callback`, ChatID: "1", Enabled: true},
	}}, sink)

	w := postWebhook(t, router, `{"event": "webhook.verify", "payload": {"callback": "`+cb.URL+`"}}`)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"verified": true}`, w.Body.String())
	assert.True(t, callbackHit)

	// The pipeline never ran: no sends, no log entry.
	assert.Empty(t, sink.chats)
	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWebhookVerifyWithoutCallbackDispatches(t *testing.T) {
	sink := &recordingSink{}
	router, _ := newWebhookRouter(stubRuleSource{rules: []models.Rule{
		{ID: 1, Condition: `payload.category == "incident"`, ChatID: "9", Enabled: true},
	}}, sink)

	w := postWebhook(t, router, `{"event": "webhook.verify", "payload": {"category": "incident"}}`)

	assert.Equal(t, 200, w.Code)
	assert.NotContains(t, w.Body.String(), "verified")
	assert.Equal(t, []string{"9"}, sink.chats)
}

func TestWebhookDispatchResponseShape(t *testing.T) {
	sink := &recordingSink{}
	router, store := newWebhookRouter(stubRuleSource{rules: []models.Rule{
		{ID: 1, Condition: `payload.category == "incident"`, ChatID: "1", Enabled: true},
		{ID: 2, Condition: `payload.category == "request"`, ChatID: "2", Enabled: true},
	}}, sink)

	w := postWebhook(t, router, `{"payload": {"category": "incident", "subject": "Oops"}}`)

	require.Equal(t, 200, w.Code)
	var resp struct {
		Matched int                     `json:"matched"`
		Sent    int                     `json:"sent"`
		Results []models.DispatchResult `json:"telegram_results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Matched)
	assert.Equal(t, 1, resp.Sent)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "1", resp.Results[0].ChatID)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "matched", entries[0].Status)
}

func TestWebhookRuleLoadFailure(t *testing.T) {
	router, _ := newWebhookRouter(stubRuleSource{err: assert.AnError}, &recordingSink{})

	w := postWebhook(t, router, `{"category": "incident"}`)
	assert.Equal(t, 500, w.Code)
}

func TestWebhookInvalidBody(t *testing.T) {
	router, _ := newWebhookRouter(stubRuleSource{}, &recordingSink{})

	w := postWebhook(t, router, `not json`)
	assert.Equal(t, 400, w.Code)
}
