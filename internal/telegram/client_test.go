package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok": true, "result": {"message_id": 7}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	raw, err := c.Send(context.Background(), "tok123", "42", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/bottok123/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
	assert.Contains(t, string(raw), "message_id")
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.Send(context.Background(), "tok", "0", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/botgood/getMe" {
			w.Write([]byte(`{"ok": true, "result": {"username": "relay_bot"}}`))
			return
		}
		w.WriteHeader(401)
		w.Write([]byte(`{"ok": false, "description": "Unauthorized"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	assert.NoError(t, c.GetMe(context.Background(), "good"))
	err := c.GetMe(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}
