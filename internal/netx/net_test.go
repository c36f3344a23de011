package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRequest(t *testing.T) {
	t.Run("with body", func(t *testing.T) {
		req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://x/auth", map[string]string{"email": "a@b.c"})
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		b, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"a@b.c"}`, string(b))
	})

	t.Run("without body", func(t *testing.T) {
		req, err := NewJSONRequest(context.Background(), http.MethodGet, "http://x/me", nil)
		require.NoError(t, err)
		assert.Empty(t, req.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
	})

	t.Run("unencodable body", func(t *testing.T) {
		_, err := NewJSONRequest(context.Background(), http.MethodPost, "http://x", make(chan int))
		require.Error(t, err)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewJSONRequest(context.Background(), http.MethodGet, "://bad", nil)
		require.Error(t, err)
	})
}

func TestReadStatusError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantMsg string
	}{
		{"json error body", `{"error":"wrong password"}`, http.StatusBadRequest, "wrong password"},
		{"plain body", "Too Many Requests\n", http.StatusTooManyRequests, "Too Many Requests"},
		{"empty body", "", http.StatusBadGateway, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			resp, err := http.Get(ts.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			se := ReadStatusError(resp)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantMsg, se.Message)

			wrapped := fmt.Errorf("call: %w", se)
			got, ok := AsStatusError(wrapped)
			require.True(t, ok)
			assert.Same(t, se, got)
			assert.True(t, strings.HasPrefix(se.Error(), fmt.Sprintf("unexpected status %d", tt.status)))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token":"abc"}`)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, "abc", out.Token)

	_, ok := AsStatusError(assert.AnError)
	assert.False(t, ok)
}
