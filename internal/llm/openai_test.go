package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, parts []string, gotHeaders *http.Header) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if gotHeaders != nil {
			*gotHeaders = r.Header.Clone()
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range parts {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", p)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIModel_Stream(t *testing.T) {
	var headers http.Header
	srv := sseServer(t, []string{"Hel", "lo"}, &headers)
	defer srv.Close()

	m := NewOpenAI("key", srv.URL+"/v1", "m", "https://example.org", "bot")
	ch, err := m.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)

	var parts []string
	for c := range ch {
		require.NoError(t, c.Err)
		parts = append(parts, c.Content)
	}
	assert.Equal(t, []string{"Hel", "lo"}, parts)
	assert.Equal(t, "https://example.org", headers.Get("HTTP-Referer"))
	assert.Equal(t, "bot", headers.Get("X-Title"))
}

func TestOpenAIModel_StreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	m := NewOpenAI("key", srv.URL+"/v1", "m", "", "")
	_, err := m.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
}
