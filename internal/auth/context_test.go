package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer sk-123", want: "sk-123"},
		{name: "lower case scheme", header: "bearer sk-123", want: "sk-123"},
		{name: "padded", header: "  Bearer   sk-123  ", want: "sk-123"},
		{name: "basic", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "no token", header: "Bearer", want: ""},
		{name: "empty", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	var (
		got string
		ok  bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetCredential(r.Context())
	})

	r := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	r.Header.Set("Authorization", "Bearer sk-abc")
	Middleware(next).ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, ok)
	assert.Equal(t, "sk-abc", got)

	r = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	Middleware(next).ServeHTTP(httptest.NewRecorder(), r)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestGetCredential_EmptyIsAbsent(t *testing.T) {
	r := SetCredential(httptest.NewRequest(http.MethodGet, "/", nil), "")
	_, ok := GetCredential(r.Context())
	assert.False(t, ok)
}
