package source

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/carry/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"fecha":"2024-01-02","vcp":100}]`)
	}))
	defer server.Close()

	cache := NewDailyCache(t.TempDir(), nil, zerolog.Nop())
	day := date.New(2024, 1, 2)
	cache.today = func() date.Date { return day }
	client := &http.Client{Transport: cache}

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := client.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	_, body := get("/prices")
	assert.Equal(t, `[{"fecha":"2024-01-02","vcp":100}]`, body)
	_, body = get("/prices")
	assert.Equal(t, `[{"fecha":"2024-01-02","vcp":100}]`, body, "served from disk")
	assert.Equal(t, 1, hits)

	day = day.Add(1)
	get("/prices")
	assert.Equal(t, 2, hits, "entries expire with the day")

	status, _ := get("/missing")
	assert.Equal(t, http.StatusNotFound, status)
	get("/missing")
	assert.Equal(t, 4, hits, "errors are not cached")
}
