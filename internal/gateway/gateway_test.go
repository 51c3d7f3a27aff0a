package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menukiosk/internal/store"
	"menukiosk/pkg/database"
	"menukiosk/pkg/models"
)

func testClient(t *testing.T, baseURL string, cache *store.Store) *Client {
	t.Helper()
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
		Retry: RetryPolicy{
			Attempts:       3,
			BaseDelay:      time.Millisecond,
			AttemptTimeout: time.Second,
		},
		Cache:  cache,
		Logger: log.New(io.Discard, "", 0),
	}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return store.New(db)
}

func sampleMenu() models.Menu {
	return models.Menu{
		ID:       "m-1",
		Fecha:    "17/8/2025",
		MainDish: "Pollo a la plancha",
		Side:     "Arroz",
		Beverage: "Jugo",
		Likes:    3,
		Dislikes: 1,
	}
}

func TestAllMenusRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode([]models.Menu{sampleMenu()})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	menus, err := c.AllMenus(context.Background())
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "17/8/2025", menus[0].Fecha)
	assert.Equal(t, int32(3), hits.Load())
}

func TestAllMenusFallsBackToCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := testStore(t)
	require.NoError(t, cache.UpsertMenu(context.Background(), sampleMenu()))

	c := testClient(t, srv.URL, cache)
	menus, err := c.AllMenus(context.Background())
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "m-1", menus[0].ID)
}

func TestAllMenusSampleFallback(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // backend unreachable, no cache either

	c := testClient(t, srv.URL, nil)
	menus, err := c.AllMenus(context.Background())
	require.NoError(t, err, "list reads never fail outright")
	require.Len(t, menus, 1)
	assert.Equal(t, "Pollo a la plancha", menus[0].MainDish)
	assert.Zero(t, menus[0].Likes)
}

func TestMenuByDateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	m, err := c.MenuByDate(context.Background(), "1/1/2030")
	require.NoError(t, err, "not-found is a normal outcome")
	assert.Nil(t, m)
}

func TestMenuByDateCacheFallbackNeverFabricates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := testStore(t)
	require.NoError(t, cache.UpsertMenu(context.Background(), sampleMenu()))
	c := testClient(t, srv.URL, cache)

	m, err := c.MenuByDate(context.Background(), "17/8/2025")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "m-1", m.ID)

	missing, err := c.MenuByDate(context.Background(), "1/1/2030")
	require.NoError(t, err)
	assert.Nil(t, missing, "arbitrary dates are not invented")
}

func TestSubmitVoteWritesThroughCache(t *testing.T) {
	updated := sampleMenu()
	updated.Likes = 4
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vote", r.URL.Path)
		var req models.VoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Like)
		_ = json.NewEncoder(w).Encode(updated)
	}))
	defer srv.Close()

	cache := testStore(t)
	c := testClient(t, srv.URL, cache)

	m, err := c.SubmitVote(context.Background(), models.VoteRequest{Fecha: "17/8/2025", Like: true})
	require.NoError(t, err)
	assert.Equal(t, 4, m.Likes)

	cached, err := cache.ByDate(context.Background(), "17/8/2025")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, 4, cached.Likes)
}

func TestWritePathSurfacesFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	_, err := c.CreateOrUpdateMenu(context.Background(), models.CreateMenuRequest{
		Fecha:    "17/8/2025",
		MainDish: "Pollo",
		Side:     "Arroz",
		Beverage: "Jugo",
	})
	assert.Error(t, err)
	assert.Equal(t, int32(3), hits.Load(), "write retried up to the attempt limit")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	assert.NoError(t, c.Health(context.Background()))
}
