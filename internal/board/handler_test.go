package board

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menukiosk/internal/channel"
	"menukiosk/internal/comments"
	"menukiosk/internal/gateway"
	"menukiosk/internal/voting"
	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
)

type fixture struct {
	router  *gin.Engine
	machine *voting.Machine
	now     time.Time
}

func newFixture(t *testing.T, backend http.HandlerFunc, now time.Time, withMenu bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := log.New(io.Discard, "", 0)
	gw := &gateway.Client{
		BaseURL: srv.URL,
		HTTP:    &http.Client{},
		Retry: gateway.RetryPolicy{
			Attempts:       1,
			BaseDelay:      time.Millisecond,
			AttemptTimeout: time.Second,
		},
		Logger: logger,
	}

	machine := voting.NewMachine(11, 24, gw, logger)
	machine.Tick(now)
	if withMenu {
		machine.SetToday(&models.Menu{
			ID:       "m-1",
			Fecha:    dates.TodayAPI(now),
			MainDish: "Pollo a la plancha",
			Side:     "Arroz",
			Beverage: "Jugo",
			Likes:    4,
			Dislikes: 1,
		})
	}

	ch := channel.New("ws://unused", logger)

	h := NewHandler(machine, ch, gw, comments.NewService(gw, logger))
	h.Now = func() time.Time { return now }

	router := gin.New()
	h.RegisterRoutes(router.Group("/board"))
	return &fixture{router: router, machine: machine, now: now}
}

func noon() time.Time {
	return time.Date(2025, time.August, 17, 12, 0, 0, 0, time.Local)
}

func okBackend(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(gin.H{"ok": true})
}

func TestStateCarriesModeAndConnection(t *testing.T) {
	fx := newFixture(t, okBackend, noon(), true)

	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/state", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		State struct {
			Mode string `json:"mode"`
		} `json:"state"`
		Connection string `json:"connection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(voting.ModeOpenVoting), resp.State.Mode)
	assert.Equal(t, string(channel.StatusDisconnected), resp.Connection)
}

func postVote(t *testing.T, fx *fixture, rating string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(gin.H{"rating": rating})
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/board/vote", bytes.NewReader(body)))
	return w
}

func TestVoteRejectsUnknownRating(t *testing.T) {
	fx := newFixture(t, okBackend, noon(), true)
	assert.Equal(t, http.StatusBadRequest, postVote(t, fx, "meh").Code)
}

func TestVoteOutsideWindow(t *testing.T) {
	morning := time.Date(2025, time.August, 17, 9, 0, 0, 0, time.Local)
	fx := newFixture(t, okBackend, morning, true)
	assert.Equal(t, http.StatusConflict, postVote(t, fx, "like").Code)
}

func TestVoteWithoutMenu(t *testing.T) {
	fx := newFixture(t, okBackend, noon(), false)
	assert.Equal(t, http.StatusNotFound, postVote(t, fx, "like").Code)
}

func TestVoteAcceptedAndSecondVoteBlocked(t *testing.T) {
	fx := newFixture(t, okBackend, noon(), true)

	w := postVote(t, fx, "like")
	require.Equal(t, http.StatusAccepted, w.Code)

	var snap struct {
		Mode   string `json:"mode"`
		Marker string `json:"marker"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, string(voting.ModeOpenVoted), snap.Mode)
	assert.Equal(t, string(voting.RatingLike), snap.Marker)

	assert.Equal(t, http.StatusConflict, postVote(t, fx, "dislike").Code)
}

func TestCommentDefaultsToTodayAndCurrentDish(t *testing.T) {
	var received models.CommentRequest
	backend := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/comment" {
			_ = json.NewDecoder(r.Body).Decode(&received)
		}
		_ = json.NewEncoder(w).Encode(gin.H{"ok": true})
	}
	fx := newFixture(t, backend, noon(), true)

	body, _ := json.Marshal(gin.H{"body": "Estuvo muy rico"})
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/board/comment", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, dates.TodayAPI(fx.now), received.Fecha)
	assert.Equal(t, "Pollo a la plancha", received.MainDish)
	assert.Equal(t, "Estuvo muy rico", received.Body)
}

func TestCommentValidationSurfacesAs400(t *testing.T) {
	fx := newFixture(t, okBackend, noon(), true)

	body, _ := json.Marshal(gin.H{"body": "   "})
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/board/comment", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsRejectsBadPeriod(t *testing.T) {
	fx := newFixture(t, okBackend, noon(), true)

	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/stats?period=year-abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
