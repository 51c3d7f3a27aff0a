// Package board is the public kiosk HTTP surface: the voting screen
// state, vote taps, guest comments and the public statistics view.
package board

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"menukiosk/internal/channel"
	"menukiosk/internal/comments"
	"menukiosk/internal/gateway"
	"menukiosk/internal/stats"
	"menukiosk/internal/voting"
	"menukiosk/pkg/dates"
)

type Handler struct {
	Machine  *voting.Machine
	Channel  *channel.Channel
	Gateway  *gateway.Client
	Comments *comments.Service
	Now      func() time.Time
}

func NewHandler(m *voting.Machine, ch *channel.Channel, gw *gateway.Client, cs *comments.Service) *Handler {
	return &Handler{
		Machine:  m,
		Channel:  ch,
		Gateway:  gw,
		Comments: cs,
		Now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/state", h.state)       // GET /board/state
	rg.POST("/vote", h.vote)        // POST /board/vote
	rg.POST("/comment", h.comment)  // POST /board/comment
	rg.GET("/menus", h.menus)       // GET /board/menus
	rg.GET("/stats", h.stats)       // GET /board/stats?period=...
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":      h.Machine.Snapshot(h.Now()),
		"connection": h.Channel.Status(),
	})
}

type voteReq struct {
	Rating string `json:"rating"`
}

func (h *Handler) vote(c *gin.Context) {
	var req voteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	rating := voting.Rating(req.Rating)
	if rating != voting.RatingLike && rating != voting.RatingDislike {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be like or dislike"})
		return
	}

	err := h.Machine.Submit(h.Now(), rating)
	switch {
	case errors.Is(err, voting.ErrNoMenu):
		c.JSON(http.StatusNotFound, gin.H{"error": "no menu configured for today"})
	case errors.Is(err, voting.ErrNotOpen), errors.Is(err, voting.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote failed"})
	default:
		c.JSON(http.StatusAccepted, h.Machine.Snapshot(h.Now()))
	}
}

type commentReq struct {
	Date     string `json:"date"` // ISO or D/M/YYYY; empty means today
	MainDish string `json:"mainDish"`
	Body     string `json:"body"`
}

func (h *Handler) comment(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.Date == "" {
		req.Date = dates.TodayAPI(h.Now())
	}
	if req.MainDish == "" {
		if snap := h.Machine.Snapshot(h.Now()); snap.Menu != nil {
			req.MainDish = snap.Menu.MainDish
		}
	}

	err := h.Comments.Submit(c.Request.Context(), req.Date, req.MainDish, req.Body)
	switch {
	case errors.Is(err, comments.ErrEmpty), errors.Is(err, comments.ErrTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "comment submission failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (h *Handler) menus(c *gin.Context) {
	items, err := h.Gateway.AllMenus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) stats(c *gin.Context) {
	period, err := stats.ParsePeriod(c.Query("period"), c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	menus, err := h.Gateway.AllMenus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":         stats.Aggregate(menus, period, h.Now()),
		"availableYears": stats.AvailableYears(menus),
	})
}
