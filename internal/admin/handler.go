// Package admin is the staff HTTP surface: menu management, advanced
// statistics with custom date ranges, autocomplete suggestions and
// notification dispatch. Every route here sits behind the auth
// middleware.
package admin

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"menukiosk/internal/gateway"
	"menukiosk/internal/stats"
	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
)

type Handler struct {
	Gateway *gateway.Client
	Now     func() time.Time
}

func NewHandler(gw *gateway.Client) *Handler {
	return &Handler{Gateway: gw, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/menus", h.listMenus)
	rg.GET("/menus/by-date", h.menuByDate)
	rg.POST("/menus", h.saveMenu)
	rg.PUT("/menus/:id", h.updateMenu)
	rg.GET("/stats", h.stats)
	rg.GET("/suggestions", h.suggestions)
	rg.POST("/notify/test", h.notifyTest)
	rg.POST("/notify/yesterday", h.notifyYesterday)
	rg.GET("/backend-health", h.backendHealth)
}

func (h *Handler) listMenus(c *gin.Context) {
	items, err := h.Gateway.AllMenus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) menuByDate(c *gin.Context) {
	iso := c.Query("date")
	fecha, err := dates.ISOToAPI(iso)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	m, err := h.Gateway.MenuByDate(c.Request.Context(), fecha)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

type saveMenuReq struct {
	Date     string `json:"date"` // ISO YYYY-MM-DD
	MainDish string `json:"mainDish"`
	Side     string `json:"side"`
	Beverage string `json:"beverage"`
}

// saveMenu validates the whole form before any network call: an
// incomplete menu is a user-facing message, never a backend roundtrip.
func (h *Handler) saveMenu(c *gin.Context) {
	var req saveMenuReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.MainDish = strings.TrimSpace(req.MainDish)
	req.Side = strings.TrimSpace(req.Side)
	req.Beverage = strings.TrimSpace(req.Beverage)
	if req.MainDish == "" || req.Side == "" || req.Beverage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "main dish, side and beverage are all required"})
		return
	}

	fecha, err := dates.ISOToAPI(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	m, err := h.Gateway.CreateOrUpdateMenu(c.Request.Context(), models.CreateMenuRequest{
		Fecha:    fecha,
		MainDish: req.MainDish,
		Side:     req.Side,
		Beverage: req.Beverage,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) updateMenu(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	m, err := h.Gateway.UpdateMenuByID(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, m)
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

// suggestions feeds the autocomplete inputs on the menu form with every
// distinct value seen in the history, sorted.
func (h *Handler) suggestions(c *gin.Context) {
	menus, err := h.Gateway.AllMenus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mainDishes": distinct(menus, func(m models.Menu) string { return m.MainDish }),
		"sides":      distinct(menus, func(m models.Menu) string { return m.Side }),
		"beverages":  distinct(menus, func(m models.Menu) string { return m.Beverage }),
	})
}

func (h *Handler) notifyTest(c *gin.Context) {
	iso := c.Query("date")
	fecha, err := dates.ISOToAPI(iso)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	result, err := h.Gateway.NotifyTest(c.Request.Context(), fecha)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "notify failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) notifyYesterday(c *gin.Context) {
	result, err := h.Gateway.NotifyYesterday(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "notify failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) backendHealth(c *gin.Context) {
	if err := h.Gateway.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"backend": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backend": "ok"})
}

func distinct(menus []models.Menu, pick func(models.Menu) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range menus {
		v := pick(m)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}
