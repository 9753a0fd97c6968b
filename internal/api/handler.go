package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
)

// Refresher runs one refresh cycle. Every request below triggers exactly one.
type Refresher interface {
	Refresh(ctx context.Context, controls models.Controls) present.View
	Defaults() models.Controls
}

type Handler struct {
	refresher Refresher
}

func NewHandler(refresher Refresher) *Handler {
	return &Handler{
		refresher: refresher,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(dashboardTemplate)

	r.GET("/", h.dashboard)
	r.GET("/api/view", h.getView)
	r.GET("/api/events", h.getEvents)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type dashboardPage struct {
	View         present.View
	Caption      string
	LimitChoices []int
	StatsHeader  []string
}

func (h *Handler) dashboard(c *gin.Context) {
	view := h.refresher.Refresh(c.Request.Context(), h.controls(c))

	// The page renders the error state itself, so it is always a 200.
	c.HTML(http.StatusOK, "dashboard", dashboardPage{
		View:         view,
		Caption:      present.Caption(view.Controls),
		LimitChoices: models.LimitChoices,
		StatsHeader:  present.StatsHeader,
	})
}

func (h *Handler) getView(c *gin.Context) {
	view := h.refresher.Refresh(c.Request.Context(), h.controls(c))

	code := http.StatusOK
	if view.IsError() {
		code = http.StatusBadGateway
	}
	c.JSON(code, view)
}

func (h *Handler) getEvents(c *gin.Context) {
	view := h.refresher.Refresh(c.Request.Context(), h.controls(c))
	if view.IsError() {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": view.Error,
		})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(view.Rows))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// controls reads the control values from the query string. Values that do
// not parse keep their default; range checks happen in the pipeline.
func (h *Handler) controls(c *gin.Context) models.Controls {
	controls := h.refresher.Defaults()

	if m := c.Query("min_magnitude"); m != "" {
		if mag, err := strconv.ParseFloat(m, 64); err == nil {
			controls.MinMagnitude = mag
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil {
			controls.Limit = lim
		}
	}
	if w := c.Query("window_hours"); w != "" {
		if hours, err := strconv.Atoi(w); err == nil {
			controls.WindowHours = hours
		}
	}

	return controls
}
