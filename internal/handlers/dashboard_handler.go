package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/export"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

// DashboardHandler serves the signed-in user's profile, analytics and
// report downloads.
type DashboardHandler struct {
	BaseHandler
	store    *session.Store
	exporter *export.Service
}

func NewDashboardHandler(store *session.Store, exporter *export.Service, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		exporter:    exporter,
	}
}

// Profile returns the upstream's profile view with aggregate stats.
func (h *DashboardHandler) Profile(c *gin.Context) {
	sess := CurrentSession(c)
	profile, err := h.store.Client(sess.ID).UserProfile(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", profile)
}

// Analytics computes the dashboard summary from attempt history.
func (h *DashboardHandler) Analytics(c *gin.Context) {
	sess := CurrentSession(c)
	entries, err := h.store.Client(sess.ID).UserAttempts(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", export.Summarize(entries))
}

// Export downloads the attempt history as xlsx (default) or csv.
func (h *DashboardHandler) Export(c *gin.Context) {
	sess := CurrentSession(c)
	entries, err := h.store.Client(sess.ID).UserAttempts(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "xlsx":
		data, err := h.exporter.HistoryExcel(entries)
		if err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Export failed", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="attempt-history.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.exporter.HistoryCSV(entries)
		if err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Export failed", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="attempt-history.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported export format", nil, format)
	}
}
