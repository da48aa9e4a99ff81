package handlers

import (
	"github.com/gin-gonic/gin"

	"autoassist/internal/services"
	"autoassist/internal/utils"
)

// DashboardHandler serves the dispatcher dashboard from the polling view
// rather than the store, so dashboard refreshes cost nothing beyond the
// poll cadence. The view is eventually consistent; "stale" flags a view
// whose last refresh attempt failed.
type DashboardHandler struct {
	view *services.SyncPoller
}

func NewDashboardHandler(view *services.SyncPoller) *DashboardHandler {
	return &DashboardHandler{view: view}
}

// ListRequests handles GET /dashboard/requests
func (h *DashboardHandler) ListRequests(c *gin.Context) {
	requests := h.view.Snapshot()

	utils.SuccessResponseWithMeta(c, "Dispatcher view retrieved", gin.H{
		"requests": requests,
		"stale":    h.view.LastError() != nil,
	}, &utils.Meta{Count: len(requests)})
}
