package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoassist/internal/handlers"
	"autoassist/internal/models"
	"autoassist/internal/repositories/memory"
	"autoassist/internal/services"
	"autoassist/pkg/logger"
	"autoassist/routes"

	"github.com/gin-gonic/gin"
)

func TestDashboardServesPolledView(t *testing.T) {
	gin.SetMode(gin.TestMode)

	requests := memory.NewBreakdownRequestRepository()
	requests.Seed(&models.BreakdownRequest{
		CustomerName:  "Meera",
		ContactNumber: "+14155550100",
		Status:        models.RequestStatusNew,
	})

	// An hour-long interval pins the view to the immediate first fetch.
	view := services.NewSyncPoller(requests, services.RoleDispatcher, time.Hour, logger.NewNop())
	if err := view.Start(context.Background(), ""); err != nil {
		t.Fatalf("start view: %v", err)
	}
	defer view.Stop()

	router := gin.New()
	v1 := router.Group("/api/v1")
	routes.SetupDashboardRoutes(v1, handlers.NewDashboardHandler(view))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/requests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	var data struct {
		Requests []*models.BreakdownRequest `json:"requests"`
		Stale    bool                       `json:"stale"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if len(data.Requests) != 1 || data.Requests[0].CustomerName != "Meera" {
		t.Fatalf("dashboard view = %+v, want the seeded request", data.Requests)
	}
	if data.Stale {
		t.Error("fresh view reported as stale")
	}
}

func TestDashboardMarksStaleViewOnOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	requests := memory.NewBreakdownRequestRepository()
	requests.Seed(&models.BreakdownRequest{
		CustomerName:  "Meera",
		ContactNumber: "+14155550100",
		Status:        models.RequestStatusNew,
	})

	view := services.NewSyncPoller(requests, services.RoleDispatcher, 20*time.Millisecond, logger.NewNop())
	if err := view.Start(context.Background(), ""); err != nil {
		t.Fatalf("start view: %v", err)
	}
	defer view.Stop()

	requests.SetFailing(true)
	deadline := time.Now().Add(2 * time.Second)
	for view.LastError() == nil {
		if time.Now().After(deadline) {
			t.Fatal("failed tick never recorded an error")
		}
		time.Sleep(5 * time.Millisecond)
	}

	router := gin.New()
	v1 := router.Group("/api/v1")
	routes.SetupDashboardRoutes(v1, handlers.NewDashboardHandler(view))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/requests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var data struct {
		Requests []*models.BreakdownRequest `json:"requests"`
		Stale    bool                       `json:"stale"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	// The outage marks the view stale but the last good snapshot stays up.
	if !data.Stale {
		t.Error("outage not reflected in the stale flag")
	}
	if len(data.Requests) != 1 {
		t.Errorf("stale view dropped its snapshot, got %d requests", len(data.Requests))
	}
}
