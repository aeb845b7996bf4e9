package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/service"
)

type stubScheduleService struct {
	lastOrg    string
	lastWindow int
}

func (s *stubScheduleService) Board(context.Context) (*service.Board, error) {
	return &service.Board{}, nil
}

func (s *stubScheduleService) Timeline(_ context.Context, organisationID string, _ time.Time, windowDays int) ([]*service.TimelineEntry, error) {
	s.lastOrg = organisationID
	s.lastWindow = windowDays
	return nil, nil
}

func newTimelineRouter(stub *stubScheduleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(
		FleetConfig{OrganisationID: "boundless", TimelineWindowDays: 45},
		nil, nil, nil, nil, nil, stub, nil, zap.NewNop(),
	)
	r := gin.New()
	r.GET("/api/v1/schedule/timeline", h.GetTimeline)
	return r
}

func TestTimelineDefaultsComeFromFleetConfig(t *testing.T) {
	stub := &stubScheduleService{}
	r := newTimelineRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/timeline", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "boundless", stub.lastOrg)
	assert.Equal(t, 45, stub.lastWindow)
}

func TestTimelineQueryOverridesFleetConfig(t *testing.T) {
	stub := &stubScheduleService{}
	r := newTimelineRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/timeline?organisation_id=other&window_days=7", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "other", stub.lastOrg)
	assert.Equal(t, 7, stub.lastWindow)
}

func TestTimelineRejectsMalformedWindow(t *testing.T) {
	stub := &stubScheduleService{}
	r := newTimelineRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/timeline?window_days=soon", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
