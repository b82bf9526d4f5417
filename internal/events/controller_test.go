package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ingrezzi/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	createErr error
	updateErr error
	deleteErr error
}

func (s *stubService) SetCacheService(cacheService cache.Service) {}

func (s *stubService) CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &EventResponse{ID: uuid.New().String(), Title: req.Title}, nil
}

func (s *stubService) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	return nil, ErrEventNotFound
}

func (s *stubService) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	return &PaginatedEvents{}, nil
}

func (s *stubService) GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error) {
	return nil, nil
}

func (s *stubService) GetOrganizerEvents(ctx context.Context, organizerID uuid.UUID) ([]EventResponse, error) {
	return nil, nil
}

func (s *stubService) UpdateEvent(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &EventResponse{ID: id.String()}, nil
}

func (s *stubService) DeleteEvent(ctx context.Context, id uuid.UUID, actingUserID uuid.UUID) error {
	return s.deleteErr
}

func authenticatedRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ctrl := NewController(svc)

	authed := router.Group("", func(c *gin.Context) {
		c.Set("user_id", uuid.New().String())
		c.Next()
	})
	authed.POST("/events", ctrl.CreateEvent)
	authed.PUT("/events/:eventId", ctrl.UpdateEvent)
	authed.DELETE("/events/:eventId", ctrl.DeleteEvent)

	return router
}

func validCreateBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(CreateEventRequest{
		Title:      "Launch Night",
		Date:       "2027-03-14",
		Location:   "Warehouse 9",
		TicketType: "paid",
	})
	require.NoError(t, err)
	return body
}

func TestCreateEvent_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "validation errors are the caller's fault",
			serviceErr: fmt.Errorf("%w: malformed event date", ErrInvalidEventData),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "plan restrictions are forbidden",
			serviceErr: ErrPaidPlanRequired,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "store failures are server errors",
			serviceErr: errors.New("failed to create event: connection refused"),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "success",
			serviceErr: nil,
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authenticatedRouter(&stubService{createErr: tt.serviceErr})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(validCreateBody(t)))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCreateEvent_InfrastructureErrorIsNotEchoed(t *testing.T) {
	router := authenticatedRouter(&stubService{createErr: errors.New("dial tcp 10.0.0.5:5432: i/o timeout")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(validCreateBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestUpdateEvent_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", ErrEventNotFound, http.StatusNotFound},
		{"not the organizer", ErrNotEventOwner, http.StatusForbidden},
		{"invalid payload semantics", fmt.Errorf("%w: price must not be negative", ErrInvalidEventData), http.StatusBadRequest},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authenticatedRouter(&stubService{updateErr: tt.serviceErr})

			title := "Renamed"
			body, err := json.Marshal(UpdateEventRequest{Title: &title})
			require.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/events/"+uuid.New().String(), bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestDeleteEvent_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", ErrEventNotFound, http.StatusNotFound},
		{"not the organizer", ErrNotEventOwner, http.StatusForbidden},
		{"tickets already issued", ErrEventHasTickets, http.StatusConflict},
		{"only drafts are deletable", fmt.Errorf("%w: only draft events can be deleted", ErrEventNotEditable), http.StatusConflict},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authenticatedRouter(&stubService{deleteErr: tt.serviceErr})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/events/"+uuid.New().String(), nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
