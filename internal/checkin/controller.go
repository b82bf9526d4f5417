package checkin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ingrezzi/internal/shared/utils/response"
)

type Controller interface {
	Redeem(c *gin.Context)
	RecentCheckins(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// Redeem handles a decoded QR scan or a manually typed code. Both paths are
// identical from here on.
func (ctrl *controller) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	actingUserID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return
	}

	// Debounce the scanner double-firing on the same frame.
	if !ctrl.service.ScanAllowed(c.Request.Context(), req.Code) {
		response.RespondJSON(c, "error", http.StatusTooManyRequests, "Duplicate scan ignored", nil, nil)
		return
	}

	result, err := ctrl.service.Redeem(c.Request.Context(), req.Code, actingUserID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to process redemption", nil, nil)
		return
	}

	switch result.Outcome {
	case OutcomeRedeemed:
		response.RespondJSON(c, "success", http.StatusOK, "Ticket redeemed successfully", result, nil)
	case OutcomeAlreadyRedeemed:
		response.RespondJSON(c, "success", http.StatusOK, "Ticket was already redeemed", result, nil)
	case OutcomeTicketNotFound:
		response.RespondJSON(c, "error", http.StatusNotFound, "No ticket matches that code", result, nil)
	case OutcomeUnauthorized:
		response.RespondJSON(c, "error", http.StatusForbidden, "Not authorized to check in attendees for this event", result, nil)
	case OutcomeInvalidCode:
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket code", result, nil)
	default:
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Unknown redemption outcome", nil, nil)
	}
}

func (ctrl *controller) RecentCheckins(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	actingUserID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	records, err := ctrl.service.RecentCheckins(c.Request.Context(), actingUserID, eventID, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotAuthorized):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to load check-ins", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Check-ins retrieved successfully", records, nil)
}
