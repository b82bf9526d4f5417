package authorizations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ingrezzi/internal/shared/utils/response"
)

type Controller interface {
	CreateGrant(c *gin.Context)
	RevokeGrant(c *gin.Context)
	ListGrants(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func actingUserUUID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, false
	}

	return userUUID, true
}

func (ctrl *controller) CreateGrant(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var req CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	granterID, ok := actingUserUUID(c)
	if !ok {
		return
	}

	grant, err := ctrl.service.Grant(c.Request.Context(), granterID, eventID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrUserNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotOrganizer):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		case errors.Is(err, ErrGrantExists), errors.Is(err, ErrSelfGrant):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create grant", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Check-in access granted", grant, nil)
}

func (ctrl *controller) RevokeGrant(c *gin.Context) {
	grantID, err := uuid.Parse(c.Param("grantId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid grant ID", nil, err.Error())
		return
	}

	callerID, ok := actingUserUUID(c)
	if !ok {
		return
	}

	if err := ctrl.service.Revoke(c.Request.Context(), callerID, grantID); err != nil {
		switch {
		case errors.Is(err, ErrGrantNotFound), errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotOrganizer):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to revoke grant", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Check-in access revoked", nil, nil)
}

func (ctrl *controller) ListGrants(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	callerID, ok := actingUserUUID(c)
	if !ok {
		return
	}

	grants, err := ctrl.service.ListForEvent(c.Request.Context(), callerID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotOrganizer):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list grants", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Grants retrieved successfully", grants, nil)
}
