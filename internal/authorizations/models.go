package authorizations

import (
	"time"

	"github.com/google/uuid"
)

type GrantStatus string

const (
	GrantStatusPending  GrantStatus = "pending"
	GrantStatusApproved GrantStatus = "approved"
	GrantStatusDenied   GrantStatus = "denied"
)

// IsValid checks if the grant status is valid
func (s GrantStatus) IsValid() bool {
	switch s {
	case GrantStatusPending, GrantStatusApproved, GrantStatusDenied:
		return true
	}
	return false
}

// Authorizes reports whether this status grants check-in access. Pending and
// denied grants both deny; authorization is a binary decision.
func (s GrantStatus) Authorizes() bool {
	return s == GrantStatusApproved
}

// Grant is a per-event check-in delegation. One row per (event, user); a
// repeated grant request is a conflict, never a merge. The event organizer
// is authorized implicitly and never holds a row here.
type Grant struct {
	ID               uuid.UUID   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID          uuid.UUID   `json:"event_id" gorm:"type:uuid;not null;index"`
	AuthorizedUserID uuid.UUID   `json:"authorized_user_id" gorm:"type:uuid;not null"`
	AuthorizedBy     uuid.UUID   `json:"authorized_by" gorm:"type:uuid;not null"`
	Status           GrantStatus `json:"status" gorm:"type:varchar(20);default:'approved'"`
	CreatedAt        time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// GrantWithProfile carries the grant row joined with the authorized user's
// profile for organizer-facing listings.
type GrantWithProfile struct {
	Grant
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type GrantResponse struct {
	ID               string      `json:"id"`
	EventID          string      `json:"event_id"`
	AuthorizedUserID string      `json:"authorized_user_id"`
	AuthorizedBy     string      `json:"authorized_by"`
	Status           GrantStatus `json:"status"`
	UserName         string      `json:"user_name,omitempty"`
	UserEmail        string      `json:"user_email,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

type CreateGrantRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (g *Grant) ToResponse() GrantResponse {
	return GrantResponse{
		ID:               g.ID.String(),
		EventID:          g.EventID.String(),
		AuthorizedUserID: g.AuthorizedUserID.String(),
		AuthorizedBy:     g.AuthorizedBy.String(),
		Status:           g.Status,
		CreatedAt:        g.CreatedAt,
	}
}

func (g *GrantWithProfile) ToResponse() GrantResponse {
	resp := g.Grant.ToResponse()
	resp.UserName = g.UserName
	resp.UserEmail = g.UserEmail
	return resp
}

// TableName specifies the table name for GORM
func (Grant) TableName() string {
	return "event_authorizations"
}
