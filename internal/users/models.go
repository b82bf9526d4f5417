package users

import (
	"time"

	"github.com/google/uuid"
)

type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
)

// Profile represents a platform account. Attendees, organizers and door
// staff are all profiles; organizer capability is a flag, not a separate
// account type.
type Profile struct {
	ID            uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name          string     `json:"name" gorm:"not null"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	Phone         string     `json:"phone"`
	Password      string     `json:"-" gorm:"not null"` // hide in json
	IsOrganizer   bool       `json:"is_organizer" gorm:"default:false"`
	PlanType      PlanType   `json:"plan_type" gorm:"type:varchar(20);default:'free'"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	AvatarURL     string     `json:"avatar_url"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func IsValidPlan(plan string) bool {
	switch PlanType(plan) {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	default:
		return false
	}
}

// HasActivePaidPlan reports whether the profile holds a basic or premium
// plan that has not lapsed. A nil expiry means the plan does not expire.
func (p *Profile) HasActivePaidPlan(now time.Time) bool {
	if p.PlanType != PlanBasic && p.PlanType != PlanPremium {
		return false
	}
	if p.PlanExpiresAt != nil && p.PlanExpiresAt.Before(now) {
		return false
	}
	return true
}

func (Profile) TableName() string {
	return "profiles"
}
