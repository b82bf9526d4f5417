package events

import (
	"testing"
	"time"

	"ingrezzi/internal/users"

	"github.com/stretchr/testify/assert"
)

func TestCanCreateEvent(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 6, 0)
	past := now.AddDate(0, -1, 0)

	cases := []struct {
		name       string
		profile    users.Profile
		ticketType TicketType
		allowed    bool
	}{
		{
			name:       "non-organizer cannot create anything",
			profile:    users.Profile{IsOrganizer: false, PlanType: users.PlanPremium, PlanExpiresAt: &future},
			ticketType: TicketTypeFree,
			allowed:    false,
		},
		{
			name:       "free plan allows free events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanFree},
			ticketType: TicketTypeFree,
			allowed:    true,
		},
		{
			name:       "free plan blocks paid events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanFree},
			ticketType: TicketTypePaid,
			allowed:    false,
		},
		{
			name:       "active basic plan allows paid events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanBasic, PlanExpiresAt: &future},
			ticketType: TicketTypePaid,
			allowed:    true,
		},
		{
			name:       "active premium plan allows paid events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanPremium, PlanExpiresAt: &future},
			ticketType: TicketTypePaid,
			allowed:    true,
		},
		{
			name:       "premium with no expiry allows paid events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanPremium},
			ticketType: TicketTypePaid,
			allowed:    true,
		},
		{
			name:       "expired plan blocks paid events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanPremium, PlanExpiresAt: &past},
			ticketType: TicketTypePaid,
			allowed:    false,
		},
		{
			name:       "expired plan still allows free events",
			profile:    users.Profile{IsOrganizer: true, PlanType: users.PlanBasic, PlanExpiresAt: &past},
			ticketType: TicketTypeFree,
			allowed:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanCreateEvent(&tc.profile, tc.ticketType, now))
		})
	}
}
