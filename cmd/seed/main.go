package main

import (
	"fmt"
	"log"
	"time"

	"ingrezzi/internal/authorizations"
	"ingrezzi/internal/checkin"
	"ingrezzi/internal/events"
	"ingrezzi/internal/shared/config"
	"ingrezzi/internal/shared/database"
	"ingrezzi/internal/tickets"
	"ingrezzi/internal/users"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB

	organizer *users.Profile
	staff     *users.Profile
	attendees []*users.Profile
	events    []*events.Event
}

func main() {
	fmt.Println("🌱 Starting Ingrezzi Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"checkins",
		"event_authorizations",
		"tickets",
		"events",
		"profiles",
	}

	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean table %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	if err := s.seedProfiles(); err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}
	if err := s.seedEvents(); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	if err := s.seedGrants(); err != nil {
		return fmt.Errorf("failed to seed grants: %w", err)
	}
	if err := s.seedTickets(); err != nil {
		return fmt.Errorf("failed to seed tickets: %w", err)
	}
	return nil
}

func (s *Seeder) seedProfiles() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	expires := time.Now().AddDate(1, 0, 0)
	s.organizer = &users.Profile{
		Name:          "Olivia Organizer",
		Email:         "organizer@ingrezzi.dev",
		Phone:         "+5511999990001",
		Password:      string(hash),
		IsOrganizer:   true,
		PlanType:      users.PlanPremium,
		PlanExpiresAt: &expires,
	}

	s.staff = &users.Profile{
		Name:     "Sam Staff",
		Email:    "staff@ingrezzi.dev",
		Phone:    "+5511999990002",
		Password: string(hash),
	}

	attendeeNames := []string{"Ana Lima", "Bruno Costa", "Carla Souza", "Diego Alves"}
	for i, name := range attendeeNames {
		s.attendees = append(s.attendees, &users.Profile{
			Name:     name,
			Email:    fmt.Sprintf("attendee%d@ingrezzi.dev", i+1),
			Password: string(hash),
		})
	}

	profiles := append([]*users.Profile{s.organizer, s.staff}, s.attendees...)
	for _, p := range profiles {
		if err := s.db.GetPostgreSQL().Create(p).Error; err != nil {
			return err
		}
	}

	fmt.Printf("   👤 Seeded %d profiles\n", len(profiles))
	return nil
}

func (s *Seeder) seedEvents() error {
	capacity := 200
	seedEvents := []*events.Event{
		{
			OrganizerID: s.organizer.ID,
			Title:       "Festival X",
			Description: "An evening of live music and food trucks.",
			Date:        time.Now().AddDate(0, 1, 0),
			Time:        "19:00",
			Location:    "Parque Central, São Paulo",
			Category:    "music",
			Capacity:    &capacity,
			Price:       decimal.NewFromFloat(120.00),
			TicketType:  events.TicketTypePaid,
			Status:      events.StatusPublished,
		},
		{
			OrganizerID: s.organizer.ID,
			Title:       "Community Tech Meetup",
			Description: "Monthly meetup, free admission.",
			Date:        time.Now().AddDate(0, 0, 14),
			Time:        "18:30",
			Location:    "Hub Coworking",
			Category:    "technology",
			Price:       decimal.Zero,
			TicketType:  events.TicketTypeFree,
			Status:      events.StatusPublished,
		},
		{
			OrganizerID: s.organizer.ID,
			Title:       "Unreleased Workshop",
			Description: "Still being planned.",
			Date:        time.Now().AddDate(0, 2, 0),
			Time:        "09:00",
			Location:    "TBD",
			Category:    "education",
			Price:       decimal.NewFromFloat(80.00),
			TicketType:  events.TicketTypePaid,
			Status:      events.StatusDraft,
		},
	}

	for _, e := range seedEvents {
		if err := s.db.GetPostgreSQL().Create(e).Error; err != nil {
			return err
		}
		s.events = append(s.events, e)
	}

	fmt.Printf("   🎪 Seeded %d events\n", len(seedEvents))
	return nil
}

func (s *Seeder) seedGrants() error {
	grant := &authorizations.Grant{
		EventID:          s.events[0].ID,
		AuthorizedUserID: s.staff.ID,
		AuthorizedBy:     s.organizer.ID,
		Status:           authorizations.GrantStatusApproved,
	}
	if err := s.db.GetPostgreSQL().Create(grant).Error; err != nil {
		return err
	}

	fmt.Println("   🔑 Seeded 1 check-in grant (staff → Festival X)")
	return nil
}

func (s *Seeder) seedTickets() error {
	count := 0
	for i, attendee := range s.attendees {
		for _, event := range s.events[:2] {
			code, err := tickets.GenerateCode()
			if err != nil {
				return err
			}

			paymentStatus := tickets.PaymentStatusPending
			if event.TicketType == events.TicketTypeFree {
				paymentStatus = tickets.PaymentStatusCompleted
			}

			ticket := &tickets.Ticket{
				EventID:       event.ID,
				Code:          code,
				AttendeeName:  attendee.Name,
				AttendeeEmail: attendee.Email,
				Price:         event.Price,
				PaymentStatus: paymentStatus,
			}

			// First attendee arrives early: already checked in at Festival X
			if i == 0 && event.TicketType == events.TicketTypePaid {
				now := time.Now().Add(-30 * time.Minute)
				ticket.CheckedIn = true
				ticket.CheckedInAt = &now
			}

			if err := s.db.GetPostgreSQL().Create(ticket).Error; err != nil {
				return err
			}

			if ticket.CheckedIn {
				record := &checkin.Record{
					TicketID:    ticket.ID,
					EventID:     event.ID,
					CheckedInBy: s.staff.ID,
					CheckedInAt: *ticket.CheckedInAt,
				}
				if err := s.db.GetPostgreSQL().Create(record).Error; err != nil {
					return err
				}
			}

			count++
		}
	}

	fmt.Printf("   🎟️  Seeded %d tickets\n", count)
	return nil
}
