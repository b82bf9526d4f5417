package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds constraints AutoMigrate cannot express. These
// back the two single-winner guarantees: one grant per (event, user) and
// one check-in record per ticket.
func MigrateConstraints(db *gorm.DB) error {
	// Duplicate grants must be rejected at the store, not merged
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_grant_per_event_user
		ON event_authorizations (event_id, authorized_user_id);
	`).Error
	if err != nil {
		return err
	}

	// A ticket may carry at most one audit record even if the
	// application-level guard is ever bypassed
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_checkin_per_ticket
		ON checkins (ticket_id);
	`).Error
	if err != nil {
		return err
	}

	// Door scans look tickets up by code on the hot path
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_checkins_event_id
		ON checkins (event_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
