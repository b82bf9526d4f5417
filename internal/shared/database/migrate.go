package database

import (
	"ingrezzi/internal/authorizations"
	"ingrezzi/internal/checkin"
	"ingrezzi/internal/events"
	"ingrezzi/internal/tickets"
	"ingrezzi/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.Profile{},
		&events.Event{},
		&tickets.Ticket{},
		&authorizations.Grant{},
		&checkin.Record{},
	)
}
