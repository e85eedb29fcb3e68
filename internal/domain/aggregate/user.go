package aggregate

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleWorker  UserRole = "worker"
)

// restrictedEvents lists the event types only admins and managers may record.
// Workers keep read access plus heats, calvings and milk tests.
var restrictedEvents = map[string]bool{
	"InseminationPerformed":  true,
	"PregnancyCheckRecorded": true,
	"HealthTreatmentApplied": true,
}

// CanRecord reports whether a caller with this role may append an event of the
// given type.
func (r UserRole) CanRecord(eventType string) bool {
	if !restrictedEvents[eventType] {
		return r == RoleAdmin || r == RoleManager || r == RoleWorker
	}
	return r == RoleAdmin || r == RoleManager
}

// CanManageHerd reports whether the role may register or delete animals and
// run bulk imports.
func (r UserRole) CanManageHerd() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is an identity record for the team working an establishment. Identity
// is a boundary concern here, so it stays a plain persisted record rather
// than an event-sourced aggregate.
type User struct {
	ID              string    `bson:"_id" json:"id"`
	Email           string    `bson:"email" json:"email"`
	Name            string    `bson:"name" json:"name"`
	PasswordHash    string    `bson:"password_hash" json:"-"`
	Role            UserRole  `bson:"role" json:"role"`
	EstablishmentID string    `bson:"establishment_id" json:"establishment_id"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
