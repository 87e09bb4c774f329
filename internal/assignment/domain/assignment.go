// Package domain holds the disc assignment entity: a trainer handing a disc
// to a player. (DiscID, PlayerID) is unique.
package domain

import "time"

// Assignment links a disc to a player. AssignedBy records the trainer who
// made the assignment.
type Assignment struct {
	ID         int64
	DiscID     string
	PlayerID   string
	AssignedBy string
	AssignedAt time.Time

	// Joined display fields, populated by list queries only.
	DiscName       string
	AssignedByName string
}
