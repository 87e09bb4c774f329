// Package domain holds the disc entity: a physical sensor-equipped
// measurement device identified by a stable, caller-supplied id.
package domain

import (
	"errors"
	"time"
)

// Disc is a registered measurement device. Discs are never hard-deleted;
// deactivation is terminal for listing purposes but the row persists for
// referential integrity and history.
type Disc struct {
	ID              string
	Name            string
	Model           string
	SerialNumber    string
	FirmwareVersion string
	CalibrationDate string // free-form date as reported by the device
	Active          bool
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// Validate checks the disc for persistence.
func (d *Disc) Validate() error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	return nil
}
