// Package domain holds the measurement entity: one timestamped sensor sample
// belonging to exactly one throw, ordered by sequence number.
package domain

import "time"

// Vector3 is a 3-axis sensor reading. Axes are independently optional
// because devices report partial frames.
type Vector3 struct {
	X *float64
	Y *float64
	Z *float64
}

// GPS is an optional position fix.
type GPS struct {
	Lat *float64
	Lon *float64
	Alt *float64
}

// Measurement is one sensor sample of a throw. (ThrowID, SequenceNr) is
// unique: no two samples of the same throw share a sequence number.
type Measurement struct {
	ID      string
	ThrowID string
	TakenAt time.Time
	// SequenceNr is the zero-based position of the sample within its throw.
	SequenceNr    int
	Accelerometer Vector3
	Gyroscope     Vector3
	Magnetometer  Vector3
	Temperature   *float64
	Pressure      *float64
	GPS           GPS
	CreatedAt     time.Time
}
