// Package domain holds the highscore entity: one row per player carrying the
// best-ever value of each independently tracked metric.
package domain

import "time"

// Highscore is a player's running bests. Each best is nil until the metric
// was observed at least once, and non-decreasing afterwards under normal
// operation (the delete policy may recompute it downwards when configured).
type Highscore struct {
	PlayerID            string
	BestRotation        *float64
	BestHeight          *float64
	BestMaxAcceleration *float64
	UpdatedAt           time.Time
}
