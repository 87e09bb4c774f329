// Package highscore implements per-player best-value tracking. Each metric is
// tracked independently; a throw updates a best only when its value is
// strictly greater than the stored one.
package highscore

import (
	"time"

	"smartdisc/backend/internal/highscore/domain"
	throwdomain "smartdisc/backend/internal/throw/domain"
)

// Metric names as reported to callers when a throw sets a record.
const (
	MetricRotation        = "rotation"
	MetricHeight          = "height"
	MetricMaxAcceleration = "max_acceleration"
)

// Evaluate applies a throw's metrics to the player's current bests and
// returns the resulting row plus whether anything improved. current may be
// nil when the player has no highscore row yet; the returned row then carries
// exactly the metrics the throw observed. Ties never count as improvements.
func Evaluate(current *domain.Highscore, playerID string, m throwdomain.Metrics, now time.Time) (*domain.Highscore, bool) {
	next := &domain.Highscore{PlayerID: playerID, UpdatedAt: now}
	if current != nil {
		next.BestRotation = current.BestRotation
		next.BestHeight = current.BestHeight
		next.BestMaxAcceleration = current.BestMaxAcceleration
	}
	changed := false
	changed = improve(&next.BestRotation, m.Rotation) || changed
	changed = improve(&next.BestHeight, m.Height) || changed
	changed = improve(&next.BestMaxAcceleration, m.MaxAcceleration) || changed
	return next, changed
}

// FromMetrics builds a highscore row directly from per-metric maxima, for
// recomputation after deletes. The second return is false when no metric was
// ever observed, meaning the row should be removed rather than stored.
func FromMetrics(playerID string, m throwdomain.Metrics, now time.Time) (*domain.Highscore, bool) {
	if !m.Any() {
		return nil, false
	}
	return &domain.Highscore{
		PlayerID:            playerID,
		BestRotation:        copyFloat(m.Rotation),
		BestHeight:          copyFloat(m.Height),
		BestMaxAcceleration: copyFloat(m.MaxAcceleration),
		UpdatedAt:           now,
	}, true
}

// RecordMetric names the highest-precedence metric the throw improved, with
// precedence rotation over height over max_acceleration, or "" when nothing
// improved. current may be nil.
func RecordMetric(current *domain.Highscore, m throwdomain.Metrics) string {
	var rot, h, acc *float64
	if current != nil {
		rot, h, acc = current.BestRotation, current.BestHeight, current.BestMaxAcceleration
	}
	switch {
	case beats(m.Rotation, rot):
		return MetricRotation
	case beats(m.Height, h):
		return MetricHeight
	case beats(m.MaxAcceleration, acc):
		return MetricMaxAcceleration
	}
	return ""
}

func beats(v, best *float64) bool {
	if v == nil {
		return false
	}
	return best == nil || *v > *best
}

func improve(best **float64, v *float64) bool {
	if v == nil {
		return false
	}
	if *best != nil && *v <= **best {
		return false
	}
	c := *v
	*best = &c
	return true
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
