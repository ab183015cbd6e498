package assess

import (
	"math"

	"github.com/ashureev/shotcoach/internal/domain"
)

// resetThreshold is the orientation dissimilarity (degrees) above which the
// camera is considered to have moved to a new angle. Strictly greater-than:
// a dissimilarity of exactly 30 does not reset.
const resetThreshold = 30.0

// Dissimilarity returns the Euclidean norm of the per-axis differences
// between two orientations, or 0 when either is unknown.
//
// Differences are raw, not circular: a pitch of 179 vs -179 counts as 358
// even though the physical rotation is 2 degrees. Sessions near the wrap
// boundary can reset spuriously. Kept as-is; fixing it changes reset
// behavior that callers currently rely on.
func Dissimilarity(previous, current *domain.Orientation) float64 {
	if previous == nil || current == nil {
		return 0
	}
	dp := previous.Pitch - current.Pitch
	dy := previous.Yaw - current.Yaw
	dr := previous.Roll - current.Roll
	return math.Sqrt(dp*dp + dy*dy + dr*dr)
}

// ShouldReset reports whether the orientation change is large enough to
// start a fresh attempt sequence.
func ShouldReset(previous, current *domain.Orientation) bool {
	return Dissimilarity(previous, current) > resetThreshold
}
