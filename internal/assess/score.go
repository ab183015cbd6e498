package assess

import (
	"fmt"
	"strings"
)

// AcceptancePolicy selects how acceptability is decided. The two policies
// are deliberately separate deployment modes, never combined.
type AcceptancePolicy string

const (
	// PolicyAttempts accepts purely on progress: attempt 3 or later passes.
	PolicyAttempts AcceptancePolicy = "attempts"
	// PolicyKeywords accepts when the model's own feedback sounds positive,
	// with a hard floor at attempt 5 so a shoot is never blocked forever.
	PolicyKeywords AcceptancePolicy = "keywords"
)

// ParseAcceptancePolicy validates a policy name from configuration.
func ParseAcceptancePolicy(name string) (AcceptancePolicy, error) {
	switch AcceptancePolicy(name) {
	case PolicyAttempts, PolicyKeywords:
		return AcceptancePolicy(name), nil
	case "":
		return PolicyAttempts, nil
	default:
		return "", fmt.Errorf("unknown acceptance policy %q", name)
	}
}

// positiveWords is the vocabulary PolicyKeywords scans feedback for.
var positiveWords = []string{"good", "great", "perfect", "snap", "capture"}

// Score returns the progressive acceptance score for an attempt number.
// The staircase is non-decreasing so repeated attempts always look at least
// as good as earlier ones.
func Score(attempt int) int {
	switch {
	case attempt <= 1:
		return 75
	case attempt == 2:
		return 82
	case attempt == 3:
		return 88
	default:
		return 90
	}
}

// Acceptable decides whether the shot passes under the given policy.
func Acceptable(policy AcceptancePolicy, attempt int, feedback string) bool {
	switch policy {
	case PolicyKeywords:
		if attempt >= 5 {
			return true
		}
		lower := strings.ToLower(feedback)
		for _, w := range positiveWords {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	default:
		return attempt >= 3
	}
}
