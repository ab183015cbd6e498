package assess

import (
	"math"
	"testing"

	"github.com/ashureev/shotcoach/internal/domain"
)

func TestDissimilarity(t *testing.T) {
	tests := []struct {
		name     string
		previous *domain.Orientation
		current  *domain.Orientation
		want     float64
	}{
		{
			name: "identical orientations",
			previous: &domain.Orientation{Pitch: 10, Yaw: 20, Roll: 30},
			current:  &domain.Orientation{Pitch: 10, Yaw: 20, Roll: 30},
			want:     0,
		},
		{
			name:     "both nil",
			previous: nil,
			current:  nil,
			want:     0,
		},
		{
			name:     "previous nil",
			previous: nil,
			current:  &domain.Orientation{Pitch: 90, Yaw: 90, Roll: 90},
			want:     0,
		},
		{
			name:     "current nil",
			previous: &domain.Orientation{Pitch: 90, Yaw: 90, Roll: 90},
			current:  nil,
			want:     0,
		},
		{
			name:     "single axis difference",
			previous: &domain.Orientation{Pitch: 0, Yaw: 0, Roll: 0},
			current:  &domain.Orientation{Pitch: 45, Yaw: 0, Roll: 0},
			want:     45,
		},
		{
			name:     "3-4-0 triangle",
			previous: &domain.Orientation{Pitch: 3, Yaw: 4, Roll: 0},
			current:  &domain.Orientation{Pitch: 0, Yaw: 0, Roll: 0},
			want:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dissimilarity(tt.previous, tt.current)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Dissimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDissimilarityIsSymmetric(t *testing.T) {
	a := &domain.Orientation{Pitch: 12, Yaw: -40, Roll: 7}
	b := &domain.Orientation{Pitch: -3, Yaw: 15, Roll: 99}

	if Dissimilarity(a, b) != Dissimilarity(b, a) {
		t.Errorf("Dissimilarity is not symmetric: %v vs %v", Dissimilarity(a, b), Dissimilarity(b, a))
	}
}

// Raw per-axis differences have no wraparound correction: 179 vs -179 pitch
// is treated as a 358-degree change. This pins the behavior so it cannot
// change silently.
func TestDissimilarityNoWraparound(t *testing.T) {
	a := &domain.Orientation{Pitch: 179}
	b := &domain.Orientation{Pitch: -179}

	if got := Dissimilarity(a, b); got != 358 {
		t.Errorf("expected raw difference 358 across the wrap boundary, got %v", got)
	}
}

func TestShouldResetBoundary(t *testing.T) {
	origin := &domain.Orientation{}

	tests := []struct {
		name    string
		current *domain.Orientation
		want    bool
	}{
		{"exactly 30 does not reset", &domain.Orientation{Pitch: 30}, false},
		{"just above 30 resets", &domain.Orientation{Pitch: 30.01}, true},
		{"45 resets", &domain.Orientation{Yaw: 45}, true},
		{"unknown current never resets", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldReset(origin, tt.current); got != tt.want {
				t.Errorf("ShouldReset() = %v, want %v", got, tt.want)
			}
		})
	}
}
