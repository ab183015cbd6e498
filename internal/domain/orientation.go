// Package domain contains core domain types for the Shot Coach application.
package domain

// Orientation describes the camera attitude at capture time, in degrees.
// A nil *Orientation means the device did not report one.
type Orientation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Clone returns a copy of the orientation, or nil for nil.
func (o *Orientation) Clone() *Orientation {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}
