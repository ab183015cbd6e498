// Package vision provides the client boundary to the external
// vision-capable language model. The relay performs no image analysis of
// its own; every visual judgment is delegated through this interface.
package vision

import (
	"context"
)

// Request is one assessment call: an instruction pair plus the image.
type Request struct {
	System    string
	Prompt    string
	ImageData []byte
	MediaType string
}

// Client generates feedback text for a photo. Implementations must honor
// context cancellation; the orchestrator bounds every call with a deadline.
type Client interface {
	Assess(ctx context.Context, req Request) (string, error)
}
