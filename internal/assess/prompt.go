package assess

import (
	"fmt"
	"strings"
)

// maxFeedbackWords is the response length ceiling stated to the model so
// downstream feedback stays terse.
const maxFeedbackWords = 40

// maxRecentFeedback caps how many prior feedback strings are replayed into
// the prompt.
const maxRecentFeedback = 2

// systemInstruction frames every vision call. Behavioral instructions go in
// the per-call prompt because the downstream model resolves conflicting
// instructions last-wins.
const systemInstruction = "You are a real-estate photography coach reviewing interior photos for composition and framing."

// PromptInput carries the session state the prompt is assembled from.
type PromptInput struct {
	RoomType       string
	Attempt        int
	AngleReset     bool
	RecentFeedback []string // most recent first, already capped by caller or here
	Constraints    []string
}

// BuildPrompt assembles the per-call instruction text. Section order
// matters: constraint and leniency instructions come after the context
// framing so they take precedence in the model's last-wins reading.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assess this photo of a %s. This is attempt %d", in.RoomType, in.Attempt)
	if in.AngleReset {
		b.WriteString(" (NEW ANGLE)")
	}
	b.WriteString(".\n")

	b.WriteString("Never comment on lighting, exposure, brightness, or shadow. Judge composition and framing only.\n")
	fmt.Fprintf(&b, "Reply in at most %d words.\n", maxFeedbackWords)

	if !in.AngleReset && len(in.RecentFeedback) > 0 {
		recent := in.RecentFeedback
		if len(recent) > maxRecentFeedback {
			recent = recent[:maxRecentFeedback]
		}
		b.WriteString("You already gave this feedback on earlier attempts; do not repeat it:\n")
		for _, f := range recent {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if len(in.Constraints) > 0 {
		b.WriteString("Known physical constraints of this space:\n")
		for _, c := range in.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("Never suggest an adjustment that contradicts a known constraint.\n")
	}

	if in.Attempt >= 3 {
		b.WriteString("The photographer has made several attempts. Be lenient and favor accepting the shot.\n")
	}

	return b.String()
}
