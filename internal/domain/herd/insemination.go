package herd

import (
	"time"

	"tambo-herd/pkg/errors"
)

// Recommendation is the outcome of the AM/PM rule for one heat detection.
type Recommendation struct {
	Action      string    `json:"action"`
	Window      string    `json:"window"`
	SuggestedAt time.Time `json:"suggested_at"`
}

// RecommendInsemination applies the AM/PM rule: a heat detected before noon
// means inseminating the same evening (18:00-20:00); detected at or after
// noon, the next morning (06:00-08:00). Ovulation follows heat onset by
// roughly 12-16 hours, so the rule depends on the detection time alone.
func RecommendInsemination(detectedAt time.Time) (Recommendation, error) {
	if detectedAt.IsZero() {
		return Recommendation{}, errors.NewInvalidTimestampError("heat detection time is missing or unparseable")
	}

	y, m, d := detectedAt.Date()
	loc := detectedAt.Location()

	if detectedAt.Hour() < 12 {
		return Recommendation{
			Action:      "Inseminate TODAY in the evening",
			Window:      "18:00 - 20:00",
			SuggestedAt: time.Date(y, m, d, 18, 0, 0, 0, loc),
		}, nil
	}
	return Recommendation{
		Action:      "Inseminate TOMORROW in the morning",
		Window:      "06:00 - 08:00",
		SuggestedAt: time.Date(y, m, d+1, 6, 0, 0, 0, loc),
	}, nil
}
