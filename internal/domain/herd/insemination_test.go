package herd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tambo-herd/pkg/errors"
)

func TestRecommendInseminationMorningHeat(t *testing.T) {
	detected := time.Date(2026, 8, 30, 7, 30, 0, 0, time.UTC)

	rec, err := RecommendInsemination(detected)
	require.NoError(t, err)

	assert.Equal(t, "Inseminate TODAY in the evening", rec.Action)
	assert.Equal(t, "18:00 - 20:00", rec.Window)
	assert.Equal(t, time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC), rec.SuggestedAt)
}

func TestRecommendInseminationAfternoonHeat(t *testing.T) {
	detected := time.Date(2026, 8, 30, 16, 45, 0, 0, time.UTC)

	rec, err := RecommendInsemination(detected)
	require.NoError(t, err)

	assert.Equal(t, "Inseminate TOMORROW in the morning", rec.Action)
	assert.Equal(t, "06:00 - 08:00", rec.Window)
	assert.Equal(t, time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC), rec.SuggestedAt)
}

func TestRecommendInseminationNoonIsAfternoon(t *testing.T) {
	rec, err := RecommendInsemination(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "06:00 - 08:00", rec.Window)
}

func TestRecommendInseminationMonthRollover(t *testing.T) {
	rec, err := RecommendInsemination(time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC), rec.SuggestedAt)
}

func TestRecommendInseminationRejectsZeroTime(t *testing.T) {
	_, err := RecommendInsemination(time.Time{})
	require.Error(t, err)

	appErr, ok := err.(*errors.ApplicationError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TIMESTAMP", appErr.Code)
}

func TestParseTimestampFormats(t *testing.T) {
	cases := map[string]time.Time{
		"2026-08-30T07:30:00Z": time.Date(2026, 8, 30, 7, 30, 0, 0, time.UTC),
		"2026-08-30 07:30":     time.Date(2026, 8, 30, 7, 30, 0, 0, time.UTC),
		"2026-08-30":           date(2026, 8, 30),
		"30/08/2026":           date(2026, 8, 30),
	}
	for input, want := range cases {
		got, err := ParseTimestamp(input)
		require.NoError(t, err, input)
		assert.True(t, got.Equal(want), input)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "soon", "30-08-2026"} {
		_, err := ParseTimestamp(input)
		assert.Error(t, err, input)
	}
}

func TestFormatDateSentinel(t *testing.T) {
	assert.Equal(t, DateUnavailable, FormatDate(time.Time{}))
	assert.Equal(t, "05/11", FormatDate(date(2026, 11, 5)))
	assert.Equal(t, DateUnavailable, FormatFullDate(time.Time{}))
	assert.Equal(t, "2026-11-05", FormatFullDate(date(2026, 11, 5)))
}
