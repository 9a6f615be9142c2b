package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"daily", "daily"},
		{"Every day!", "daily"},
		{"  SEVERAL times a WEEK ", "several times a week"},
		{"twice a week", "weekly"},
		{"once a month", "monthly"},
		{"rarely", "rarely"},
		{"rare occasions", "rarely"},
		{"", ""},
		{"whenever", "whenever"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFrequency(tt.raw), "raw %q", tt.raw)
	}
}

func TestFrequencyCode(t *testing.T) {
	assert.Equal(t, 5.0, FrequencyCode("Daily"))
	assert.Equal(t, 4.0, FrequencyCode("several times per week"))
	assert.Equal(t, 1.0, FrequencyCode("rarely"))
	assert.Zero(t, FrequencyCode("no idea"), "unrecognized input is neutral")
}

func TestAwarenessCode(t *testing.T) {
	assert.Equal(t, 1.0, AwarenessCode(" YES "))
	assert.Equal(t, 0.5, AwarenessCode("Sometimes"))
	assert.Zero(t, AwarenessCode("no"))
	assert.Zero(t, AwarenessCode("unsure"))
}

func TestBoolish(t *testing.T) {
	for _, v := range []any{true, "yes", "Y", "TRUE", " 1 ", 1.0} {
		assert.True(t, Boolish(v), "%v", v)
	}
	for _, v := range []any{false, "no", "n", "false", "0", 0.0, nil, "maybe"} {
		assert.False(t, Boolish(v), "%v", v)
	}
}

func TestYearsSinceOnset(t *testing.T) {
	assert.Equal(t, 12.0, YearsSinceOnset(30, 18))
	assert.Zero(t, YearsSinceOnset(18, 30), "negative difference clamps to zero")
}

func TestRecordFromMap(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		FeatPullingSeverity: "7",
		FeatAvgUrge7d:       6.5,
		FeatAge:             30,
		"unknown_column":    99,
	})

	assert.Equal(t, 7.0, rec.PullingSeverity)
	assert.Equal(t, 6.5, rec.AvgUrge7d)
	assert.Equal(t, 30.0, rec.Age)
	assert.Zero(t, rec.AvgUrge30d, "absent fields default to zero")
}
