package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/sitescan/internal/model"
)

func TestAggregatePII(t *testing.T) {
	t.Parallel()

	t.Run("risk levels are folded to lower case", func(t *testing.T) {
		t.Parallel()

		items := decode(t, `[
			{"type": "Contact", "risk_level": "HIGH"},
			{"type": "Contact", "risk_level": " Medium "},
			{"type": "Location", "risk_level": "low"},
			{"type": "Device", "risk_level": "Severe"}
		]`)

		got := AggregatePII(items)

		assert.Equal(t, model.Histogram{"high": 1, "medium": 1, "low": 1, "severe": 1}, got.RiskLevelCounts)
		assert.Equal(t, model.Histogram{"Contact": 2, "Location": 1, "Device": 1}, got.TypeCounts)
	})

	t.Run("missing fields get display defaults", func(t *testing.T) {
		t.Parallel()

		got := AggregatePII(decode(t, `[{}, {"risk_level": "", "type": "  ", "evidence": 3}]`))

		require.Len(t, got.Items, 2)
		for _, item := range got.Items {
			assert.Equal(t, model.PIIRiskItem{
				Field:     "Unknown",
				Type:      "Unknown",
				RiskLevel: "unknown",
				Evidence:  "None",
			}, item)
		}
		assert.Equal(t, model.Histogram{"unknown": 2}, got.RiskLevelCounts)
		assert.Equal(t, model.Histogram{"Unknown": 2}, got.TypeCounts)
	})

	t.Run("malformed items are skipped", func(t *testing.T) {
		t.Parallel()

		got := AggregatePII(decode(t, `[null, "email", 4, [], {"type": "Contact", "risk_level": "high"}]`))

		assert.Len(t, got.Items, 1)
		assert.Equal(t, model.Histogram{"high": 1}, got.RiskLevelCounts)
	})

	t.Run("not a list", func(t *testing.T) {
		t.Parallel()

		for _, input := range []any{nil, map[string]any{"type": "Contact"}, "x"} {
			got := AggregatePII(input)
			assert.Empty(t, got.RiskLevelCounts)
			assert.NotNil(t, got.RiskLevelCounts)
			assert.NotNil(t, got.TypeCounts)
			assert.NotNil(t, got.Items)
		}
	})
}

func TestAggregatePIISumsToWellFormedCount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: `[]`, want: 0},
		{name: "only malformed", input: `[null, 1, "a", true]`, want: 0},
		{name: "mixed", input: `[{}, null, {"risk_level": "HIGH"}, 2, {"risk_level": 5}]`, want: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := AggregatePII(decode(t, tc.input))
			assert.Equal(t, tc.want, got.RiskLevelCounts.Total())
			assert.Equal(t, tc.want, got.TypeCounts.Total())
			assert.Len(t, got.Items, tc.want)
		})
	}
}

func TestCountLabels(t *testing.T) {
	t.Parallel()

	got := CountLabels(decode(t, `["GDPR", "CCPA", "GDPR", "", 3, null]`))
	assert.Equal(t, model.Histogram{"GDPR": 2, "CCPA": 1}, got)

	assert.Empty(t, CountLabels("GDPR"))
	assert.NotNil(t, CountLabels(nil))
}
