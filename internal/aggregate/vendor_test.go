package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nao1215/sitescan/internal/model"
)

func TestAggregateVendors(t *testing.T) {
	t.Parallel()

	t.Run("known-bad advertiser and a null record", func(t *testing.T) {
		t.Parallel()

		vendors := decode(t, `{
			"ads.example.com": {"reputation": "known-bad", "purpose": "Advertising", "data_collected": ["email", "location"]},
			"cdn.example.com": null
		}`)

		got := AggregateVendors(vendors)

		assert.Equal(t, model.Histogram{"known-good": 0, "neutral": 0, "known-bad": 1}, got.ReputationCounts)
		assert.Equal(t, model.Histogram{"email": 1, "location": 1}, got.DataCollectedCounts)
		assert.Equal(t, model.Histogram{"Advertising": 1}, got.PurposeCounts)
		assert.Len(t, got.Vendors, 1)
		assert.Equal(t, "example.com", got.Vendors[0].Site)
	})

	t.Run("every record null", func(t *testing.T) {
		t.Parallel()

		got := AggregateVendors(decode(t, `{"a.com": null, "b.com": null}`))

		assert.Equal(t, model.Histogram{"known-good": 0, "neutral": 0, "known-bad": 0}, got.ReputationCounts)
		assert.Empty(t, got.DataCollectedCounts)
		assert.Empty(t, got.PurposeCounts)
		assert.Empty(t, got.Vendors)
		assert.NotNil(t, got.Vendors)
	})

	t.Run("not an object", func(t *testing.T) {
		t.Parallel()

		for _, input := range []any{nil, "oops", []any{map[string]any{"reputation": "known-bad"}}, 42.0} {
			got := AggregateVendors(input)
			assert.Equal(t, 0, got.ReputationCounts.Total())
			assert.Len(t, got.ReputationCounts, 3)
			assert.NotNil(t, got.DataCollectedCounts)
			assert.NotNil(t, got.PurposeCounts)
			assert.NotNil(t, got.SiteCounts)
		}
	})

	t.Run("reputation labels collapse to the canonical buckets", func(t *testing.T) {
		t.Parallel()

		vendors := decode(t, `{
			"a.com": {"reputation": "KNOWN-GOOD"},
			"b.com": {"reputation": " high-risk "},
			"c.com": {"reputation": "suspicious"},
			"d.com": {"reputation": 3},
			"e.com": {},
			"f.com": {"reputation": "known-bad"}
		}`)

		got := AggregateVendors(vendors)

		assert.Equal(t, model.Histogram{"known-good": 1, "neutral": 3, "known-bad": 2}, got.ReputationCounts)
	})

	t.Run("malformed fields fall back to defaults", func(t *testing.T) {
		t.Parallel()

		vendors := decode(t, `{
			"a.com": {"purpose": "", "data_collected": ["email", 7, "", null, "ip"]},
			"b.com": {"purpose": 12, "data_collected": "email"},
			"c.com": "not a record"
		}`)

		got := AggregateVendors(vendors)

		assert.Equal(t, model.Histogram{"Unknown": 2}, got.PurposeCounts)
		assert.Equal(t, model.Histogram{"email": 1, "ip": 1}, got.DataCollectedCounts)
		assert.Equal(t, []string{"email", "ip"}, got.Vendors[0].DataCollected)
		assert.Equal(t, []string{}, got.Vendors[1].DataCollected)
	})

	t.Run("rows are sorted by domain", func(t *testing.T) {
		t.Parallel()

		got := AggregateVendors(decode(t, `{"z.com": {}, "a.com": {}, "m.com": {}}`))

		var domains []string
		for _, row := range got.Vendors {
			domains = append(domains, row.Domain)
		}
		assert.Equal(t, []string{"a.com", "m.com", "z.com"}, domains)
	})
}

func TestAggregateVendorsSumsToRecordCount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: `{}`, want: 0},
		{name: "mixed", input: `{"a": {}, "b": null, "c": {"reputation": "x"}, "d": 1}`, want: 2},
		{name: "all well-formed", input: `{"a": {"reputation": "neutral"}, "b": {"reputation": "known-good"}}`, want: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := AggregateVendors(decode(t, tc.input))
			assert.Equal(t, tc.want, got.ReputationCounts.Total())
			assert.Equal(t, tc.want, got.PurposeCounts.Total())
			assert.Equal(t, tc.want, got.SiteCounts.Total())
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		domain string
		want   string
	}{
		{"ads.example.com", "example.com"},
		{"stats.g.doubleclick.net", "doubleclick.net"},
		{"tracker.example.co.uk", "example.co.uk"},
		{"https://www.google-analytics.com/collect?v=1", "google-analytics.com"},
		{"Pixel.Example.COM:8443", "example.com"},
		{"203.0.113.7", "203.0.113.7"},
		{"localhost", "localhost"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.domain, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, registrableDomain(tc.domain))
		})
	}
}
