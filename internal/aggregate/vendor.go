package aggregate

import (
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/nao1215/sitescan/internal/field"
	"github.com/nao1215/sitescan/internal/model"
	"golang.org/x/net/publicsuffix"
)

// Vendor record keys.
const (
	vendorKeyReputation    = "reputation"
	vendorKeyPurpose       = "purpose"
	vendorKeyDataCollected = "data_collected"
)

// VendorSummary holds the groupings derived from a vendor mapping.
type VendorSummary struct {
	// ReputationCounts always holds exactly the canonical reputation buckets.
	ReputationCounts model.Histogram

	// DataCollectedCounts counts each data category once per vendor listing it.
	DataCollectedCounts model.Histogram

	// PurposeCounts counts vendors by purpose.
	PurposeCounts model.Histogram

	// SiteCounts counts vendors by registrable domain.
	SiteCounts model.Histogram

	// Vendors holds one row per well-formed record, sorted by domain.
	Vendors []model.VendorRow
}

// AggregateVendors groups a tracker domain -> vendor record mapping.
// vendors is normally the decoded TRACKERS.vendor_analysis object; any other
// shape yields empty groupings with the reputation buckets at zero.
// Null and non-object records are skipped entirely.
func AggregateVendors(vendors any) VendorSummary {
	summary := VendorSummary{
		ReputationCounts:    model.NewHistogram(model.ReputationLabels...),
		DataCollectedCounts: model.Histogram{},
		PurposeCounts:       model.Histogram{},
		SiteCounts:          model.Histogram{},
		Vendors:             []model.VendorRow{},
	}

	records, ok := vendors.(map[string]any)
	if !ok {
		return summary
	}

	for domain, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		row := model.VendorRow{
			Domain:        domain,
			Site:          registrableDomain(domain),
			Purpose:       field.NonEmptyString(record, vendorKeyPurpose, model.UnknownLabel),
			Reputation:    model.CanonicalReputation(field.String(record, vendorKeyReputation, "")),
			DataCollected: dataCategories(record),
		}

		summary.ReputationCounts.Add(row.Reputation)
		summary.PurposeCounts.Add(row.Purpose)
		summary.SiteCounts.Add(row.Site)
		for _, category := range row.DataCollected {
			summary.DataCollectedCounts.Add(category)
		}
		summary.Vendors = append(summary.Vendors, row)
	}

	sort.Slice(summary.Vendors, func(i, j int) bool {
		return summary.Vendors[i].Domain < summary.Vendors[j].Domain
	})

	return summary
}

// dataCategories returns the non-empty string tags of a record's
// data_collected list, in order.
func dataCategories(record map[string]any) []string {
	tags := field.StringSlice(record, vendorKeyDataCollected)
	out := tags[:0]
	for _, tag := range tags {
		if strings.TrimSpace(tag) != "" {
			out = append(out, tag)
		}
	}
	return out
}

// registrableDomain returns the eTLD+1 of a tracker domain.
// The service sometimes reports full URLs, so scheme, path and port are
// stripped first. Hosts without a registrable domain (IP addresses,
// single-label names, bare public suffixes) are returned as-is.
func registrableDomain(domain string) string {
	host := hostOf(domain)
	if host == "" {
		return domain
	}
	if net.ParseIP(host) != nil {
		return host
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}

// hostOf extracts the lower-cased host name from a domain or URL.
func hostOf(domain string) string {
	s := strings.TrimSpace(domain)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(domain))
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}
