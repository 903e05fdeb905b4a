package aggregate

import (
	"strconv"

	"github.com/nao1215/sitescan/internal/field"
	"github.com/nao1215/sitescan/internal/model"
)

// Saturation slopes of the severity proxies. Each finding adds this many
// percentage points, capped at maxPercent. These are display proxies, not
// probabilities.
const (
	cookieSlope     = 10
	localCacheSlope = 30
	maxPercent      = 100
)

// Section keys used by the cookie and local cache summaries.
const (
	keyRiskCount          = "risk_count"
	keyLength             = "length"
	keyIssuesByType       = "issues_by_type"
	keyHighRiskCookies    = "high_risk_cookies"
	keyIssues             = "issues"
	keyName               = "name"
	keyExpirationDays     = "expiration_days"
	keySensitiveDataFound = "sensitive_data_found"
	keyItems              = "items"
)

// CookieScale maps a cookie count to a 0-100 severity percentage.
func CookieScale(count int) int {
	return saturate(count, cookieSlope)
}

// LocalCacheScale maps a local cache risk count to a 0-100 severity percentage.
func LocalCacheScale(count int) int {
	return saturate(count, localCacheSlope)
}

// saturate computes min(max(count,0)*slope, 100) without overflowing.
func saturate(count, slope int) int {
	if count <= 0 {
		return 0
	}
	if count >= maxPercent/slope+1 {
		return maxPercent
	}
	return min(count*slope, maxPercent)
}

// CookieCount resolves the cookie count of a COOKIES section.
// A list counts its elements. Otherwise a numeric "length" wins, even when
// zero, then "risk_count", then 0.
func CookieCount(section any) int {
	if list, ok := section.([]any); ok {
		return len(list)
	}
	if field.Has(section, keyLength) {
		if n, ok := field.ToInt(field.Get(section, keyLength, nil)); ok {
			return n
		}
	}
	return field.Int(section, keyRiskCount, 0)
}

// SummarizeCookies builds the cookie summary of a COOKIES section.
func SummarizeCookies(section any) model.CookieSummary {
	count := max(CookieCount(section), 0)
	percent := CookieScale(count)

	return model.CookieSummary{
		RiskCount:       riskCount(section),
		Count:           count,
		Percent:         percent,
		Display:         strconv.Itoa(count) + "," + strconv.Itoa(percent) + "%",
		IssuesByType:    issueCounts(field.Map(section, keyIssuesByType)),
		HighRiskCookies: highRiskCookies(field.Slice(section, keyHighRiskCookies)),
	}
}

// issueCounts copies the numeric entries of issues_by_type into a histogram.
// Non-numeric entries are skipped and negative counts clamp to zero.
func issueCounts(issues map[string]any) model.Histogram {
	h := make(model.Histogram, len(issues))
	for issue, raw := range issues {
		n, ok := field.ToInt(raw)
		if !ok {
			continue
		}
		h[issue] = max(n, 0)
	}
	return h
}

// highRiskCookies converts the high_risk_cookies list, skipping malformed entries.
func highRiskCookies(list []any) []model.CookieRecord {
	cookies := make([]model.CookieRecord, 0, len(list))
	for _, raw := range list {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cookie := model.CookieRecord{
			Name:   field.NonEmptyString(record, keyName, model.UnknownLabel),
			Issues: field.StringSlice(record, keyIssues),
		}
		if n, ok := field.ToInt(field.Get(record, keyExpirationDays, nil)); ok {
			cookie.ExpirationDays = &n
		}
		cookies = append(cookies, cookie)
	}
	return cookies
}

// SummarizeLocalCache builds the local cache summary of a LOCAL_CACHE section.
func SummarizeLocalCache(section any) model.LocalCacheSummary {
	count := riskCount(section)
	percent := LocalCacheScale(count)

	return model.LocalCacheSummary{
		RiskCount:          count,
		Percent:            percent,
		Display:            strconv.Itoa(percent) + "%",
		SensitiveDataFound: field.Bool(section, keySensitiveDataFound, false),
		Items:              field.StringSlice(section, keyItems),
	}
}
