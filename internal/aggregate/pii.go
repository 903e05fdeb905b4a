package aggregate

import (
	"strings"

	"github.com/nao1215/sitescan/internal/field"
	"github.com/nao1215/sitescan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PII risk item keys.
const (
	piiKeyField     = "field"
	piiKeyType      = "type"
	piiKeyRiskLevel = "risk_level"
	piiKeyEvidence  = "evidence"
)

// PIISummary holds the groupings derived from a list of PII risk items.
type PIISummary struct {
	// RiskLevelCounts counts items by lower-cased risk level.
	RiskLevelCounts model.Histogram

	// TypeCounts counts items by PII type.
	TypeCounts model.Histogram

	// Items are the well-formed items with display defaults applied.
	Items []model.PIIRiskItem
}

// AggregatePII groups PII risk items by risk level and by type.
// items is normally the decoded PII.risk_items list; any other shape yields
// empty groupings. Items that are not objects are skipped and never counted.
func AggregatePII(items any) PIISummary {
	summary := PIISummary{
		RiskLevelCounts: model.Histogram{},
		TypeCounts:      model.Histogram{},
		Items:           []model.PIIRiskItem{},
	}

	list, ok := items.([]any)
	if !ok {
		return summary
	}

	// A Caser is stateful, so each call gets its own.
	lower := cases.Lower(language.Und)

	for _, raw := range list {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		item := model.PIIRiskItem{
			Field:     field.NonEmptyString(record, piiKeyField, model.UnknownLabel),
			Type:      field.NonEmptyString(record, piiKeyType, model.UnknownLabel),
			RiskLevel: riskLevel(lower, record),
			Evidence:  field.NonEmptyString(record, piiKeyEvidence, model.NoneLabel),
		}

		summary.RiskLevelCounts.Add(item.RiskLevel)
		summary.TypeCounts.Add(item.Type)
		summary.Items = append(summary.Items, item)
	}

	return summary
}

// riskLevel returns the lower-cased, trimmed risk level of a record,
// or "unknown" when it is absent, blank, or not a string.
func riskLevel(lower cases.Caser, record map[string]any) string {
	level := strings.TrimSpace(field.String(record, piiKeyRiskLevel, ""))
	if level == "" {
		return model.RiskLevelUnknown
	}
	return lower.String(level)
}

// CountLabels builds a histogram with one increment per string label in
// list. Non-string and blank entries are skipped.
func CountLabels(list any) model.Histogram {
	h := model.Histogram{}
	items, ok := list.([]any)
	if !ok {
		return h
	}
	for _, item := range items {
		label, ok := item.(string)
		if !ok || strings.TrimSpace(label) == "" {
			continue
		}
		h.Add(label)
	}
	return h
}
