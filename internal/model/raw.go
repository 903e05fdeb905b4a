package model

// Top-level section keys of the assessment payload.
const (
	SectionPII          = "PII"
	SectionTrackers     = "TRACKERS"
	SectionCookies      = "COOKIES"
	SectionDropHouses   = "DROP_HOUSES"
	SectionMules        = "MULES"
	SectionLocalCache   = "LOCAL_CACHE"
	SectionOverall      = "OVERALL_SECURITY_ASSESSMENT"
	SectionBots         = "BOTS"
	SectionExfiltration = "DATA_EXFILTRATION"
	SectionMetadata     = "_metadata"
)

// RawAssessment is the decoded assessment object produced by the scanning service.
// It is grouped by risk category (see the Section constants), and any field at
// any depth may be absent, null, or of an unexpected type.
type RawAssessment map[string]any

// RawResponse is the full body returned by the scanning service endpoint.
// The assessment lives under "assesment" (the service's spelling) or
// "assessment", and the page observations under "analysis".
type RawResponse map[string]any

// Response body keys.
const (
	responseKeyAssessment    = "assessment"
	responseKeyAssessmentAlt = "assesment"
	responseKeyAnalysis      = "analysis"
)

// Assessment returns the assessment object of the response.
// A response that carries neither assessment key but does carry top-level
// section keys is treated as a bare assessment.
func (r RawResponse) Assessment() RawAssessment {
	for _, key := range []string{responseKeyAssessmentAlt, responseKeyAssessment} {
		if m, ok := r[key].(map[string]any); ok {
			return RawAssessment(m)
		}
	}
	if r.looksLikeAssessment() {
		return RawAssessment(r)
	}
	return RawAssessment{}
}

// Analysis returns the page analysis object, or nil if there is none.
func (r RawResponse) Analysis() map[string]any {
	if m, ok := r[responseKeyAnalysis].(map[string]any); ok {
		return m
	}
	return nil
}

// looksLikeAssessment reports whether r holds any known section key directly.
func (r RawResponse) looksLikeAssessment() bool {
	for _, key := range []string{
		SectionPII, SectionTrackers, SectionCookies, SectionDropHouses,
		SectionMules, SectionLocalCache, SectionOverall,
	} {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}
