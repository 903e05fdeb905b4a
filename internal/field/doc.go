// Package field provides safe optional-path extraction from untrusted,
// decoded JSON values.
//
// Every accessor takes a default and returns it whenever a path segment is
// missing, null, out of range, or of the wrong shape. Accessors never panic
// and never return errors: the unit of failure is the single field being
// read, never the payload around it.
//
// # Paths
//
// A path is a dot-separated list of segments. A segment addresses a key in a
// map[string]any, or a decimal index into a []any:
//
//	field.String(payload, "PII.risk_items.0.type", "Unknown")
//	field.Int(payload, "COOKIES.risk_count", 0)
//
// The empty path addresses the value itself.
package field
