package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nao1215/sitescan/internal/field"
	"github.com/nao1215/sitescan/internal/model"
)

// Page analysis keys.
const (
	pageKeyURL          = "url"
	pageKeyScripts      = "scripts"
	pageKeyCookies      = "cookies"
	pageKeyTrackers     = "trackers"
	pageKeyLocalStorage = "local_storage"

	cookieKeyName     = "name"
	cookieKeyDomain   = "domain"
	cookieKeySecure   = "secure"
	cookieKeyHTTPOnly = "httpOnly"
	cookieKeyExpiry   = "expiry"

	trackerKeyType   = "type"
	trackerKeySource = "source"
	trackerKeyRisk   = "risk"
)

// AnalyzePage converts the service's page analysis block.
// A nil analysis yields an empty PageAnalysis with non-nil lists.
func AnalyzePage(analysis map[string]any) model.PageAnalysis {
	storage, accessible := localStorage(analysis[pageKeyLocalStorage])

	return model.PageAnalysis{
		URL:                    field.String(analysis, pageKeyURL, ""),
		Scripts:                field.StringSlice(analysis, pageKeyScripts),
		Cookies:                observedCookies(field.Slice(analysis, pageKeyCookies)),
		Trackers:               observedTrackers(field.Slice(analysis, pageKeyTrackers)),
		LocalStorage:           storage,
		LocalStorageAccessible: accessible,
	}
}

func observedCookies(list []any) []model.ObservedCookie {
	cookies := make([]model.ObservedCookie, 0, len(list))
	for _, raw := range list {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cookies = append(cookies, model.ObservedCookie{
			Name:     field.NonEmptyString(record, cookieKeyName, model.UnknownLabel),
			Domain:   field.String(record, cookieKeyDomain, ""),
			Secure:   field.Bool(record, cookieKeySecure, false),
			HTTPOnly: field.Bool(record, cookieKeyHTTPOnly, false),
			Expiry:   int64(field.Int(record, cookieKeyExpiry, 0)),
		})
	}
	return cookies
}

func observedTrackers(list []any) []model.ObservedTracker {
	trackers := make([]model.ObservedTracker, 0, len(list))
	for _, raw := range list {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		trackers = append(trackers, model.ObservedTracker{
			Type:   field.NonEmptyString(record, trackerKeyType, model.UnknownLabel),
			Source: field.String(record, trackerKeySource, ""),
			Risk:   field.NonEmptyString(record, trackerKeyRisk, model.RiskLevelUnknown),
		})
	}
	return trackers
}

// localStorage converts the local_storage object into entries sorted by key.
// The service reports an error string when storage was unreadable; any
// non-object value is treated that way.
func localStorage(raw any) ([]model.StorageEntry, bool) {
	storage, ok := raw.(map[string]any)
	if !ok {
		return []model.StorageEntry{}, false
	}

	entries := make([]model.StorageEntry, 0, len(storage))
	for key, value := range storage {
		entries = append(entries, model.StorageEntry{Key: key, Value: stringify(value)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, true
}

// stringify renders a decoded JSON value as text. Strings are returned
// unquoted; everything else is re-encoded as JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
