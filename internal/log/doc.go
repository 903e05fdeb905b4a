// Package log provides secure logging functionality with automatic redaction
// of credentials and personal data, built on top of the standard slog package.
//
// A security assessment carries exactly the data that must not end up in
// log files: PII evidence samples, cookie values, storage contents, and the
// credentials used to reach the scanning service. The SecureHandler masks
// these before any record reaches the underlying handler:
//   - Attributes whose key names a credential (Authorization, Cookie, token)
//   - Attributes whose key names captured evidence (evidence, value_sample)
//   - Whole values that look like credentials (JWTs, bearer tokens, keys)
//   - Email addresses, card numbers, SSNs and phone numbers inside any
//     string value, which are replaced in place
//
// Even in verbose mode, sensitive values are masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("pii finding",
//	    "field", "contact",
//	    "evidence", "jane@example.com", // logged as ***REDACTED***
//	)
package log
