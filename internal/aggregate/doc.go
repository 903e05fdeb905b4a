// Package aggregate turns a raw assessment payload into a model.ScanResult.
//
// # Components
//
//   - AggregateVendors: tracker domain -> vendor record mapping into reputation,
//     data-collected, purpose and site histograms
//   - AggregatePII: PII risk items into risk-level and type histograms
//   - SummarizeCookies / SummarizeLocalCache: saturating severity proxies
//   - AnalyzePage: page observations (cookies, trackers, local storage)
//   - Normalize: the orchestrator that runs all of the above
//
// Every function here is pure. Inputs are read through package field, so a
// missing or malformed value anywhere in the payload only ever defaults the
// one derived value that depends on it. Malformed list or map entries are
// skipped and contribute nothing to any histogram.
package aggregate
