// Package client talks to the website-scanning service.
//
// The service visits a page in a headless browser, records what it
// observes, and returns a model-generated security assessment. Client
// sends one analysis request per target and hands back the decoded body
// untouched; interpreting it is the job of package aggregate.
//
// Requests can optionally be routed through a SOCKS5 proxy, for example
// when the service is only reachable through a bastion or over Tor.
package client
