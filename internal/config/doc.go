// Package config provides configuration structures and utilities for SiteScan.
// It defines where the scanning service lives, how requests reach it, and
// report generation preferences.
package config
