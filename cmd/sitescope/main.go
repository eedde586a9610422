// Package main provides the entry point for the SiteScope CLI.
//
// SiteScope analyzes a single web page for SEO, accessibility and basic
// security issues, and can explain the result through a generative
// assistant.
//
// Usage:
//
//	sitescope analyze <url>...
//	sitescope serve
//	sitescope ask --report report.json "question"
//
// See --help for all available options.
package main

// main is the entry point for SiteScope.
func main() {
	Execute()
}
