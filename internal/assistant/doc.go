// Package assistant forwards questions about an analysis report to the
// Gemini generateContent API.
//
// Ask never returns an error to the caller: every outcome, including
// validation, missing credentials, upstream HTTP errors and timeouts,
// becomes a Reply with a Spanish message and the HTTP status the inbound
// surface should use. The classified cause stays available in Reply.Err
// for errors.Is checks.
package assistant
