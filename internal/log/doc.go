// Package log provides secure logging on top of the standard slog package.
//
// The SecureHandler masks sensitive information before it is written:
//   - HTTP headers such as Authorization, Cookie and X-Goog-Api-Key
//   - the assistant credential under any of its usual attribute names
//   - values that look like bearer tokens, JWTs or Google API keys
//
// Even in verbose mode these values never reach the output, so logs from
// the server can be shared without leaking the Gemini key.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose, "text")
//	slog.SetDefault(logger)
package log
