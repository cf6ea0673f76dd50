// Package services implements the HTTP client for the recommendation server's JSON contract.
//
// # Backend Interface
//
// [Backend] lists one method per server endpoint. The controller depends on the interface so it can be driven by
// fakes in tests and by [Client] in the CLI and TUI.
//
// # Envelope
//
// Every response is a JSON object carrying a "success" flag. On failure the server puts a human-readable reason in
// "message" (most endpoints) or "error" (analyze, recommend, history endpoints).
//
// # Error Handling
//
// Every failed call returns exactly one of two kinds of error:
//   - [shared.ErrTransport] : network failure, unreadable body, or a body that is not a JSON envelope
//   - [AppError] (matches [shared.ErrApplication]) : the server answered with success=false
//
// [UserMessage] turns either into the text shown to the user. Nothing is retried.
//
// # Sessions
//
// The server keeps sessions in a cookie. [Client] holds a cookie jar; [FileJar] persists it between CLI runs.
//
// # Pacing
//
// An optional [rate.Limiter] spaces requests out. It is disabled unless requests_per_second is configured.
package services
