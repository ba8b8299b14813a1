// Package webhooks contains the event-authentication and alert-derivation
// pipeline.
//
// Every delivery runs verify -> parse -> persist -> classify -> dispatch.
// Verification operates on the exact bytes received on the wire; persistence
// and dispatch are best-effort so the provider always gets a success
// acknowledgement for a structurally valid, authenticated event.
package webhooks
