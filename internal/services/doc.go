// Package services defines shared error markers and context helpers consumed
// by the pipeline stages and their remote integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so callers can classify a
//     failure (configuration, validation, transient, malformed, tool) without
//     string matching.
//   - MissingCredential, which produces the fail-fast configuration error the
//     CLI prints together with remediation steps.
//   - Context helpers that stamp the run ID and stage name for logging.
//
// Sub-packages hold the concrete remote clients (see services/openai).
package services
