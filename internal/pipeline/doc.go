// Package pipeline runs a complete burn: collect inputs, obtain segments
// (transcribe or read the subtitle file), optionally translate, re-render the
// SRT with overlays, optionally illustrate each segment, then encode.
//
// Collaborators are interfaces so the CLI wires the real services and tests
// substitute fakes. Only image generation runs concurrently; every other step
// is sequential and stops at the first error.
package pipeline
