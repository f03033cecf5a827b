// Package openai provides the HTTP client for the OpenAI endpoints subburn
// calls: chat completions with a JSON schema response format, image
// generation, audio transcription, and plain downloads of generated assets.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.CompleteStructured: system/user prompts in, schema-conforming JSON out.
// Client.GenerateImage: one image per request, returned as a URL or base64.
// Client.Download: fetch a generated image by URL.
// Client.Transcribe: upload an audio file, receive timed segments.
//
// # Error Classification
//
// The client is single-shot; callers own retries. Errors carry the markers
// from internal/services so internal/retry can classify them:
//   - HTTP 408/429/5xx and transport timeouts: ErrTransient
//   - HTTP 401/403: ErrConfiguration (the key is wrong, retrying cannot help)
//   - other 4xx: ErrValidation
//   - empty content, no image URL, undecodable bodies: ErrMalformed
package openai
