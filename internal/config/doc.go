// Package config loads, normalizes, and validates subburn configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads .env files, and honours environment
// fallbacks such as OPENAI_API_KEY. The Config type centralizes every knob
// the pipeline and CLI need so credentials, rendering defaults, and encoder
// settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical colours, and clear validation errors.
package config
