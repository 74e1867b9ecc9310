// Package config loads, normalizes, and validates subgen's YAML
// configuration file.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads the YAML config under sections whisper/translation/
// output/styles/advanced, and honours environment fallbacks for provider
// credentials. The Config type centralizes every knob the CLI needs,
// allowing the data root, style presets, and LLM provider settings to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
