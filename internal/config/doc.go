// Package config reads lectio's TOML configuration.
//
// Load layers a file over Default, fills API keys from SCRIPTURE_API_KEY and
// IMAGE_API_KEY when the file leaves them blank, expands "~" in every path and
// validates the result. Callers receive a Config whose paths are absolute.
package config
