// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct
// tags. Defaults describe a working Berlin setup; environment variables
// override the external endpoints and cache location. The package also
// carries the Berlin university presets used as commute destinations.
package config
