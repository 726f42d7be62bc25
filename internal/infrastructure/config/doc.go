// Package config loads the schematic server configuration.
//
// Settings come from three layers, each overriding the last: Default, a
// YAML file, and environment variables named SCHEMATIC_<SECTION>_<KEY>.
// Secrets such as the JWT secret, broker password and InfluxDB token are
// best supplied through the environment:
//
//	SCHEMATIC_JWT_SECRET=$(openssl rand -hex 32) schematic serve
//
// Durations are whole seconds (type Seconds) except the token lifetime,
// which is in minutes.
package config
