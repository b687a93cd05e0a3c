// Package config handles loading and validating vizgate configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with VIZGATE_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Secrets (mail and MQTT passwords, the InfluxDB token) should come from the
// environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
package config
