// Package logging provides structured logging for vizgate.
//
// It wraps log/slog with JSON or text output, level filtering and default
// service/version fields. Attributes named password, token, session or code
// are redacted before they are written.
//
// Configuration (config.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "vizgate", version)
//	logger.Info("project created", "owner", login, "project", name)
package logging
