// Package logging provides structured logging for logisettings.
//
// This package wraps Go's standard log/slog package. Logs go to stderr by
// default because stdout carries command output such as the settings dump
// and the device list.
//
// # Configuration
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("settings saved", "bytes", len(payload))
package logging
