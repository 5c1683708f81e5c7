// Package config handles loading and validating logisettings configuration.
//
// This package manages:
//   - Default values, including the per-platform settings database path
//   - Loading an optional YAML file
//   - Overriding with environment variables
//   - Validation of every section, reported together
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("LOGISETTINGS_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Path)
package config
