// Package config loads pipegen configuration.
//
// It uses Viper to read a YAML file, godotenv to load an optional .env file,
// and binds PIPEGEN_-prefixed environment variables over the file values
// (e.g. PIPEGEN_CATALOG_URL overrides catalog.url).
//
// # Usage
//
//	var cfg config.Config
//	if err := config.Load(&cfg, config.WithConfigFile("config.yml")); err != nil {
//	    return err
//	}
package config
