// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("catalog")
//	log.Info("catalog loaded", logger.Fields("pipelines", 12))
package logger
