// Package logging provides centralized structured logging configuration for
// ecshost: a base logrus setup plus per-subsystem field constructors for
// the world, its scheduler, and the plugin host.
//
// # Configuration
//
// The logger can be configured via environment variables:
//   - LOG_LEVEL: Sets the minimum log level (debug, info, warn, error, fatal). Default: info
//   - LOG_FORMAT: Sets the output format (json, text). Default: text
//
// # Usage
//
// Initialize the base logger once at startup, then tag it per subsystem as
// it's handed to a World or a Host:
//
//	base := logging.NewLogger(logging.Config{Level: logging.InfoLevel, Format: logging.TextFormat})
//	entry := base.WithField("component", "ecshost")
//	world := ecs.NewWorld(maxEntities, logging.WorldLogger(entry))
//	host, _ := pluginhost.NewHost(world, dir, tmp, logging.PluginHostLogger(entry))
//
// # Performance
//
// Avoid logging above Info level in the tick loop; the ecs package's
// system-registration and entity-lifecycle log lines are Debug-level for
// that reason.
package logging
