// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The MCP server runs on stdio, so StdioConfig routes all output to stderr.
// Domain packages receive plain *zap.Logger values obtained through
// Component, which tags every line with the emitting subsystem.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	engineLog := logger.Component("engine")
package logging
