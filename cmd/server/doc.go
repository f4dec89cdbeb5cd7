// Command studio hosts the schema-driven UI backend.
//
// Subcommands:
//
//	studio serve      REST API, metrics and the session WebSocket stream
//	studio mcp        schema edit tools over MCP (stdio)
//	studio validate   check a schema file
//	studio export     print the stored schema as JSON or YAML
//
// Configuration comes from defaults, then the TOML file named by --config
// or $STUDIO_CONFIG, then environment variables.
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
