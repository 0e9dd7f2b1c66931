package server

import "time"

// Config is the HTTP server configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// BodyLimit is the maximum request body size in bytes. Zero uses fiber's default.
	BodyLimit int

	// EnableMCP mounts the Model Context Protocol endpoint at /mcp.
	EnableMCP bool
}
