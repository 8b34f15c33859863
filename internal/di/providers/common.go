package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// prewarmTimeout bounds the startup catalog fetch.
	prewarmTimeout = 30 * time.Second
)
