package config

import "time"

const (
	// Upstream request timeouts
	RequestTimeout = 90 * time.Second
	StreamTimeout  = 180 * time.Second

	// Completion parameters
	MaxTokens   = 2048
	Temperature = 0.7

	// Inline image payload cap (estimated decoded size)
	MaxImageSizeBytes = 5 * 1024 * 1024

	// Session title cap
	MaxTitleLen = 50

	// Graceful shutdown window
	ShutdownTimeout = 10 * time.Second
)
