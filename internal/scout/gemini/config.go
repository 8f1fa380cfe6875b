package gemini

import (
	"time"
)

// Config holds the settings for the Gemini scout client.
type Config struct {
	// APIKey authenticates against the endpoint. Empty means unconfigured.
	APIKey string
	// BaseURL is the Gemini API root; the client appends the API version.
	BaseURL string
	// Model is the model name sent with every request.
	Model string
	// Timeout bounds a single generation request.
	Timeout time.Duration
}

// DefaultConfig returns the public Gemini endpoint settings without a key.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://generativelanguage.googleapis.com/",
		Model:   "gemini-2.5-flash",
		Timeout: 15 * time.Second,
	}
}
