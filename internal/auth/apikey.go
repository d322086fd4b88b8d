// Package auth checks the API keys allowed to open game connections
package auth

// APIKeyAuth provides a simple API key authentication
type APIKeyAuth struct {
	validKeys map[string]struct{}
}

// NewAPIKeyAuth creates a new API key authentication middleware.
// With no keys, authentication is disabled.
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	validKeys := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key != "" {
			validKeys[key] = struct{}{}
		}
	}

	return &APIKeyAuth{
		validKeys: validKeys,
	}
}

// Enabled reports whether any key is configured
func (a *APIKeyAuth) Enabled() bool {
	return len(a.validKeys) > 0
}

// IsValidKey checks if a key is valid
func (a *APIKeyAuth) IsValidKey(key string) bool {
	_, valid := a.validKeys[key]
	return valid
}
