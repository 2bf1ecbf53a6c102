package driven

// CredentialStore holds a single secret string, the LLM API key.
type CredentialStore interface {
	// Available reports whether secrets can be stored on this machine.
	// Callers check it before using a credential-dependent feature.
	Available() bool

	// Get returns the stored secret.
	// Returns domain.ErrCredentialsMissing if none is stored.
	Get() (string, error)

	// Set stores the secret, replacing any previous one.
	Set(secret string) error

	// Delete removes the secret. Deleting a missing secret is not an error.
	Delete() error

	// Has reports whether a secret is stored.
	Has() bool
}
