// Package keyring provides access to the system keychain for storing secrets.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "soundboard"

// Secret represents a named secret stored in the keychain.
type Secret string

const (
	// ServerToken is the bearer token the HTTP API requires.
	ServerToken Secret = "server-token"
)

// ErrNotFound is returned when a secret has not been stored.
var ErrNotFound = keyring.ErrNotFound

// DisplayName returns a human-readable name for the secret.
func (s Secret) DisplayName() string {
	switch s {
	case ServerToken:
		return "server token"
	default:
		return string(s)
	}
}

// Get retrieves a secret from the system keychain.
func Get(secret Secret) (string, error) {
	value, err := keyring.Get(serviceName, string(secret))
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", secret.DisplayName(), err)
	}

	return value, nil
}

// Set stores a secret in the system keychain.
func Set(secret Secret, value string) error {
	if value == "" {
		return fmt.Errorf("refusing to store empty %s", secret.DisplayName())
	}

	if err := keyring.Set(serviceName, string(secret), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", secret.DisplayName(), err)
	}

	return nil
}

// Delete removes a secret. Deleting a missing secret is not an error.
func Delete(secret Secret) error {
	err := keyring.Delete(serviceName, string(secret))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keychain: %w", secret.DisplayName(), err)
	}

	return nil
}

// IsSet checks if a secret exists in the keychain.
func IsSet(secret Secret) bool {
	_, err := keyring.Get(serviceName, string(secret))

	return err == nil
}

// Resolve returns explicit when set, otherwise the stored secret. A missing
// secret resolves to "".
func Resolve(secret Secret, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	value, err := Get(secret)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}

	return value, err
}
