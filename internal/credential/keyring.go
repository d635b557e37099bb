// Package credential stores secrets in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "cronograma"

// Keys of the secrets the application keeps.
const (
	KeyBackendToken  = "backend_token"
	KeyMailPassword  = "mail_password"
	KeyTelegramToken = "telegram_token"
	KeyGoogleToken   = "google_token"
)

// ErrNotFound is returned when a secret is neither in the environment nor
// in the keyring.
var ErrNotFound = errors.New("credential not found")

// Vault reads and writes secrets. Environment variables named
// CRONOGRAMA_<KEY> take precedence over the keyring on reads.
type Vault struct {
	ring keyring.Keyring
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open opens the system keyring, falling back to an encrypted file.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/cronograma/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("cronograma-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

// EnvName is the environment variable that overrides key.
func EnvName(key string) string {
	return "CRONOGRAMA_" + strings.ToUpper(key)
}

// Get retrieves a secret by key.
func (v *Vault) Get(key string) (string, error) {
	if val := strings.TrimSpace(os.Getenv(EnvName(key))); val != "" {
		return val, nil
	}

	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Lookup is Get with a missing secret reported as "".
func (v *Vault) Lookup(key string) (string, error) {
	val, err := v.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return val, err
}

// Set stores a secret by key.
func (v *Vault) Set(key string, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "cronograma " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a secret. Deleting a missing key is not an error.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
