package wink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service name credentials are
// filed under.
const DefaultKeyringService = "wink"

// KeyringCredentialStore keeps the credential set in the system keychain
// as a JSON document.
type KeyringCredentialStore struct {
	service string
	account string
}

// NewKeyringCredentialStore creates a keychain store for account, usually
// the Wink username or client id.
func NewKeyringCredentialStore(account string) *KeyringCredentialStore {
	return &KeyringCredentialStore{service: DefaultKeyringService, account: account}
}

func (k *KeyringCredentialStore) location() string {
	return fmt.Sprintf("keyring %s::%s", k.service, k.account)
}

// Load retrieves the credential set.
func (k *KeyringCredentialStore) Load(ctx context.Context) (Credentials, error) {
	data, err := keyring.Get(k.service, k.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			err = ErrCredentialsNotFound
		}
		return nil, &StoreError{Op: "load", Location: k.location(), Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, &StoreError{Op: "load", Location: k.location(), Err: fmt.Errorf("invalid credentials: %w", err)}
	}
	return creds, nil
}

// Save stores the credential set, replacing any previous entry.
func (k *KeyringCredentialStore) Save(ctx context.Context, creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return &StoreError{Op: "save", Location: k.location(), Err: err}
	}
	if err := keyring.Set(k.service, k.account, string(data)); err != nil {
		return &StoreError{Op: "save", Location: k.location(), Err: err}
	}
	return nil
}

// Delete removes the entry. Deleting a missing entry is not an error.
func (k *KeyringCredentialStore) Delete(ctx context.Context) error {
	if err := keyring.Delete(k.service, k.account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return &StoreError{Op: "delete", Location: k.location(), Err: err}
	}
	return nil
}

// KeyringAvailable probes whether the system keychain accepts writes.
func KeyringAvailable() bool {
	const probe = "wink::probe"
	if err := keyring.Set(DefaultKeyringService, probe, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(DefaultKeyringService, probe)
	return true
}
