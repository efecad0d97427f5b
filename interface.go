package wink

import "context"

// Caller issues API calls on behalf of devices and resources.
// *Session implements it; tests substitute a fake.
type Caller interface {
	Call(ctx context.Context, method, path string, body any) (Document, error)
}

// CredentialStore persists credential sets between runs. A Session calls
// Save after every successful (re)authentication.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
}

// node is anything with a canonical REST path that can own creatable
// resources.
type node interface {
	Path() string
	caller() Caller
}

var (
	_ Caller          = (*Session)(nil)
	_ CredentialStore = (*MemoryCredentialStore)(nil)
	_ CredentialStore = (*FileCredentialStore)(nil)
	_ CredentialStore = (*KeyringCredentialStore)(nil)
	_ node            = (*Device)(nil)
	_ node            = (*Resource)(nil)
)
