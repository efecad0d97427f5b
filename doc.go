// Package wink provides a Go client library for the Wink home-automation
// cloud API.
//
// The library covers the credential lifecycle (password grant, refresh
// grant and persistence of the resulting tokens) and a uniform model of
// the account's devices, their sub-devices and the resources created
// under them.
//
// # Authentication
//
// A Session owns one credential set. Only client_id, client_secret and
// base_url are required up front; tokens are obtained with a password
// grant on the first call and refreshed lazily when they are about to
// expire:
//
//	session, err := wink.NewSession(wink.Credentials{
//	    wink.FieldClientID:     "your-client-id",
//	    wink.FieldClientSecret: "your-client-secret",
//	    wink.FieldBaseURL:      wink.DefaultBaseURL,
//	    wink.FieldUsername:     "you@example.com",
//	    wink.FieldPassword:     "your-password",
//	})
//
// Concurrent callers that find the token stale share a single refresh.
//
// To keep tokens between runs, give the session a CredentialStore. Save is
// called after every successful exchange:
//
//	store := wink.NewFileCredentialStore("/path/to/credentials.json")
//	session, err := wink.NewSessionFromStore(ctx, store)
//
// KeyringCredentialStore keeps the same document in the system keychain.
//
// # Configuration
//
// LoadConfig reads a YAML file and WINK_* environment variables:
//
//	cfg, err := wink.LoadConfig("wink.yaml")
//	session, err := cfg.NewSession(ctx)
//
// # Devices
//
// List the account's devices and act on them through typed views:
//
//	bulbs, err := session.LightBulbs(ctx)
//	for _, bulb := range bulbs {
//	    err = bulb.Toggle(ctx)
//	}
//
// Every device keeps the document it was built from. GetConfig strips the
// fields that are not configuration, and Revert writes the original
// configuration back, parent first, then each sub-device:
//
//	result := strip.Revert(ctx)
//	if result.Failed() {
//	    log.Println(result.Errors())
//	}
//
// A failed update skips that device's sub-devices; devices already
// restored stay restored.
//
// # Error Handling
//
// Token endpoint failures are *AuthError, resource call failures
// *APIError, network failures *TransportError and references to sub-device
// or resource kinds a device does not declare *ConfigError:
//
//	_, err := device.Get(ctx)
//	if wink.IsNotFound(err) {
//	    // device was removed
//	}
//
// # Logging
//
// Sessions log through zerolog. Pass WithLogger, or use NewLoggingSession
// to also log raw HTTP traffic. Tokens are never logged.
package wink
