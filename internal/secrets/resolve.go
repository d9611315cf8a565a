// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package secrets

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

const (
	keyringScheme = "keyring://"
	envScheme     = "env://"
)

// IsSecretURI reports whether value uses a resolvable secret reference scheme.
func IsSecretURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme) || strings.HasPrefix(value, envScheme)
}

// ParseKeyringURI extracts service and key from a keyring://service/key URI.
// Returns an error if the URI is malformed.
func ParseKeyringURI(uri string) (service, key string, err error) {
	if !strings.HasPrefix(uri, keyringScheme) {
		return "", "", mnemoerr.Errorf(mnemoerr.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}

	path := strings.TrimPrefix(uri, keyringScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", mnemoerr.Errorf(mnemoerr.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}

	return parts[0], parts[1], nil
}

// ResolveSecretURI resolves a keyring://service/key or env://VAR reference to
// its secret value. Returns the original value unchanged if it uses neither
// scheme.
func ResolveSecretURI(store Store, value string) (string, error) {
	switch {
	case strings.HasPrefix(value, keyringScheme):
		service, key, err := ParseKeyringURI(value)
		if err != nil {
			return "", err
		}

		secret, err := store.Retrieve(service, key)
		if err != nil {
			return "", mnemoerr.Wrapf(err, mnemoerr.CodeSecretResolveFailure,
				"resolving keyring URI %q", value)
		}
		return secret, nil

	case strings.HasPrefix(value, envScheme):
		name := strings.TrimPrefix(value, envScheme)
		if name == "" {
			return "", mnemoerr.Errorf(mnemoerr.CodeSecretInvalidInput,
				"invalid env URI %q: expected env://VAR", value)
		}

		secret, ok := os.LookupEnv(name)
		if !ok {
			return "", mnemoerr.Errorf(mnemoerr.CodeSecretResolveFailure,
				"environment variable %s is not set", name)
		}
		return secret, nil

	default:
		return value, nil
	}
}

// ResolveViperSecrets walks all keys in a Viper instance and resolves any
// string values that use the keyring:// or env:// reference schemes. This is
// a post-load resolution step, not a Viper decoder hook.
//
// Resolution failures are logged as warnings and the original URI value is
// kept in place, allowing the application to surface the error later when
// the config value is actually used.
func ResolveViperSecrets(v *viper.Viper, store Store) {
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if !IsSecretURI(val) {
			continue
		}

		resolved, err := ResolveSecretURI(store, val)
		if err != nil {
			slog.Warn("failed to resolve secret URI, keeping original value",
				"config_key", key,
				"error", err,
			)
			continue
		}

		v.Set(key, resolved)
	}
}
