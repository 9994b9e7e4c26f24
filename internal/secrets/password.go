// Package secrets keeps the database password in the OS keychain.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the service's entries in the OS keychain.
	KeyringService = "jobboard"

	// EnvDBPassword is consulted when the keychain has no entry.
	EnvDBPassword = "JOBBOARD_DB_PASSWORD"
)

var ErrNoPassword = errors.New("database password not found (set it in the keychain or " + EnvDBPassword + ")")

// DBPassword looks the password up in the keychain, then the environment.
func DBPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		// a missing or unavailable keychain falls through to the env
		if pw, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := os.Getenv(EnvDBPassword); pw != "" {
		return pw, nil
	}
	return "", ErrNoPassword
}

func SetDBPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteDBPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
