// Package auth provides a high-level API for persisting and retrieving the account password from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"
)

const service = "lara"

// SetPassword persists the account password to the system keyring, keyed by email.
func SetPassword(email, password string) error {
	return keyring.Set(service, email, password)
}

// GetPassword retrieves the account password from the system keyring.
func GetPassword(email string) (string, error) {
	return keyring.Get(service, email)
}

// DeletePassword removes the account password from the system keyring.
func DeletePassword(email string) error {
	return keyring.Delete(service, email)
}
