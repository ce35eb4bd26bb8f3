// Package keyring stores the PostgreSQL connection string in the OS keyring
// so that passwords never appear on the command line or in config files.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/mealplan/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("connection string not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

const availabilityProbeUser = "availability-probe"

func GetConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

func DeleteConnectionString() error {
	if err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// Status reports whether the keyring is reachable and holds a connection
// string.
func Status() (available bool, stored bool) {
	if !IsAvailable() {
		return false, false
	}
	_, err := GetConnectionString()
	return true, err == nil
}

// IsAvailable is a best-effort check that the OS keyring answers reads.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, availabilityProbeUser)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
