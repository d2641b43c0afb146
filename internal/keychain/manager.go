// Copyright (c) 2025 Sapflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe OS keychain operations
// for sapflow. SAP credentials and the reporting database DSN are stored
// here rather than in configuration files; environment variables always win
// over stored values so CI and containers never need a keychain.
package keychain

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/99designs/keyring"

	"sapflow/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sapflow"

// Keys used for storing secrets in the OS keychain.
const (
	KeySAPUsername = "sap_username"
	KeySAPPassword = "sap_password"
	KeyDBDSN       = "db_dsn"
)

// ErrNotFound is returned when a secret has not been stored yet.
var ErrNotFound = errors.New("keychain: secret not found")

// Manager provides thread-safe operations over the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

var (
	globalManager *Manager
	globalErr     error
	once          sync.Once
)

// GetManager returns the process-wide keychain manager, opening the OS ring
// on first use.
func GetManager() (*Manager, error) {
	once.Do(func() {
		cfgDir, err := xdg.ConfigDir()
		if err != nil {
			globalErr = err
			return
		}
		ring, err := keyring.Open(keyring.Config{
			ServiceName:              ServiceName,
			KeychainTrustApplication: true,
			// file backend fallback for hosts without a native keyring
			FileDir: filepath.Join(cfgDir, "keyring"),
		})
		if err != nil {
			globalErr = err
			return
		}
		globalManager = &Manager{ring: ring}
	})
	return globalManager, globalErr
}

// Credentials is the SAP login pair kept in the keychain.
type Credentials struct {
	Username string
	Password string
}

// SaveCredentials stores the SAP login pair.
func (m *Manager) SaveCredentials(c Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.set(KeySAPUsername, c.Username); err != nil {
		return err
	}
	return m.set(KeySAPPassword, c.Password)
}

// LoadCredentials retrieves the SAP login pair.
// Returns ErrNotFound when either half is missing.
func (m *Manager) LoadCredentials() (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, err := m.get(KeySAPUsername)
	if err != nil {
		return Credentials{}, err
	}
	pass, err := m.get(KeySAPPassword)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: user, Password: pass}, nil
}

// SaveDBDSN stores the reporting database connection string.
func (m *Manager) SaveDBDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(KeyDBDSN, dsn)
}

// LoadDBDSN retrieves the reporting database connection string.
func (m *Manager) LoadDBDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(KeyDBDSN)
}

// Clear removes all sapflow secrets from the keychain.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range []string{KeySAPUsername, KeySAPPassword, KeyDBDSN} {
		if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

func (m *Manager) set(key, value string) error {
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

func (m *Manager) get(key string) (string, error) {
	item, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(item.Data), nil
}
