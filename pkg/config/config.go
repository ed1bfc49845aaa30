// Package config provides persistence for named console profiles
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mcu-console/pkg/logging"
	"mcu-console/pkg/serial"
)

// Profile describes one console endpoint: how to reach it and how the
// shell on it behaves
type Profile struct {
	Serial               serial.Config `json:"serial"`
	MaxCommandLineLength int           `json:"max_command_line_length"`
	MaxLogMessages       int           `json:"max_log_messages"`
	LogLevel             string        `json:"log_level"`
	Hostname             string        `json:"hostname,omitempty"`
}

// Validate checks if the profile is valid
func (p Profile) Validate() error {
	if err := p.Serial.Validate(); err != nil {
		return fmt.Errorf("invalid serial configuration: %w", err)
	}

	if p.MaxCommandLineLength <= 0 {
		return fmt.Errorf("maximum command line length must be positive, got: %d", p.MaxCommandLineLength)
	}

	if p.MaxLogMessages <= 0 {
		return fmt.Errorf("maximum log messages must be positive, got: %d", p.MaxLogMessages)
	}

	if _, err := logging.ParseLevel(p.LogLevel); err != nil {
		return err
	}

	return nil
}

// DefaultProfile returns a profile with default settings
func DefaultProfile() Profile {
	return Profile{
		Serial:               serial.DefaultConfig(),
		MaxCommandLineLength: 80,
		MaxLogMessages:       20,
		LogLevel:             logging.LevelNotice.String(),
	}
}

// ProfileInfo contains a saved profile and its metadata
type ProfileInfo struct {
	Name        string    `json:"name"`
	Profile     Profile   `json:"profile"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsedAt  time.Time `json:"last_used_at"`
	Description string    `json:"description,omitempty"`
}

// ProfileManager interface defines the contract for profile operations
type ProfileManager interface {
	SaveProfile(name string, profile Profile) error
	LoadProfile(name string) (Profile, error)
	ListProfiles() ([]ProfileInfo, error)
	DeleteProfile(name string) error
	ProfileExists(name string) bool
}

// profileStorage is the on-disk representation of all saved profiles
type profileStorage struct {
	Profiles map[string]ProfileInfo `json:"profiles"`
	Version  string                 `json:"version"`
}

// FileProfileManager implements ProfileManager using a JSON file
type FileProfileManager struct {
	configDir   string
	storageFile string
}

// NewFileProfileManager creates a new file-based profile manager. An empty
// directory uses ".mcu-console" in the user's home directory.
func NewFileProfileManager(configDir string) *FileProfileManager {
	if configDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configDir = filepath.Join(home, ".mcu-console")
		} else {
			configDir = ".mcu-console"
		}
	}

	return &FileProfileManager{
		configDir:   configDir,
		storageFile: "profiles.json",
	}
}

// SaveProfile saves a profile with the given name. An existing profile's
// creation time and description are preserved.
func (fpm *FileProfileManager) SaveProfile(name string, profile Profile) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	storage, err := fpm.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load existing profiles: %w", err)
	}

	now := time.Now()
	info := ProfileInfo{
		Name:       name,
		Profile:    profile,
		CreatedAt:  now,
		LastUsedAt: now,
	}

	if existing, exists := storage.Profiles[name]; exists {
		info.CreatedAt = existing.CreatedAt
		info.Description = existing.Description
	}

	storage.Profiles[name] = info

	if err := fpm.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// LoadProfile loads a profile by name and updates its last used time
func (fpm *FileProfileManager) LoadProfile(name string) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("profile name cannot be empty")
	}

	storage, err := fpm.loadStorage()
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load profiles: %w", err)
	}

	info, exists := storage.Profiles[name]
	if !exists {
		return Profile{}, fmt.Errorf("profile '%s' not found", name)
	}

	info.LastUsedAt = time.Now()
	storage.Profiles[name] = info

	// The last-used update is not critical
	fpm.saveStorage(storage)

	return info.Profile, nil
}

// ListProfiles returns all saved profiles
func (fpm *FileProfileManager) ListProfiles() ([]ProfileInfo, error) {
	storage, err := fpm.loadStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles := make([]ProfileInfo, 0, len(storage.Profiles))
	for _, info := range storage.Profiles {
		profiles = append(profiles, info)
	}

	return profiles, nil
}

// DeleteProfile deletes a profile by name
func (fpm *FileProfileManager) DeleteProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	storage, err := fpm.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if _, exists := storage.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(storage.Profiles, name)

	if err := fpm.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save profiles after deletion: %w", err)
	}

	return nil
}

// ProfileExists checks if a profile with the given name exists
func (fpm *FileProfileManager) ProfileExists(name string) bool {
	if name == "" {
		return false
	}

	storage, err := fpm.loadStorage()
	if err != nil {
		return false
	}

	_, exists := storage.Profiles[name]
	return exists
}

// storagePath returns the path of the storage file
func (fpm *FileProfileManager) storagePath() string {
	return filepath.Join(fpm.configDir, fpm.storageFile)
}

// loadStorage reads the storage file, returning empty storage if it does
// not exist yet
func (fpm *FileProfileManager) loadStorage() (profileStorage, error) {
	storage := profileStorage{
		Profiles: make(map[string]ProfileInfo),
		Version:  "1.0",
	}

	data, err := os.ReadFile(fpm.storagePath())
	if err != nil {
		if os.IsNotExist(err) {
			return storage, nil
		}
		return storage, fmt.Errorf("failed to read profile storage: %w", err)
	}

	if err := json.Unmarshal(data, &storage); err != nil {
		return storage, fmt.Errorf("failed to parse profile storage: %w", err)
	}

	if storage.Profiles == nil {
		storage.Profiles = make(map[string]ProfileInfo)
	}

	return storage, nil
}

// saveStorage writes the storage file, creating the directory if needed
func (fpm *FileProfileManager) saveStorage(storage profileStorage) error {
	if err := os.MkdirAll(fpm.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(storage, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile storage: %w", err)
	}

	if err := os.WriteFile(fpm.storagePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write profile storage: %w", err)
	}

	return nil
}
