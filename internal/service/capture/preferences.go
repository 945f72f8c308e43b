package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Preferences persist the one-time camera choice across launches.
type Preferences interface {
	InitialCameraSet() bool
	SetInitialCamera(deviceID string) error
}

type preferenceFile struct {
	InitialUserPreferredCameraSet bool   `json:"setInitialUserPreferredCamera"`
	UserPreferredCamera           string `json:"userPreferredCamera,omitempty"`
}

// FilePreferences stores Preferences as a JSON file.
type FilePreferences struct {
	path string
	mu   sync.Mutex
	data preferenceFile
}

// LoadPreferences reads path. A missing file yields empty preferences.
func LoadPreferences(path string) (*FilePreferences, error) {
	p := &FilePreferences{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		return p, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return p, nil
}

func (p *FilePreferences) InitialCameraSet() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.InitialUserPreferredCameraSet
}

// UserPreferredCamera is the recorded device ID.
func (p *FilePreferences) UserPreferredCamera() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.UserPreferredCamera
}

func (p *FilePreferences) SetInitialCamera(deviceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data.InitialUserPreferredCameraSet = true
	p.data.UserPreferredCamera = deviceID

	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := os.WriteFile(p.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// MemoryPreferences keep Preferences for the life of the process.
type MemoryPreferences struct {
	mu       sync.Mutex
	set      bool
	deviceID string
}

func (m *MemoryPreferences) InitialCameraSet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

func (m *MemoryPreferences) SetInitialCamera(deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = true
	m.deviceID = deviceID
	return nil
}
