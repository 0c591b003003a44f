package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"promptforge/config/storage"
	"promptforge/config/validation"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// appDir is the directory name under the XDG config home
const appDir = "promptforge"

// Manager reads and writes the settings file
type Manager struct {
	dir  string
	path string
	mu   sync.Mutex // serializes writers within the process
}

// NewManager creates a Manager rooted at the XDG config location
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	// Check XDG_CONFIG_HOME environment variable for custom config location
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}
	return NewManagerAt(filepath.Join(xdgConfigHome, appDir))
}

// NewManagerAt creates a Manager whose settings live in dir
func NewManagerAt(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &Manager{
		dir:  dir,
		path: filepath.Join(dir, "settings.json"),
	}, nil
}

// Path returns the settings file path
func (m *Manager) Path() string {
	return m.path
}

// Dir returns the config directory
func (m *Manager) Dir() string {
	return m.dir
}

// Load resolves the settings from defaults, the settings file, PROMPTFORGE_*
// environment variables and, when flags is non-nil, changed command-line
// flags, in increasing order of precedence. Flags are matched to keys by
// replacing "-" with "_".
func (m *Manager) Load(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults(m.dir) {
		v.SetDefault(key, value)
	}

	data, err := m.read()
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", m.path, err)
		}
	}

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Set validates value and writes it under key, leaving the rest of the file
// untouched. The previous file is kept as a backup.
func (m *Manager) Set(key, value string) error {
	normalized, err := validation.ValidateSetting(key, value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := os.ReadFile(m.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	hadContent := len(strings.TrimSpace(string(current))) > 0
	if !hadContent {
		current = []byte("{}")
	} else if !gjson.ValidBytes(current) {
		return fmt.Errorf("settings file %s is not valid JSON; fix or remove it first", m.path)
	}

	updated, err := sjson.SetBytes(current, key, normalized)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	return storage.AtomicWrite(m.path, updated, hadContent)
}

// Unset removes key from the settings file so its default applies again.
func (m *Manager) Unset(key string) error {
	if !validation.IsKnownSetting(key) {
		return fmt.Errorf("unknown setting %q", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	if !gjson.GetBytes(current, key).Exists() {
		return nil
	}
	updated, err := sjson.DeleteBytes(current, key)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return storage.AtomicWrite(m.path, updated, true)
}

// Restore replaces the settings file with its most recent backup.
func (m *Manager) Restore() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.lock(true)
	if err != nil {
		return "", err
	}
	defer unlock()

	return storage.NewBackups(storage.DefaultBackupRetention).RestoreLatest(m.path)
}

// read returns the raw settings file under a shared lock
func (m *Manager) read() ([]byte, error) {
	unlock, err := m.lock(false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	file, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return data, nil
}

// lock takes the sidecar lock file. The settings file itself is replaced by
// rename on every write, so it cannot carry the lock.
func (m *Manager) lock(exclusive bool) (func(), error) {
	f, err := os.OpenFile(m.path+".lock", os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if exclusive {
		err = lockFileExclusive(f)
	} else {
		err = lockFileShared(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to lock settings file: %w", err)
	}

	return func() {
		if err := unlockFile(f); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to unlock settings file: %v\n", err)
		}
		f.Close()
	}, nil
}

func validate(s *Settings) error {
	checks := map[string]string{
		KeyBackendURL:      s.BackendURL,
		KeyGenerateTimeout: s.GenerateTimeout.String(),
		KeyRequestTimeout:  s.RequestTimeout.String(),
		KeyLogLevel:        s.LogLevel,
	}
	for _, key := range Keys {
		value, ok := checks[key]
		if !ok {
			continue
		}
		if _, err := validation.ValidateSetting(key, value); err != nil {
			return fmt.Errorf("invalid setting: %w", err)
		}
	}
	return nil
}
