package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"promptforge/config/storage"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManagerAt(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestNewManagerUsesXDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	m, err := NewManager()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "promptforge", "settings.json"), m.Path())
	assert.DirExists(t, m.Dir())
}

func TestLoadDefaults(t *testing.T) {
	m := newTestManager(t)

	s, err := m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", s.BackendURL)
	assert.Equal(t, 5*time.Minute, s.GenerateTimeout)
	assert.Equal(t, 30*time.Second, s.RequestTimeout)
	assert.Equal(t, filepath.Join(m.Dir(), "promptforge.log"), s.LogFile)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoadPrecedence(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(m.Path(), []byte(`{"backend_url":"http://file:5000","generate_timeout":"2m","log_level":"debug"}`), 0600))

	s, err := m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://file:5000", s.BackendURL)
	assert.Equal(t, 2*time.Minute, s.GenerateTimeout)

	t.Setenv("PROMPTFORGE_GENERATE_TIMEOUT", "90s")
	t.Setenv("PROMPTFORGE_BACKEND_URL", "http://env:5000")
	s, err = m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, s.GenerateTimeout)
	assert.Equal(t, "http://env:5000", s.BackendURL)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend-url", "", "")
	require.NoError(t, flags.Parse([]string{"--backend-url", "http://flag:5000"}))
	s, err = m.Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:5000", s.BackendURL)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, os.WriteFile(m.Path(), []byte(`{not json`), 0600))
	_, err := m.Load(nil)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(m.Path(), []byte(`{"backend_url":"ftp://x"}`), 0600))
	_, err = m.Load(nil)
	assert.Error(t, err)
}

func TestSetIsSurgical(t *testing.T) {
	m := newTestManager(t)
	original := `{
  "backend_url": "http://localhost:5000",
  "note": "kept by hand"
}`
	require.NoError(t, os.WriteFile(m.Path(), []byte(original), 0600))

	require.NoError(t, m.Set(KeyGenerateTimeout, "10m"))

	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.Equal(t, "10m0s", gjson.GetBytes(data, "generate_timeout").String())
	assert.Equal(t, "kept by hand", gjson.GetBytes(data, "note").String())

	s, err := m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, s.GenerateTimeout)

	backups, err := storage.NewBackups(0).List(m.Path())
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestSetValidates(t *testing.T) {
	m := newTestManager(t)

	assert.Error(t, m.Set(KeyBackendURL, "not a url"))
	assert.Error(t, m.Set("colour", "blue"))
	assert.Error(t, m.Set(KeyLogLevel, "chatty"))
	assert.NoFileExists(t, m.Path())
}

func TestSetCreatesFile(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Set(KeyLogLevel, "WARN"))
	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"log_level":"warn"}`, string(data))
}

func TestConcurrentSets(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManagerAt(m.Dir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i, mgr := range []*Manager{m, other, m, other} {
		wg.Add(1)
		go func(i int, mgr *Manager) {
			defer wg.Done()
			key := []string{KeyBackendURL, KeyGenerateTimeout, KeyRequestTimeout, KeyLogLevel}[i]
			value := []string{"http://x:1", "1m", "2s", "error"}[i]
			assert.NoError(t, mgr.Set(key, value))
		}(i, mgr)
	}
	wg.Wait()

	s, err := m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://x:1", s.BackendURL)
	assert.Equal(t, time.Minute, s.GenerateTimeout)
	assert.Equal(t, 2*time.Second, s.RequestTimeout)
	assert.Equal(t, "error", s.LogLevel)
}

func TestUnsetAndRestore(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Set(KeyLogLevel, "debug"))
	require.NoError(t, m.Set(KeyLogLevel, "error"))

	used, err := m.Restore()
	require.NoError(t, err)
	assert.NotEmpty(t, used)
	s, err := m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)

	require.NoError(t, m.Unset(KeyLogLevel))
	s, err = m.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)

	assert.Error(t, m.Unset("colour"))
}

func TestSettingsValue(t *testing.T) {
	s := &Settings{BackendURL: "http://a", GenerateTimeout: time.Minute, LogLevel: "warn"}
	assert.Equal(t, "http://a", s.Value(KeyBackendURL))
	assert.Equal(t, "1m0s", s.Value(KeyGenerateTimeout))
	assert.Equal(t, "warn", s.Value(KeyLogLevel))
	assert.Equal(t, "", s.Value("bogus"))
}

func TestWatchReloadsSettings(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Settings, 4)
	_, err = m.Watch(ctx, nil, func(s *Settings, err error) {
		if err == nil {
			changes <- s
		}
	})
	require.NoError(t, err)

	require.NoError(t, m.Set(KeyRequestTimeout, "12s"))

	select {
	case s := <-changes:
		assert.Equal(t, 12*time.Second, s.RequestTimeout)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the settings file changed")
	}
}
