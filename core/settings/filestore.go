package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// DirPerm keeps the settings directory private to the user.
	DirPerm os.FileMode = 0700
	// FilePerm keeps API keys unreadable by other users.
	FilePerm os.FileMode = 0600

	// EnvPrefix is prepended to the environment overrides, e.g.
	// DUOCHAT_OPENAI_API_KEY.
	EnvPrefix = "DUOCHAT"

	reloadDebounce = 100 * time.Millisecond
)

// envNames maps each key to the environment variables that override it, in
// priority order.
var envNames = map[string][]string{
	KeyAPIType:      {EnvPrefix + "_API_TYPE"},
	KeyModel:        {EnvPrefix + "_MODEL"},
	KeyOpenAIAPIURL: {EnvPrefix + "_OPENAI_API_URL", "OPENAI_BASE_URL"},
	KeyOpenAIAPIKey: {EnvPrefix + "_OPENAI_API_KEY", "OPENAI_API_KEY"},
	KeyGeminiAPIKey: {EnvPrefix + "_GEMINI_API_KEY", "GEMINI_API_KEY"},
	KeySystemPrompt: {EnvPrefix + "_SYSTEM_PROMPT"},
}

// DefaultPath returns ~/.duochat/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".duochat", "settings.json"), nil
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithoutEnv disables environment variable overrides.
func WithoutEnv() FileStoreOption {
	return func(f *FileStore) {
		f.useEnv = false
	}
}

// FileStore reads settings through viper, so the file may be JSON, YAML or
// TOML depending on its extension. Every Load reads the file again; a missing
// file yields empty settings. JSON files are written with the store's key
// names; other formats go through viper's writer.
type FileStore struct {
	path   string
	useEnv bool

	mu       sync.Mutex
	watcher  *viper.Viper
	watchers []func(Settings)
}

// Ensure FileStore implements Store at compile time.
var _ Store = (*FileStore)(nil)

// NewFileStore returns a store for path. An empty path selects DefaultPath.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	f := &FileStore{path: path, useEnv: true}
	for _, opt := range opts {
		opt(f)
	}

	if _, err := f.newViper(); err != nil {
		return nil, err
	}
	return f, nil
}

// newViper returns a viper instance bound to the file and the environment.
// A fresh instance per read means keys removed from the file do not linger.
func (f *FileStore) newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	if filepath.Ext(f.path) == "" {
		v.SetConfigType("json")
	}
	if f.useEnv {
		for _, key := range Keys {
			if err := v.BindEnv(append([]string{key}, envNames[key]...)...); err != nil {
				return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
			}
		}
	}
	return v, nil
}

// Path returns the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the file and applies environment overrides.
func (f *FileStore) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// read expects f.mu to be held.
func (f *FileStore) read() (Settings, error) {
	v, err := f.newViper()
	if err != nil {
		return Settings{}, err
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s, nil
}

// Save replaces the file with s. The file is written next to its final
// location and renamed over it, so concurrent readers see either the old or
// the new object.
func (f *FileStore) Save(ctx context.Context, s Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(f.path))
	if ext != "" && ext != ".json" {
		return f.writeWithViper(s)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close() //nolint:errcheck // the write error is the one worth reporting
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// writeWithViper is used for YAML and TOML files. Viper lowercases keys on
// write; reads are case-insensitive so the round trip still holds.
func (f *FileStore) writeWithViper(s Settings) error {
	out := viper.New()
	out.SetConfigFile(f.path)
	for _, key := range Keys {
		value, _ := s.Get(key)
		out.Set(key, value)
	}
	if err := out.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Chmod(f.path, FilePerm); err != nil {
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	return nil
}

// OnChange registers callback to run with the reloaded settings whenever the
// file changes on disk. The first registration starts watching; bursts of
// events within a short window trigger a single reload. The parent directory
// must exist for changes to be seen.
func (f *FileStore) OnChange(callback func(Settings)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.watchers = append(f.watchers, callback)
	if f.watcher != nil {
		return
	}

	watcher, err := f.newViper()
	if err != nil {
		slog.Warn("settings watch disabled", "error", err)
		return
	}
	f.watcher = watcher

	var (
		debounceMu    sync.Mutex
		debounceTimer *time.Timer
	)
	watcher.OnConfigChange(func(event fsnotify.Event) {
		slog.Debug("settings file changed", "op", event.Op.String())

		debounceMu.Lock()
		defer debounceMu.Unlock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(reloadDebounce, f.reload)
	})
	watcher.WatchConfig()
}

func (f *FileStore) reload() {
	f.mu.Lock()
	s, err := f.read()
	watchers := make([]func(Settings), len(f.watchers))
	copy(watchers, f.watchers)
	f.mu.Unlock()

	if err != nil {
		slog.Warn("settings reload failed", "error", err)
		return
	}
	for _, callback := range watchers {
		callback(s)
	}
}
