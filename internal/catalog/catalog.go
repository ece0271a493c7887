// Package catalog persists the song list. The built-in songs ship
// with the player; user-added songs are stored as JSON under the
// config directory and appended on load.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/driftfm/drift/internal/core"
	drifterrors "github.com/driftfm/drift/internal/errors"
)

// DefaultFileName is the default name for the custom-songs file.
const DefaultFileName = "songs.json"

// builtin is the song list the player ships with.
var builtin = []core.Song{
	{Name: "lofi hip hop radio - beats to relax/study to", URL: "https://www.youtube.com/watch?v=jfKfPfyJRdk", Author: "Lofi Girl"},
	{Name: "Rainy Night in Kyoto", URL: "https://files.driftfm.dev/rainy-night-in-kyoto.mp3", Author: "driftfm"},
	{Name: "Midnight Coffee", URL: "https://files.driftfm.dev/midnight-coffee.mp3", Author: "driftfm"},
	{Name: "Slow Waves", URL: "https://files.driftfm.dev/slow-waves.ogg", Author: "driftfm"},
}

// Builtin returns a copy of the built-in song list.
func Builtin() []core.Song {
	out := make([]core.Song, len(builtin))
	copy(out, builtin)
	return out
}

// Store handles persisting custom songs to disk.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store at the specified path. If path is empty,
// the default location (~/.config/drift/songs.json) is used.
func NewStore(path string) (*Store, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "drift", DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path returns the path to the custom-songs file.
func (s *Store) Path() string {
	return s.path
}

// LoadSongs returns the full playable list: built-in songs followed by
// the user's custom songs.
func (s *Store) LoadSongs() ([]core.Song, error) {
	custom, err := s.CustomSongs()
	if err != nil {
		return nil, err
	}
	return append(Builtin(), custom...), nil
}

// CustomSongs reads the user's songs from disk. A missing file is an
// empty list, not an error.
func (s *Store) CustomSongs() ([]core.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read songs file: %w", err)
	}

	var songs []core.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("failed to parse songs file: %w", err)
	}
	return songs, nil
}

// SaveCustomSongs persists the user's songs to disk, replacing the
// previous list wholesale.
func (s *Store) SaveCustomSongs(songs []core.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal songs: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write songs file: %w", err)
	}
	return nil
}

// NewSong validates the add-song flow's input and builds the custom
// song. Both name and URL are required.
func NewSong(name, url string) (core.Song, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)

	if name == "" {
		return core.Song{}, fmt.Errorf("%w: name is required", drifterrors.ErrInvalidSong)
	}
	if url == "" {
		return core.Song{}, fmt.Errorf("%w: url is required", drifterrors.ErrInvalidSong)
	}

	return core.Song{
		Name:     name,
		URL:      url,
		Author:   "User",
		IsCustom: true,
	}, nil
}
