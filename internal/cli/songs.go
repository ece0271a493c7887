package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/driftfm/drift/internal/catalog"
	"github.com/driftfm/drift/internal/core"
	"github.com/driftfm/drift/internal/source"
	"github.com/spf13/cobra"
)

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "Manage the song catalog",
	Long:  `Commands for listing and editing the song catalog.`,
}

var songsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all songs",
	Long:  `List the built-in playlist and any custom songs.`,
	RunE:  runSongsList,
}

var songsAddCmd = &cobra.Command{
	Use:   "add [name] [url]",
	Short: "Add a custom song",
	Long: `Add a song to the catalog. With no arguments, prompts interactively.

The URL may be a direct media file (mp3, wav, flac, ogg) or a video
page link.

Examples:
  drift songs add
  drift songs add "Night Rain" https://example.com/rain.mp3`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSongsAdd,
}

var songsRemoveCmd = &cobra.Command{
	Use:   "remove <name|index>",
	Short: "Remove a custom song",
	Long:  `Remove a custom song by name or by its number in 'drift songs list'. Built-in songs cannot be removed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSongsRemove,
}

func init() {
	songsCmd.AddCommand(songsListCmd)
	songsCmd.AddCommand(songsAddCmd)
	songsCmd.AddCommand(songsRemoveCmd)
	rootCmd.AddCommand(songsCmd)
}

func openStore() (*catalog.Store, error) {
	store, err := catalog.NewStore(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open song catalog: %w", err)
	}
	return store, nil
}

func runSongsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	songs, err := store.LoadSongs()
	if err != nil {
		return fmt.Errorf("failed to load songs: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(songs)
	}

	table := NewTable("#", "NAME", "AUTHOR", "SOURCE", "")
	for i, s := range songs {
		kind, _ := source.Classify(s.URL)
		label := "media"
		if kind == core.SourceEmbeddedVideo {
			label = "video"
		}
		marker := ""
		if s.IsCustom {
			marker = "custom"
		}
		table.Row(
			strconv.Itoa(i+1),
			TruncateString(s.Name, 40),
			TruncateString(s.Author, 24),
			label,
			marker,
		)
	}
	table.Flush()

	return nil
}

func runSongsAdd(cmd *cobra.Command, args []string) error {
	var name, url string
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		url = args[1]
	}

	if name == "" || url == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Song name").
					Value(&name),
				huh.NewInput().
					Title("URL").
					Description("A media file or video page link").
					Value(&url),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
	}

	song, err := catalog.NewSong(name, url)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	custom, err := store.CustomSongs()
	if err != nil {
		return fmt.Errorf("failed to load songs: %w", err)
	}

	for _, s := range custom {
		if s.SameAs(song) {
			return fmt.Errorf("song with URL %s already exists", song.URL)
		}
	}

	custom = append(custom, song)
	if err := store.SaveCustomSongs(custom); err != nil {
		return fmt.Errorf("failed to save songs: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(song)
	}
	fmt.Printf("Added %q\n", song.Name)
	return nil
}

func runSongsRemove(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	custom, err := store.CustomSongs()
	if err != nil {
		return fmt.Errorf("failed to load songs: %w", err)
	}

	target := args[0]
	idx := -1

	// Numeric argument refers to the position in 'songs list', which
	// places custom songs after the built-in playlist.
	if n, err := strconv.Atoi(target); err == nil {
		n -= len(catalog.Builtin()) + 1
		if n >= 0 && n < len(custom) {
			idx = n
		}
	}
	if idx < 0 {
		for i, s := range custom {
			if strings.EqualFold(s.Name, target) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return fmt.Errorf("custom song '%s' not found", target)
	}

	removed := custom[idx]
	custom = append(custom[:idx], custom[idx+1:]...)
	if err := store.SaveCustomSongs(custom); err != nil {
		return fmt.Errorf("failed to save songs: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "removed",
			"name":   removed.Name,
		})
	}
	fmt.Printf("Removed %q\n", removed.Name)
	return nil
}
