package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/session"
)

type editOptions struct {
	id           int64
	url          string
	file         string
	keepExisting bool
}

var editOpts editOptions

var editCmd = &cobra.Command{
	Use:   "edit --file sheet.txt (--id N | --url URL)",
	Short: "Edit a song's chord sheet in your own editor",
	Long: `Opens a song (by id, or by parsing a CifraClub URL), writes its sheet to --file
and saves every change made to that file back to the library until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if editOpts.file == "" {
			return errors.New("--file is required")
		}
		if (editOpts.id == 0) == (editOpts.url == "") {
			return errors.New("exactly one of --id or --url is required")
		}

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		m := a.Session(func(song models.Song) {
			fmt.Fprintf(out, "saved song #%d %q\n", song.ID, song.Title)
		})
		defer m.Close()

		return runEdit(cmd.Context(), m, editOpts, out, a.Log)
	},
}

func init() {
	f := editCmd.Flags()
	f.Int64Var(&editOpts.id, "id", 0, "id of the song to open")
	f.StringVar(&editOpts.url, "url", "", "CifraClub page to parse and open")
	f.StringVarP(&editOpts.file, "file", "f", "", "file the sheet is written to and watched")
	f.BoolVar(&editOpts.keepExisting, "keep-existing", false, "when the parsed song is already in the library, open the stored copy unchanged")
	rootCmd.AddCommand(editCmd)
}

func runEdit(ctx context.Context, m *session.Manager, opts editOptions, out io.Writer, log *zap.Logger) error {
	if opts.id != 0 {
		if err := m.Select(ctx, opts.id); err != nil {
			return err
		}
	} else {
		outcome, err := m.Parse(ctx, opts.url, duplicateChoice(opts.keepExisting))
		if err != nil {
			return err
		}
		if outcome.Existing != nil {
			fmt.Fprintf(out, "%q is already song #%d (%s)\n", outcome.Existing.Title, outcome.Existing.ID, outcome.Decision)
		}
	}

	fields := m.Fields()
	if err := os.WriteFile(opts.file, []byte(fields.Content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.file, err)
	}
	fmt.Fprintf(out, "editing %q in %s, press Ctrl+C to finish\n", fields.Title, opts.file)

	err := watchFile(ctx, opts.file, log, func(content string) {
		m.Edit(func(f *session.Fields) {
			f.Content = content
		})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if err := m.Flush(context.Background()); err != nil {
		return fmt.Errorf("final save failed: %w", err)
	}
	return m.Err()
}

func duplicateChoice(keepExisting bool) session.DecideFunc {
	return func(models.Song, models.ParsedCifra) models.DuplicateDecision {
		if keepExisting {
			return models.DecisionKeepExisting
		}
		return models.DecisionAdoptParsed
	}
}

// watchFile calls onChange with the new content each time path changes, until
// ctx is done. The directory is watched so editors that replace the file on
// save are followed.
func watchFile(ctx context.Context, path string, log *zap.Logger, onChange func(content string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	last, err := os.ReadFile(abs)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			data, err := os.ReadFile(abs)
			if err != nil {
				// mid-rename; the Create that follows carries the content
				continue
			}
			if string(data) == string(last) {
				continue
			}
			last = data
			onChange(strings.ReplaceAll(string(data), "\r\n", "\n"))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error", zap.Error(err))
		}
	}
}
