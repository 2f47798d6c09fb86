package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/cifraclub"
	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/session"
)

const (
	urlTempo   = "https://www.cifraclub.com.br/legiao-urbana/tempo-perdido/"
	urlEduardo = "https://www.cifraclub.com.br/legiao-urbana/eduardo-e-monica/"
)

type stubParser struct{}

func (stubParser) Accepts(u string) bool {
	return cifraclub.IsSourceURL(u, cifraclub.DefaultHost)
}

func (stubParser) Parse(_ context.Context, u string) (*models.ParsedCifra, error) {
	switch u {
	case urlTempo:
		return &models.ParsedCifra{Title: "Tempo Perdido", Artist: "Legião Urbana", Content: "Am G\nTodos os dias", CifraClubURL: u}, nil
	case urlEduardo:
		return &models.ParsedCifra{Title: "Eduardo e Mônica", Artist: "Legião Urbana", Content: "C F\nQuem um dia", CifraClubURL: u}, nil
	}
	return nil, apperr.Fetch(404, nil)
}

// syncBuffer is written by the session's save callbacks and read by the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setupSongs(t *testing.T) *database.SongRepository {
	t.Helper()

	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	songs, err := database.NewSongRepository(context.Background(), store)
	require.NoError(t, err)
	return songs
}

func newTestCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunImport(t *testing.T) {
	songs := setupSongs(t)
	existing := &models.Song{Title: "Tempo Perdido", Artist: "Legião Urbana", Content: "old"}
	require.NoError(t, songs.Create(context.Background(), existing))

	im := importer.New(importer.NewRegistry(), stubParser{}, songs, importer.Options{RowDelay: time.Millisecond})
	text := urlTempo + "\n" + urlEduardo + "\thttps://youtu.be/x\nhttps://www.cifraclub.com.br/x/sumiu/\n"

	t.Run("reports duplicates", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runImport(newTestCommand(&out), im, text, cifraclub.DefaultHost, false))

		lines := out.String()
		assert.Contains(t, lines, "exists  "+urlTempo)
		assert.Contains(t, lines, "done    "+urlEduardo)
		assert.Contains(t, lines, "Failed to fetch: 404")
		assert.Contains(t, lines, "1 done, 1 exists, 1 error")
		assert.Contains(t, lines, "--overwrite")

		song, err := songs.Get(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "old", song.Content)
	})

	t.Run("overwrite replaces the stored song", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runImport(newTestCommand(&out), im, urlTempo, cifraclub.DefaultHost, true))

		assert.Contains(t, out.String(), "1 done, 0 exists, 0 error")

		song, err := songs.Get(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Am G\nTodos os dias", song.Content)
	})

	t.Run("no links", func(t *testing.T) {
		var out bytes.Buffer
		err := runImport(newTestCommand(&out), im, "nothing to see", cifraclub.DefaultHost, false)
		assert.ErrorContains(t, err, "no cifraclub.com.br links found")
	})
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("from stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	path := filepath.Join(t.TempDir(), "links.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0644))
	got, err = readInput(strings.NewReader("ignored"), []string{path})
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = readInput(nil, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestDuplicateChoice(t *testing.T) {
	assert.Equal(t, models.DecisionKeepExisting, duplicateChoice(true)(models.Song{}, models.ParsedCifra{}))
	assert.Equal(t, models.DecisionAdoptParsed, duplicateChoice(false)(models.Song{}, models.ParsedCifra{}))
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte("Am"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, zap.NewNop(), func(content string) {
			changes <- content
		})
	}()

	// keep writing until the watcher is up and reports a change
	var got string
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(path, []byte("Am G\r\nla"), 0644))
		select {
		case got = <-changes:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "Am G\nla", got)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunEdit(t *testing.T) {
	songs := setupSongs(t)
	song := &models.Song{Title: "Tempo Perdido", Artist: "Legião Urbana", Content: "Am"}
	require.NoError(t, songs.Create(context.Background(), song))

	out := &syncBuffer{}
	m := session.New(songs, stubParser{}, session.Options{
		Debounce: 10 * time.Millisecond,
		OnSave: func(s models.Song) {
			out.Write([]byte("saved\n"))
		},
	})
	defer m.Close()

	path := filepath.Join(t.TempDir(), "sheet.txt")
	opts := editOptions{id: song.ID, file: path}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runEdit(ctx, m, opts, out, zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "editing")
	}, 2*time.Second, 5*time.Millisecond)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Am", string(data))

	n := 0
	require.Eventually(t, func() bool {
		n++
		require.NoError(t, os.WriteFile(path, []byte("Am G\nv"+strings.Repeat("i", n)), 0644))
		stored, err := songs.Get(context.Background(), song.ID)
		require.NoError(t, err)
		return strings.HasPrefix(stored.Content, "Am G\nv")
	}, 3*time.Second, 30*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "saved")
}

func TestRunEdit_ParsesURL(t *testing.T) {
	songs := setupSongs(t)
	m := session.New(songs, stubParser{}, session.Options{Debounce: 10 * time.Millisecond})
	defer m.Close()

	path := filepath.Join(t.TempDir(), "sheet.txt")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runEdit(ctx, m, editOptions{url: urlEduardo, file: path}, out, zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "editing")
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "C F\nQuem um dia", string(data))

	// the final flush stores the parsed sheet
	found, err := songs.FindByTitleAndArtist(context.Background(), "Eduardo e Mônica", "Legião Urbana")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, urlEduardo, found.CifraClubURL)
}
