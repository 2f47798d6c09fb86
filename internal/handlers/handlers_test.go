package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
	"github.com/AndrewDonelson/viola-flow/internal/cifraclub"
	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/services"
	"github.com/AndrewDonelson/viola-flow/internal/worker"
)

const (
	urlTempo   = "https://www.cifraclub.com.br/legiao-urbana/tempo-perdido/"
	urlEduardo = "https://www.cifraclub.com.br/legiao-urbana/eduardo-e-monica/"
	urlMissing = "https://www.cifraclub.com.br/x/sumiu/"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubParser struct {
	mu    sync.Mutex
	pages map[string]models.ParsedCifra
}

func newStubParser() *stubParser {
	return &stubParser{pages: map[string]models.ParsedCifra{
		urlTempo: {
			Title: "Tempo Perdido", Artist: "Legião Urbana", Tone: "Am",
			Content: "Am G\nTodos os dias quando acordo",
		},
		urlEduardo: {
			Title: "Eduardo e Mônica", Artist: "Legião Urbana", Tone: "C",
			Content: "C F\nQuem um dia irá dizer",
		},
	}}
}

func (p *stubParser) Accepts(u string) bool {
	return cifraclub.IsSourceURL(u, cifraclub.DefaultHost)
}

func (p *stubParser) Parse(_ context.Context, u string) (*models.ParsedCifra, error) {
	if !p.Accepts(u) {
		return nil, apperr.InvalidInput("Invalid CifraClub URL")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	page, ok := p.pages[u]
	if !ok {
		return nil, apperr.Fetch(http.StatusNotFound, nil)
	}
	page.CifraClubURL = u
	return &page, nil
}

type testServer struct {
	router      *gin.Engine
	songs       *database.SongRepository
	importer    *importer.Importer
	broadcaster *services.ProgressBroadcaster
	logsDir     string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	songs, err := database.NewSongRepository(context.Background(), store)
	require.NoError(t, err)

	s := &testServer{
		songs:       songs,
		broadcaster: services.NewProgressBroadcaster(nil),
		logsDir:     t.TempDir(),
	}
	parser := newStubParser()
	s.importer = importer.New(importer.NewRegistry(), parser, songs, importer.Options{
		RowDelay:    time.Millisecond,
		ClearDelay:  time.Hour,
		LogsDir:     s.logsDir,
		Broadcaster: s.broadcaster,
	})

	w := worker.NewWorker(s.importer, 4, nil)
	go w.Start()
	t.Cleanup(w.Stop)

	s.router = NewRouter(Deps{
		Songs:          songs,
		Preferences:    database.NewPreferencesRepository(store),
		Parser:         parser,
		Importer:       s.importer,
		Queue:          w,
		Broadcaster:    s.broadcaster,
		SourceHost:     cifraclub.DefaultHost,
		LogsDir:        s.logsDir,
		AllowedOrigins: []string{"*"},
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, w.Body.String())
	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, code, body.Error)
	assert.NotEmpty(t, body.Message)
}

func TestHealth(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"viola-flow"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperr.NotFound("Song not found"), http.StatusNotFound, "NOT_FOUND"},
		{"fetch", apperr.Fetch(503, nil), http.StatusInternalServerError, "FETCH_ERROR"},
		{"upstream", apperr.Upstream("bad gateway", nil), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"plain error", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assertError(t, w, tt.status, tt.code)
			assert.True(t, c.IsAborted())
			require.Len(t, c.Errors, 1)
			assert.Equal(t, tt.code, apperr.CodeOf(c.Errors.Last().Err))
		})
	}
}

func TestParseCifra(t *testing.T) {
	s := setupServer(t)

	t.Run("success wraps the payload", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/parse-cifra?url="+urlTempo, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool               `json:"success"`
			Data    models.ParsedCifra `json:"data"`
		}
		decode(t, w, &body)
		assert.True(t, body.Success)
		assert.Equal(t, "Tempo Perdido", body.Data.Title)
		assert.Equal(t, urlTempo, body.Data.CifraClubURL)
	})

	t.Run("foreign url is invalid input", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/parse-cifra?url=https://example.com/x", nil)
		assertError(t, w, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("missing url is invalid input", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/parse-cifra", nil)
		assertError(t, w, http.StatusBadRequest, "INVALID_INPUT")
	})

	t.Run("fetch failure carries the status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/parse-cifra?url="+urlMissing, nil)
		assertError(t, w, http.StatusInternalServerError, "FETCH_ERROR")
		assert.Contains(t, w.Body.String(), "Failed to fetch: 404")
	})
}

func TestChords(t *testing.T) {
	s := setupServer(t)

	t.Run("svg", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/chords/Am/svg?theme=dark", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<svg")
		assert.Contains(t, w.Body.String(), ">Am<")
	})

	t.Run("unknown chord renders a placeholder", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/chords/Xyz/svg", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ">?</text>")
	})

	t.Run("sharp chord shape", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/chords/C%23m", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"name":"C#m"`)
	})

	t.Run("alias is normalized", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/chords/Cmaj7", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"name":"C7M"`)
	})

	t.Run("unknown shape is not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/chords/Xyz", nil)
		assertError(t, w, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("list", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/chords", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Chords []string `json:"chords"`
		}
		decode(t, w, &body)
		assert.Contains(t, body.Chords, "Am")
	})
}

func TestPreferences(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prefs models.Preferences
	decode(t, w, &prefs)
	assert.Equal(t, "light", prefs.Theme)

	w = s.do(t, http.MethodPut, "/api/preferences", map[string]interface{}{
		"theme":            "dark",
		"leftPanelWidth":   320,
		"chordsPanelWidth": 200,
		"lastSongId":       7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &prefs)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, 320, prefs.LeftPanelWidth)
	require.NotNil(t, prefs.LastSongID)
	assert.Equal(t, int64(7), *prefs.LastSongID)

	w = s.do(t, http.MethodPut, "/preferences", map[string]interface{}{"theme": "neon"})
	assertError(t, w, http.StatusBadRequest, "INVALID_INPUT")
}
