package handlers

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/services"
)

func waitIdle(t *testing.T, s *testServer, batchID string) models.ImportBatch {
	t.Helper()

	var batch models.ImportBatch
	require.Eventually(t, func() bool {
		b, err := s.importer.Registry().Get(batchID)
		if err != nil {
			return false
		}
		batch = b
		return !b.Running
	}, 2*time.Second, 5*time.Millisecond)
	return batch
}

func startImport(t *testing.T, s *testServer, body interface{}) models.ImportBatch {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/imports", body)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var batch models.ImportBatch
	decode(t, w, &batch)
	return waitIdle(t, s, batch.ID)
}

func TestImports_CreateFromPaste(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/imports", map[string]string{
		"text": "Tempo Perdido\t" + urlTempo + "\thttps://youtu.be/override\n\n" + urlEduardo + "\n",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var started models.ImportBatch
	decode(t, w, &started)
	assert.True(t, started.Running)
	assert.Equal(t, 2, started.Progress.Total)
	require.Len(t, started.Rows, 2)

	batch := waitIdle(t, s, started.ID)
	for _, row := range batch.Rows {
		assert.Equal(t, models.ImportDone, row.Status, row.CifraURL)
		assert.NotNil(t, row.SongID)
	}
	assert.Equal(t, 2, batch.Progress.Current)
	assert.NotNil(t, batch.CompletedAt)

	var songs []models.Song
	decode(t, s.do(t, http.MethodGet, "/api/songs", nil), &songs)
	require.Len(t, songs, 2)

	var tempo models.Song
	decode(t, s.do(t, http.MethodGet, "/api/songs/find?title=Tempo%20Perdido&artist=Legi%C3%A3o%20Urbana", nil), &tempo)
	assert.Equal(t, "https://www.youtube.com/watch?v=override", tempo.YoutubeURL)
	assert.Equal(t, urlTempo, tempo.CifraClubURL)
}

func TestImports_CreateRejectsEmpty(t *testing.T) {
	s := setupServer(t)

	assertError(t, s.do(t, http.MethodPost, "/api/imports", map[string]string{"text": "nothing here"}),
		http.StatusBadRequest, "INVALID_INPUT")
	assertError(t, s.do(t, http.MethodPost, "/api/imports", map[string]interface{}{
		"rows": []map[string]string{{"youtubeUrl": "https://youtu.be/x"}},
	}), http.StatusBadRequest, "INVALID_INPUT")

	// rows that no parser accepts leave nothing behind
	assertError(t, s.do(t, http.MethodPost, "/api/imports", map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": "https://example.com/song"}},
	}), http.StatusBadRequest, "INVALID_INPUT")

	var list []models.ImportBatch
	decode(t, s.do(t, http.MethodGet, "/api/imports", nil), &list)
	assert.Empty(t, list)
}

func TestImports_BlankRowIsKeptAndSkipped(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/imports", map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": urlTempo}, {"cifraUrl": ""}},
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var started models.ImportBatch
	decode(t, w, &started)
	require.Len(t, started.Rows, 2)
	assert.Equal(t, 1, started.Progress.Total)

	batch := waitIdle(t, s, started.ID)
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, models.ImportDone, batch.Rows[0].Status)
	assert.Equal(t, models.ImportPending, batch.Rows[1].Status)
	assert.Nil(t, batch.Rows[1].SongID)

	// blank rows can also be appended to an idle batch
	w = s.do(t, http.MethodPost, "/api/imports/"+batch.ID+"/rows", map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": ""}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &batch)
	assert.Len(t, batch.Rows, 3)
}

func TestImports_ExistingSongOverwrite(t *testing.T) {
	s := setupServer(t)
	existing := createSong(t, s, "tempo perdido", "LEGIÃO URBANA", "old content")

	batch := startImport(t, s, map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": urlTempo}},
	})
	require.Len(t, batch.Rows, 1)
	row := batch.Rows[0]
	require.Equal(t, models.ImportExists, row.Status)
	require.NotNil(t, row.ExistingSongID)
	assert.Equal(t, existing.ID, *row.ExistingSongID)
	require.NotNil(t, row.ParsedData)
	assert.Equal(t, "Tempo Perdido", row.ParsedData.Title)

	resolvePath := "/api/imports/" + batch.ID + "/rows/" + row.ID + "/resolve"

	assertError(t, s.do(t, http.MethodPost, resolvePath, map[string]string{"decision": "merge"}),
		http.StatusBadRequest, "INVALID_INPUT")
	assertError(t, s.do(t, http.MethodPost, resolvePath, map[string]string{}),
		http.StatusBadRequest, "INVALID_INPUT")

	w := s.do(t, http.MethodPost, resolvePath, map[string]string{"decision": "overwrite"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resolved models.ImportBatch
	decode(t, w, &resolved)
	assert.Equal(t, models.ImportDone, resolved.Rows[0].Status)

	var song models.Song
	decode(t, s.do(t, http.MethodGet, "/api/songs/"+strconv.FormatInt(existing.ID, 10), nil), &song)
	assert.Equal(t, "Tempo Perdido", song.Title)
	assert.Equal(t, "Am G\nTodos os dias quando acordo", song.Content)
	assert.Equal(t, urlTempo, song.CifraClubURL)

	// the row is no longer a duplicate
	assertError(t, s.do(t, http.MethodPost, resolvePath, map[string]string{"decision": "overwrite"}),
		http.StatusConflict, "CONFLICT")
}

func TestImports_ExistingSongSkip(t *testing.T) {
	s := setupServer(t)
	createSong(t, s, "Tempo Perdido", "Legião Urbana", "old content")

	batch := startImport(t, s, map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": urlTempo}, {"cifraUrl": urlEduardo}},
	})
	require.Equal(t, models.ImportExists, batch.Rows[0].Status)
	require.Equal(t, models.ImportDone, batch.Rows[1].Status)

	w := s.do(t, http.MethodPost, "/imports/"+batch.ID+"/rows/"+batch.Rows[0].ID+"/resolve",
		map[string]string{"decision": "skip"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resolved models.ImportBatch
	decode(t, w, &resolved)
	require.Len(t, resolved.Rows, 1)
	assert.Equal(t, urlEduardo, resolved.Rows[0].CifraURL)
}

func TestImports_RowsStartAndDelete(t *testing.T) {
	s := setupServer(t)

	batch := startImport(t, s, map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": urlMissing}},
	})
	require.Equal(t, models.ImportError, batch.Rows[0].Status)
	assert.Equal(t, "Failed to fetch: 404", batch.Rows[0].Error)

	base := "/api/imports/" + batch.ID

	w := s.do(t, http.MethodPost, base+"/rows", map[string]string{"text": urlTempo})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var grown models.ImportBatch
	decode(t, w, &grown)
	require.Len(t, grown.Rows, 2)
	assert.Equal(t, models.ImportPending, grown.Rows[1].Status)
	assert.False(t, grown.Running)

	w = s.do(t, http.MethodDelete, base+"/rows/"+grown.Rows[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertError(t, s.do(t, http.MethodDelete, base+"/rows/nope", nil), http.StatusNotFound, "NOT_FOUND")

	w = s.do(t, http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	done := waitIdle(t, s, batch.ID)
	require.Len(t, done.Rows, 1)
	assert.Equal(t, models.ImportDone, done.Rows[0].Status)

	w = s.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertError(t, s.do(t, http.MethodGet, base, nil), http.StatusNotFound, "NOT_FOUND")
	assertError(t, s.do(t, http.MethodDelete, base, nil), http.StatusNotFound, "NOT_FOUND")
	assertError(t, s.do(t, http.MethodPost, base+"/start", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestImports_Log(t *testing.T) {
	s := setupServer(t)

	batch := startImport(t, s, map[string]interface{}{
		"rows": []map[string]string{{"cifraUrl": urlTempo}},
	})

	require.Eventually(t, func() bool {
		w := s.do(t, http.MethodGet, "/api/imports/"+batch.ID+"/log", nil)
		return w.Code == http.StatusOK && strings.Contains(w.Body.String(), "#1 "+urlTempo)
	}, 2*time.Second, 10*time.Millisecond)

	w := s.do(t, http.MethodGet, "/api/imports/"+batch.ID+"/log", nil)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "IMPORT LOG")

	assertError(t, s.do(t, http.MethodGet, "/api/imports/not-a-uuid/log", nil), http.StatusNotFound, "NOT_FOUND")
	assertError(t, s.do(t, http.MethodGet, "/api/imports/"+uuid.NewString()+"/log", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestImports_Stream(t *testing.T) {
	s := setupServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/imports/stream?batchId=wanted")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "" && data != "":
				return event, data
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	event, _ := readEvent()
	require.Equal(t, "connected", event)
	assert.Equal(t, 1, s.broadcaster.ClientCount())

	s.broadcaster.Broadcast(services.ImportEvent{BatchID: "other", Status: models.ImportDone})
	s.broadcaster.Broadcast(services.ImportEvent{BatchID: "wanted", RowID: "r1", Status: models.ImportLoading, Total: 3})

	event, data := readEvent()
	assert.Equal(t, "import", event)
	assert.Contains(t, data, `"batchId":"wanted"`)
	assert.Contains(t, data, `"status":"loading"`)
	assert.Contains(t, data, `"total":3`)

	w := s.do(t, http.MethodGet, "/api/imports/stream/stats", nil)
	assert.Contains(t, w.Body.String(), `"connectedClients":1`)
}
