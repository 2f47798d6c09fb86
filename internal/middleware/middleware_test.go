package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when none is sent", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/songs", nil)

		RequestID()(c)

		id := GetRequestID(c)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/songs", nil)
		c.Request.Header.Set(RequestIDHeader, "abc-123")

		RequestID()(c)

		assert.Equal(t, "abc-123", GetRequestID(c))
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("wrong type reads as empty", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(requestIDKey, 42)
		assert.Empty(t, GetRequestID(c))
	})
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		level   zapcore.Level
		message string
	}{
		{"success", http.StatusOK, zapcore.InfoLevel, "HTTP request completed"},
		{"client error", http.StatusNotFound, zapcore.WarnLevel, "HTTP request failed with client error"},
		{"server error", http.StatusInternalServerError, zapcore.ErrorLevel, "HTTP request failed with server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := newObserved()
			router := gin.New()
			router.Use(RequestID(), Logging(log))
			router.GET("/songs", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/songs?x=1", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)

			fields := entry.ContextMap()
			assert.Equal(t, "/songs", fields["path"])
			assert.Equal(t, "x=1", fields["query"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, w.Header().Get(RequestIDHeader), fields["request_id"])
		})
	}
}

func TestLogging_ErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"coded client error", apperr.NotFound("Song not found"), http.StatusNotFound, apperr.CodeNotFound},
		{"plain server error", assert.AnError, http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := newObserved()
			router := gin.New()
			router.Use(Logging(log))
			router.GET("/songs", func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Status(tt.status)
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/songs", nil))

			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.code, logs.All()[0].ContextMap()["error_code"])
		})
	}

	t.Run("absent without errors", func(t *testing.T) {
		log, logs := newObserved()
		router := gin.New()
		router.Use(Logging(log))
		router.GET("/songs", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/songs", nil))

		require.Equal(t, 1, logs.Len())
		assert.NotContains(t, logs.All()[0].ContextMap(), "error_code")
	})
}

func TestRecovery(t *testing.T) {
	log, logs := newObserved()
	router := gin.New()
	router.Use(RequestID(), Recovery(log))
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	assert.Equal(t, "Internal server error", body["message"])

	require.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	assert.Equal(t, "kaboom", logs.All()[0].ContextMap()["panic"])
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/songs", nil)

		CORS([]string{"*"})(c)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
		assert.False(t, c.IsAborted())
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/songs", nil)
		c.Request.Header.Set("Origin", "http://localhost:5173")

		CORS([]string{"http://localhost:5173"})(c)

		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no allow header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/songs", nil)
		c.Request.Header.Set("Origin", "http://evil.example")

		CORS([]string{"http://localhost:5173"})(c)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(nil))
		router.PUT("/songs/:id", func(c *gin.Context) {
			c.Status(http.StatusTeapot)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/songs/1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
