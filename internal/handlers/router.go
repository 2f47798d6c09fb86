package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/middleware"
	"github.com/AndrewDonelson/viola-flow/internal/services"
)

// ServiceName is reported by /health
const ServiceName = "viola-flow"

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Songs          *database.SongRepository
	Preferences    *database.PreferencesRepository
	Parser         CifraParser
	Importer       *importer.Importer
	Queue          BatchQueue
	Broadcaster    *services.ProgressBroadcaster
	SourceHost     string
	LogsDir        string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter builds the gin engine. Routes are served under /api and, for
// older clients, at the root as well.
func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// CORS must run before anything can abort
	router.Use(
		middleware.CORS(d.AllowedOrigins),
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
	)

	router.GET("/health", Health)

	h := routes{
		songs:       NewSongHandler(d.Songs),
		preferences: NewPreferencesHandler(d.Preferences),
		parse:       NewParseHandler(d.Parser),
		imports:     NewImportHandler(d.Importer, d.Queue, d.SourceHost, d.LogsDir),
		progress:    NewProgressHandler(d.Broadcaster, log),
		chords:      NewChordHandler(),
		dashboard:   NewDashboardHandler(d.Songs, d.Importer.Registry(), d.Broadcaster),
	}
	h.register(router.Group("/api"))
	h.register(&router.RouterGroup)

	return router
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
	})
}

type routes struct {
	songs       *SongHandler
	preferences *PreferencesHandler
	parse       *ParseHandler
	imports     *ImportHandler
	progress    *ProgressHandler
	chords      *ChordHandler
	dashboard   *DashboardHandler
}

func (h routes) register(r *gin.RouterGroup) {
	songs := r.Group("/songs")
	{
		songs.GET("", h.songs.GetAll)
		songs.POST("", h.songs.Create)
		songs.GET("/find", h.songs.Find)
		songs.GET("/:id", h.songs.GetByID)
		songs.PUT("/:id", h.songs.Update)
		songs.DELETE("/:id", h.songs.Delete)
		songs.GET("/:id/sheet", h.songs.GetSheet)
		songs.GET("/:id/chords", h.songs.GetChords)
	}

	r.GET("/parse-cifra", h.parse.Parse)

	imports := r.Group("/imports")
	{
		imports.GET("", h.imports.List)
		imports.POST("", h.imports.Create)
		imports.GET("/stream", h.progress.StreamProgress)
		imports.GET("/stream/stats", h.progress.GetStats)
		imports.GET("/:id", h.imports.Get)
		imports.DELETE("/:id", h.imports.Delete)
		imports.POST("/:id/start", h.imports.Start)
		imports.GET("/:id/log", h.imports.GetLog)
		imports.POST("/:id/rows", h.imports.AddRows)
		imports.DELETE("/:id/rows/:rowId", h.imports.RemoveRow)
		imports.POST("/:id/rows/:rowId/resolve", h.imports.Resolve)
	}

	chords := r.Group("/chords")
	{
		chords.GET("", h.chords.List)
		chords.GET("/:name", h.chords.GetShape)
		chords.GET("/:name/svg", h.chords.GetSVG)
	}

	r.GET("/preferences", h.preferences.Get)
	r.PUT("/preferences", h.preferences.Update)

	r.GET("/dashboard", h.dashboard.GetStats)
}
