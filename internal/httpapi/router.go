package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"shortforge/internal/config"
	"shortforge/internal/httpapi/handlers"
	"shortforge/internal/httpkit"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/pkg/middleware"
)

type Deps struct {
	Cfg  *config.Config
	Pool *pgxpool.Pool
	RDB  *redis.Client
	Log  *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(d.Log))
	r.Use(middleware.Recovery(d.Log))

	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   d.Cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Cfg:  d.Cfg,
		Pool: d.Pool,
		RDB:  d.RDB,
		Log:  d.Log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- SOURCE VIDEOS ----
	r.Post("/videos", h.PostVideo)
	r.Get("/videos", h.ListVideos)
	r.Get("/videos/trending", h.GetTrending)
	r.Get("/videos/{videoId}", h.GetVideo)
	r.Delete("/videos/{videoId}", h.DeleteVideo)

	// ---- SHORTS ----
	r.Post("/shorts", h.PostShort)
	r.Get("/shorts", h.ListShorts)
	r.Get("/shorts/{shortId}", h.GetShort)
	r.Get("/shorts/{shortId}/content", h.StreamShort)
	r.Delete("/shorts/{shortId}", h.DeleteShort)
	r.Post("/shorts/{shortId}/subtitles", h.PostSubtitles)
	r.Post("/shorts/{shortId}/publish/youtube", h.PublishYouTube)
	r.Post("/shorts/{shortId}/publish/instagram", h.PublishInstagram)

	// ---- SLIDESHOW PROJECTS ----
	r.Post("/projects", h.PostProject)
	r.Get("/projects", h.ListProjects)
	r.Get("/projects/{projectId}", h.GetProject)
	r.Patch("/projects/{projectId}", h.PatchProject)
	r.Delete("/projects/{projectId}", h.DeleteProject)
	r.Post("/projects/{projectId}/images", h.PostProjectImage)
	r.Post("/projects/{projectId}/audio", h.PostProjectAudio)
	r.Post("/projects/{projectId}/render", h.PostProjectRender)
	r.Post("/projects/{projectId}/captions", h.PostProjectCaptions)
	r.Get("/projects/{projectId}/content", h.StreamProject)

	// ---- TASK PROGRESS ----
	r.Get("/tasks/{taskId}", h.GetTask)

	// ---- MEDIA ----
	// Rendered artifacts and uploads, served by their stored relative
	// paths. Instagram publishing fetches reels through this route.
	fs := http.StripPrefix("/media/", http.FileServer(http.Dir(d.Cfg.MediaRoot)))
	r.Get("/media/*", fs.ServeHTTP)

	return r
}
