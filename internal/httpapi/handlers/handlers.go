// Package handlers implements the HTTP surface: source videos, shorts,
// slideshow projects, publishing and task progress.
package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"shortforge/internal/ai"
	"shortforge/internal/config"
	"shortforge/internal/mediafs"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/progress"
	"shortforge/internal/publish"
	"shortforge/internal/store"
	"shortforge/internal/worker/queue"
)

type Deps struct {
	Cfg  *config.Config
	Pool *pgxpool.Pool
	RDB  *redis.Client
	Log  *logger.Logger
}

type Handler struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	rdb       *redis.Client
	videos    *store.VideoStore
	shorts    *store.ShortStore
	projects  *store.ProjectStore
	tasks     *store.TaskStore
	accounts  *store.SocialStore
	media     *mediafs.Store
	progress  *progress.Store
	queue     *queue.RedisQueue
	suggester *ai.Suggester
	youtube   *publish.YouTube
	instagram *publish.Instagram
	trending  *publish.Trending
	log       *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log.WithComponent("http")
	accounts := store.NewSocialStore(d.Pool)
	return &Handler{
		cfg:       d.Cfg,
		pool:      d.Pool,
		rdb:       d.RDB,
		videos:    store.NewVideoStore(d.Pool),
		shorts:    store.NewShortStore(d.Pool),
		projects:  store.NewProjectStore(d.Pool),
		tasks:     store.NewTaskStore(d.Pool),
		accounts:  accounts,
		media:     mediafs.New(d.Cfg.MediaRoot),
		progress:  progress.NewStore(d.RDB, d.Cfg.ProgressTTL),
		queue:     queue.NewRedisQueue(d.RDB, d.Cfg.QueueKey),
		suggester: ai.NewSuggester(d.Cfg.GeminiAPIKey, d.Cfg.GeminiModel, log),
		youtube:   publish.NewYouTube(d.Cfg.YouTubeClientID, d.Cfg.YouTubeClientSecret, accounts, log),
		instagram: publish.NewInstagram(d.Cfg.InstagramAccessToken, d.Cfg.InstagramAccountID, log),
		trending:  publish.NewTrending(d.Cfg.YouTubeAPIKey),
		log:       log,
	}
}
