package worker

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"shortforge/internal/config"
	"shortforge/internal/pkg/logger"
)

type Deps struct {
	Cfg  *config.Config
	Pool *pgxpool.Pool
	RDB  *redis.Client
	Log  *logger.Logger
}
