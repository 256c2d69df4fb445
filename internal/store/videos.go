// Package store persists videos, shorts, projects, social accounts and
// task rows in Postgres.
package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

type VideoStore struct {
	db *pgxpool.Pool
}

func NewVideoStore(db *pgxpool.Pool) *VideoStore {
	return &VideoStore{db: db}
}

// Upsert inserts or replaces the record for a source video.
func (s *VideoStore) Upsert(ctx context.Context, v *models.Video) error {
	suggestions, _ := json.Marshal(v.Suggestions)
	cues, _ := json.Marshal(v.Cues)

	err := s.db.QueryRow(ctx, `
		INSERT INTO videos (video_id, title, duration_seconds, file_path, thumbnail_path, suggestions, cues)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (video_id) DO UPDATE SET
			title = EXCLUDED.title,
			duration_seconds = EXCLUDED.duration_seconds,
			file_path = EXCLUDED.file_path,
			thumbnail_path = EXCLUDED.thumbnail_path,
			suggestions = EXCLUDED.suggestions,
			cues = EXCLUDED.cues
		RETURNING created_at
	`, v.VideoID, v.Title, v.Duration, v.FilePath, v.ThumbnailPath, suggestions, cues).Scan(&v.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "videos.upsert", "db upsert failed")
	}
	return nil
}

func (s *VideoStore) Get(ctx context.Context, videoID string) (*models.Video, error) {
	var (
		v                 models.Video
		suggestions, cues []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT video_id, title, duration_seconds, file_path, COALESCE(thumbnail_path,''), suggestions, cues, created_at
		FROM videos WHERE video_id=$1
	`, videoID).Scan(&v.VideoID, &v.Title, &v.Duration, &v.FilePath, &v.ThumbnailPath, &suggestions, &cues, &v.CreatedAt)
	if err != nil {
		return nil, errors.NotFound("video", videoID)
	}

	_ = json.Unmarshal(suggestions, &v.Suggestions)
	_ = json.Unmarshal(cues, &v.Cues)
	return &v, nil
}

func (s *VideoStore) List(ctx context.Context) ([]models.Video, error) {
	rows, err := s.db.Query(ctx, `
		SELECT video_id, title, duration_seconds, file_path, COALESCE(thumbnail_path,''), suggestions, created_at
		FROM videos
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "videos.list", "db query failed")
	}
	defer rows.Close()

	var out []models.Video
	for rows.Next() {
		var (
			v           models.Video
			suggestions []byte
		)
		if err := rows.Scan(&v.VideoID, &v.Title, &v.Duration, &v.FilePath, &v.ThumbnailPath, &suggestions, &v.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "videos.list", "row scan failed")
		}
		_ = json.Unmarshal(suggestions, &v.Suggestions)
		out = append(out, v)
	}
	return out, nil
}

// Delete removes the row and returns the stored file paths so the caller
// can remove the artifacts.
func (s *VideoStore) Delete(ctx context.Context, videoID string) (filePath, thumbnailPath string, err error) {
	err = s.db.QueryRow(ctx, `
		DELETE FROM videos WHERE video_id=$1
		RETURNING file_path, COALESCE(thumbnail_path,'')
	`, videoID).Scan(&filePath, &thumbnailPath)
	if err != nil {
		return "", "", errors.NotFound("video", videoID)
	}
	return filePath, thumbnailPath, nil
}
