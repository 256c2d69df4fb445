package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

type ShortStore struct {
	db *pgxpool.Pool
}

func NewShortStore(db *pgxpool.Pool) *ShortStore {
	return &ShortStore{db: db}
}

func (s *ShortStore) Create(ctx context.Context, sh *models.Short) error {
	tags, _ := json.Marshal(sh.Tags)
	hashtags, _ := json.Marshal(sh.SocialHashtags)

	err := s.db.QueryRow(ctx, `
		INSERT INTO shorts (id, video_id, title, description, tags, video_path, thumbnail_path,
			start_seconds, end_seconds, social_title, social_description, social_hashtags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`, sh.ID, sh.VideoID, sh.Title, sh.Description, tags, sh.VideoPath, sh.ThumbnailPath,
		sh.StartSeconds, sh.EndSeconds, sh.SocialTitle, sh.SocialDescription, hashtags).Scan(&sh.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.AlreadyExists("short", sh.ID)
		}
		return errors.Wrap(err, "shorts.create", "db insert failed")
	}
	return nil
}

func (s *ShortStore) Get(ctx context.Context, id string) (*models.Short, error) {
	var (
		sh             models.Short
		tags, hashtags []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, video_id, title, COALESCE(description,''), tags, video_path, thumbnail_path,
			start_seconds, end_seconds, COALESCE(social_title,''), COALESCE(social_description,''),
			social_hashtags, created_at
		FROM shorts WHERE id=$1
	`, id).Scan(&sh.ID, &sh.VideoID, &sh.Title, &sh.Description, &tags, &sh.VideoPath, &sh.ThumbnailPath,
		&sh.StartSeconds, &sh.EndSeconds, &sh.SocialTitle, &sh.SocialDescription, &hashtags, &sh.CreatedAt)
	if err != nil {
		return nil, errors.NotFound("short", id)
	}

	_ = json.Unmarshal(tags, &sh.Tags)
	_ = json.Unmarshal(hashtags, &sh.SocialHashtags)
	return &sh, nil
}

func (s *ShortStore) List(ctx context.Context, videoID string) ([]models.Short, error) {
	query := `
		SELECT id, video_id, title, COALESCE(description,''), video_path, thumbnail_path,
			start_seconds, end_seconds, created_at
		FROM shorts`
	args := []any{}
	if videoID != "" {
		query += ` WHERE video_id=$1`
		args = append(args, videoID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "shorts.list", "db query failed")
	}
	defer rows.Close()

	var out []models.Short
	for rows.Next() {
		var sh models.Short
		if err := rows.Scan(&sh.ID, &sh.VideoID, &sh.Title, &sh.Description, &sh.VideoPath,
			&sh.ThumbnailPath, &sh.StartSeconds, &sh.EndSeconds, &sh.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "shorts.list", "row scan failed")
		}
		out = append(out, sh)
	}
	return out, nil
}

// SwapVideoPath replaces both artifact paths after a successful burn-in.
// The previous paths are returned so the caller may clean them up.
func (s *ShortStore) SwapVideoPath(ctx context.Context, id, newVideoPath, newThumbnailPath string) (oldVideoPath, oldThumbnailPath string, err error) {
	err = s.db.QueryRow(ctx, `
		UPDATE shorts SET video_path=$2, thumbnail_path=$3
		WHERE id=$1
		RETURNING
			(SELECT video_path FROM shorts WHERE id=$1),
			(SELECT COALESCE(thumbnail_path,'') FROM shorts WHERE id=$1)
	`, id, newVideoPath, newThumbnailPath).Scan(&oldVideoPath, &oldThumbnailPath)
	if err != nil {
		return "", "", errors.NotFound("short", id)
	}
	return oldVideoPath, oldThumbnailPath, nil
}

// SetSocialCopy fills in the AI-suggested social fields.
func (s *ShortStore) SetSocialCopy(ctx context.Context, id, title, description string, hashtags []string) error {
	raw, _ := json.Marshal(hashtags)
	cmd, err := s.db.Exec(ctx, `
		UPDATE shorts SET social_title=$2, social_description=$3, social_hashtags=$4
		WHERE id=$1
	`, id, title, description, raw)
	if err != nil {
		return errors.Wrap(err, "shorts.social", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("short", id)
	}
	return nil
}

func (s *ShortStore) Delete(ctx context.Context, id string) (videoPath, thumbnailPath string, err error) {
	err = s.db.QueryRow(ctx, `
		DELETE FROM shorts WHERE id=$1
		RETURNING video_path, thumbnail_path
	`, id).Scan(&videoPath, &thumbnailPath)
	if err != nil {
		return "", "", errors.NotFound("short", id)
	}
	return videoPath, thumbnailPath, nil
}
