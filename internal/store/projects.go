package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

type ProjectStore struct {
	db *pgxpool.Pool
}

func NewProjectStore(db *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	slides, _ := json.Marshal(p.Slides)
	overlays, _ := json.Marshal(p.Overlays)

	err := s.db.QueryRow(ctx, `
		INSERT INTO projects (id, title, slides, overlays, audio_path, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, p.ID, p.Title, slides, overlays, p.AudioPath, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.AlreadyExists("project", p.ID)
		}
		return errors.Wrap(err, "projects.create", "db insert failed")
	}
	return nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	var (
		p                models.Project
		slides, overlays []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, title, slides, overlays, COALESCE(audio_path,''), COALESCE(video_path,''),
			COALESCE(thumbnail_path,''), status, COALESCE(message,''), created_at, updated_at
		FROM projects WHERE id=$1
	`, id).Scan(&p.ID, &p.Title, &slides, &overlays, &p.AudioPath, &p.VideoPath,
		&p.ThumbnailPath, &p.Status, &p.Message, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, errors.NotFound("project", id)
	}

	_ = json.Unmarshal(slides, &p.Slides)
	_ = json.Unmarshal(overlays, &p.Overlays)
	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, status, COALESCE(video_path,''), COALESCE(thumbnail_path,''), created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "projects.list", "db query failed")
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Status, &p.VideoPath, &p.ThumbnailPath, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "projects.list", "row scan failed")
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdateComposition replaces the slides and overlays of a draft project.
func (s *ProjectStore) UpdateComposition(ctx context.Context, id string, slides []models.Slide, overlays []models.TextOverlay) error {
	rawSlides, _ := json.Marshal(slides)
	rawOverlays, _ := json.Marshal(overlays)

	cmd, err := s.db.Exec(ctx, `
		UPDATE projects SET slides=$2, overlays=$3, updated_at=now()
		WHERE id=$1
	`, id, rawSlides, rawOverlays)
	if err != nil {
		return errors.Wrap(err, "projects.update", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("project", id)
	}
	return nil
}

// SetAudio attaches a background audio track.
func (s *ProjectStore) SetAudio(ctx context.Context, id, audioPath string) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE projects SET audio_path=$2, updated_at=now()
		WHERE id=$1
	`, id, audioPath)
	if err != nil {
		return errors.Wrap(err, "projects.audio", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("project", id)
	}
	return nil
}

// SetStatus moves the project through its render lifecycle. Message holds
// the accumulated human-readable notes (skipped slides, failure reasons).
func (s *ProjectStore) SetStatus(ctx context.Context, id, status, message string) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE projects SET status=$2, message=$3, updated_at=now()
		WHERE id=$1
	`, id, status, message)
	if err != nil {
		return errors.Wrap(err, "projects.status", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("project", id)
	}
	return nil
}

// SetArtifacts records the rendered output paths and marks the project ready.
func (s *ProjectStore) SetArtifacts(ctx context.Context, id, videoPath, thumbnailPath, message string) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE projects SET video_path=$2, thumbnail_path=$3, status=$4, message=$5, updated_at=now()
		WHERE id=$1
	`, id, videoPath, thumbnailPath, models.ProjectReady, message)
	if err != nil {
		return errors.Wrap(err, "projects.artifacts", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("project", id)
	}
	return nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) (videoPath, thumbnailPath, audioPath string, err error) {
	err = s.db.QueryRow(ctx, `
		DELETE FROM projects WHERE id=$1
		RETURNING COALESCE(video_path,''), COALESCE(thumbnail_path,''), COALESCE(audio_path,'')
	`, id).Scan(&videoPath, &thumbnailPath, &audioPath)
	if err != nil {
		return "", "", "", errors.NotFound("project", id)
	}
	return videoPath, thumbnailPath, audioPath, nil
}
