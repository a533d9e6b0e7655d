package db

import (
	"context"
	"fmt"

	"github.com/bobarin/reelcut/internal/models"
	"github.com/google/uuid"
)

const sceneColumns = `
	scene_id, scene_type, duration_seconds, timestamp_label, description,
	prompt, visual_fx, style, status, image_url, media_url,
	text_content, text_bg, text_color, text_size, font_family, font_style,
	text_align, vertical_align, text_x, text_y
`

// ListScenes loads a project's scene sequence in timeline order. Rows with
// a non-positive duration or an unknown effect are rejected here so a bad
// record never reaches the editor state.
func (db *DB) ListScenes(ctx context.Context, projectID uuid.UUID) ([]models.Scene, error) {
	query := `
		SELECT ` + sceneColumns + `
		FROM scenes
		WHERE project_id = $1
		ORDER BY scene_id ASC
	`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		var s models.Scene
		if err := rows.Scan(
			&s.ID, &s.Type, &s.Duration, &s.Timestamp, &s.Description,
			&s.Prompt, &s.VisualFX, &s.Style, &s.Status, &s.ImageURL, &s.MediaURL,
			&s.TextContent, &s.TextBG, &s.TextColor, &s.TextSize, &s.FontFamily,
			&s.FontStyle, &s.TextAlign, &s.VerticalAlign, &s.TextX, &s.TextY,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		if s.Duration <= 0 {
			return nil, fmt.Errorf("scene %d has invalid duration %g", s.ID, s.Duration)
		}
		if s.VisualFX != "" && !s.VisualFX.Valid() {
			return nil, fmt.Errorf("scene %d has unknown effect %q", s.ID, s.VisualFX)
		}
		scenes = append(scenes, s)
	}

	return scenes, rows.Err()
}

// ReplaceScenes swaps a project's scene sequence atomically. The editor
// persists the full list on every committed mutation, so partial updates
// are never needed.
func (db *DB) ReplaceScenes(ctx context.Context, projectID uuid.UUID, scenes []models.Scene) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scenes WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear scenes: %w", err)
	}

	insert := `
		INSERT INTO scenes (project_id, ` + sceneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	for i := range scenes {
		s := &scenes[i]
		if _, err := tx.ExecContext(ctx, insert,
			projectID,
			s.ID, s.Type, s.Duration, s.Timestamp, s.Description,
			s.Prompt, s.VisualFX, s.Style, s.Status, s.ImageURL, s.MediaURL,
			s.TextContent, s.TextBG, s.TextColor, s.TextSize, s.FontFamily,
			s.FontStyle, s.TextAlign, s.VerticalAlign, s.TextX, s.TextY,
		); err != nil {
			return fmt.Errorf("failed to insert scene %d: %w", s.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET scene_count = $2, updated_at = NOW() WHERE id = $1`,
		projectID, len(scenes),
	); err != nil {
		return fmt.Errorf("failed to update scene count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scenes: %w", err)
	}
	return nil
}
