package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
)

// ErrDuplicateID is returned when an insert reuses an existing identifier.
var ErrDuplicateID = errors.New("duplicate declaration id")

// DeclarationRepo implements DeclarationRepository using PostgreSQL.
// Columns use the flat snake_case schema; the mapping to model.Document is explicit here.
type DeclarationRepo struct{ db *DB }

// NewDeclarationRepo constructs a declaration repository.
func NewDeclarationRepo(db *DB) *DeclarationRepo { return &DeclarationRepo{db: db} }

// Create inserts a row and fills rec.CreatedAt from the database clock.
func (r *DeclarationRepo) Create(ctx context.Context, rec *model.Record) error {
	const q = `
INSERT INTO declarations (id, title, subtitle, message, footer, images, music_enabled, music_url,
  music_start_time, music_duration, background_color, text_color, animation, occasion,
  button_text_yes, button_text_no, start_date, show_countdown)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
RETURNING created_at`
	d := rec.Document
	images := d.Images
	if images == nil {
		images = []string{}
	}
	err := r.db.Pool.QueryRow(ctx, q,
		rec.ID, d.Title, d.Subtitle, d.Message, d.Footer, images, d.MusicEnabled, d.MusicURL,
		d.MusicStartTime, d.MusicDuration, d.BackgroundColor, d.TextColor, string(d.Animation), string(d.Occasion),
		d.ButtonTextYes, d.ButtonTextNo, d.StartDate, d.ShowCountdown,
	).Scan(&rec.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	return err
}

// Get selects a declaration by id.
func (r *DeclarationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Record, error) {
	const q = `
SELECT id, title, subtitle, message, footer, images, music_enabled, music_url,
  music_start_time, music_duration, background_color, text_color, animation, occasion,
  button_text_yes, button_text_no, start_date, show_countdown, created_at
FROM declarations WHERE id=$1`
	var (
		rec                 model.Record
		d                   = &rec.Document
		animation, occasion string
	)
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&rec.ID, &d.Title, &d.Subtitle, &d.Message, &d.Footer, &d.Images, &d.MusicEnabled, &d.MusicURL,
		&d.MusicStartTime, &d.MusicDuration, &d.BackgroundColor, &d.TextColor, &animation, &occasion,
		&d.ButtonTextYes, &d.ButtonTextNo, &d.StartDate, &d.ShowCountdown, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	d.Animation = model.Animation(animation)
	d.Occasion = model.Occasion(occasion)
	if d.Images == nil {
		d.Images = []string{}
	}
	return &rec, nil
}
