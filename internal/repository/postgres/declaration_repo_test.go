package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var columns = []string{
	"id", "title", "subtitle", "message", "footer", "images", "music_enabled", "music_url",
	"music_start_time", "music_duration", "background_color", "text_color", "animation", "occasion",
	"button_text_yes", "button_text_no", "start_date", "show_countdown", "created_at",
}

func sampleDoc() model.Document {
	d := model.Defaults(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	d.Images = []string{"https://example.com/1.jpg", "data:image/jpeg;base64,AAAA"}
	d.Occasion = model.OccasionAnniversary
	d.Animation = model.AnimationSparkles
	d.MusicEnabled = true
	d.MusicStartTime = 7.5
	d.MusicDuration = 42
	return d
}

func TestDeclarationRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	id := uuid.Must(uuid.NewV4())
	d := sampleDoc()
	created := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO declarations`).
		WithArgs(id, d.Title, d.Subtitle, d.Message, d.Footer, d.Images, d.MusicEnabled, d.MusicURL,
			d.MusicStartTime, d.MusicDuration, d.BackgroundColor, d.TextColor, "sparkles", "anniversary",
			d.ButtonTextYes, d.ButtonTextNo, d.StartDate, d.ShowCountdown).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	rec := &model.Record{ID: id, Document: d}
	require.NoError(t, r.Create(context.Background(), rec))
	require.Equal(t, created, rec.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepo_Create_NilImagesStoredEmpty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	id := uuid.Must(uuid.NewV4())
	d := sampleDoc()
	d.Images = nil

	mock.ExpectQuery(`INSERT INTO declarations`).
		WithArgs(id, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), []string{},
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	require.NoError(t, r.Create(context.Background(), &model.Record{ID: id, Document: d}))
}

func TestDeclarationRepo_Create_DuplicateID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	mock.ExpectQuery(`INSERT INTO declarations`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(context.Background(), &model.Record{ID: uuid.Must(uuid.NewV4()), Document: sampleDoc()})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestDeclarationRepo_Create_DBError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`INSERT INTO declarations`).WillReturnError(boom)

	err := r.Create(context.Background(), &model.Record{ID: uuid.Must(uuid.NewV4()), Document: sampleDoc()})
	require.ErrorIs(t, err, boom)
}

func TestDeclarationRepo_Get_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	id := uuid.Must(uuid.NewV4())
	d := sampleDoc()
	created := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM declarations WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			id, d.Title, d.Subtitle, d.Message, d.Footer, d.Images, d.MusicEnabled, d.MusicURL,
			d.MusicStartTime, d.MusicDuration, d.BackgroundColor, d.TextColor, "sparkles", "anniversary",
			d.ButtonTextYes, d.ButtonTextNo, d.StartDate, d.ShowCountdown, created,
		))

	rec, err := r.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, rec.ID)
	require.Equal(t, created, rec.CreatedAt)
	require.Equal(t, d, rec.Document)
}

func TestDeclarationRepo_Get_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`SELECT .* FROM declarations WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Get(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeclarationRepo_Get_DBError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDeclarationRepo(db)

	mock.ExpectQuery(`SELECT .* FROM declarations`).WillReturnError(context.DeadlineExceeded)

	_, err := r.Get(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}
