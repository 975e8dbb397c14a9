package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/imaging"
	"github.com/and161185/lovepage/internal/model"
	"github.com/and161185/lovepage/internal/share"
)

type fakeStore struct {
	available bool
	createErr error
	creates   atomic.Int32
	saved     model.Document
}

func (f *fakeStore) Available() bool { return f.available }

func (f *fakeStore) Create(_ context.Context, doc model.Document) (string, error) {
	f.creates.Add(1)
	if f.createErr != nil {
		return "", f.createErr
	}
	f.saved = doc
	return "0b7e3f4c-58a9-4c55-8b4b-8e0f7d1e2a10", nil
}

func (f *fakeStore) Fetch(_ context.Context, id string) (model.Document, error) {
	if id != "0b7e3f4c-58a9-4c55-8b4b-8e0f7d1e2a10" {
		return model.Document{}, errs.ErrNotFound
	}
	return f.saved, nil
}

func newSvc(t *testing.T, st *fakeStore) *DeclarationServiceImpl {
	t.Helper()
	var store share.Store
	if st != nil {
		store = st
	}
	r, err := share.New("https://lovepage.example/", store)
	require.NoError(t, err)
	return NewDeclarationService(r, nil)
}

func pngOf(t *testing.T, w, h int) imaging.Source {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return imaging.Source{Data: buf.Bytes(), MIME: "image/png"}
}

func TestNewDeclarationService_ProfileFollowsTransport(t *testing.T) {
	t.Parallel()

	require.Equal(t, imaging.URLProfile, newSvc(t, nil).Profile())
	require.Equal(t, imaging.URLProfile, newSvc(t, &fakeStore{available: false}).Profile())
	require.Equal(t, imaging.RemoteProfile, newSvc(t, &fakeStore{available: true}).Profile())
}

func TestNewAndReset(t *testing.T) {
	t.Parallel()

	s := newSvc(t, nil)
	fixed := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	doc := s.New()
	require.Equal(t, model.Defaults(fixed), doc)

	doc.Title = "edited"
	doc.Images = nil
	s.Reset(&doc)
	require.Equal(t, model.Defaults(fixed), doc)
}

func TestSetImage_ReplaceAndAppend(t *testing.T) {
	t.Parallel()

	s := newSvc(t, nil)
	doc := s.New()
	doc.Images = doc.Images[:2]
	before := doc.Images

	require.NoError(t, s.SetImage(context.Background(), &doc, 0, pngOf(t, 40, 30), nil))
	require.Len(t, doc.Images, 2)
	require.True(t, strings.HasPrefix(doc.Images[0], "data:image/jpeg;base64,"))
	require.NotEqual(t, before[0], doc.Images[0])
	require.True(t, strings.HasPrefix(before[0], "https://"), "previous slice untouched")

	require.NoError(t, s.SetImage(context.Background(), &doc, 2, pngOf(t, 40, 30), &imaging.Crop{Width: 20, Height: 20}))
	require.Len(t, doc.Images, 3)
}

func TestSetImage_FailureKeepsDocument(t *testing.T) {
	t.Parallel()

	s := newSvc(t, nil)
	doc := s.New()
	snapshot := doc.Clone()

	big := make([]byte, 6<<20)
	err := s.SetImage(context.Background(), &doc, 1, imaging.Source{Data: big, MIME: "image/jpeg"}, nil)
	require.ErrorIs(t, err, errs.ErrFileTooLarge)
	require.Equal(t, snapshot, doc)

	err = s.SetImage(context.Background(), &doc, model.MaxImages, pngOf(t, 4, 4), nil)
	require.ErrorIs(t, err, errs.ErrTooManyImages)
	require.Equal(t, snapshot, doc)

	err = s.SetImage(context.Background(), &doc, -1, pngOf(t, 4, 4), nil)
	require.ErrorIs(t, err, errs.ErrValidation)

	err = s.SetImage(context.Background(), &doc, 7, pngOf(t, 4, 4), nil)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, snapshot, doc)
}

func TestRemoveImage(t *testing.T) {
	t.Parallel()

	s := newSvc(t, nil)
	doc := s.New()
	orig := doc.Clone().Images

	require.NoError(t, s.RemoveImage(&doc, 1))
	require.Equal(t, append(append([]string{}, orig[:1]...), orig[2:]...), doc.Images)

	require.ErrorIs(t, s.RemoveImage(&doc, 10), errs.ErrValidation)
	require.Len(t, doc.Images, model.MaxImages-1)
}

func TestSetMusic(t *testing.T) {
	t.Parallel()

	s := newSvc(t, nil)
	doc := s.New()
	doc.MusicEnabled = false

	mp3 := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 32)...)
	require.NoError(t, s.SetMusic(context.Background(), &doc, imaging.Source{Data: mp3, MIME: "audio/mpeg", Name: "nossa.mp3"}))
	require.True(t, doc.MusicEnabled)
	require.True(t, strings.HasPrefix(doc.MusicURL, "data:audio/mpeg;base64,"))

	prev := doc.MusicURL
	err := s.SetMusic(context.Background(), &doc, imaging.Source{Data: []byte("OggS"), MIME: "audio/ogg", Name: "a.ogg"})
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
	require.Equal(t, prev, doc.MusicURL)
}

func TestImportImages(t *testing.T) {
	t.Parallel()

	s := newSvc(t, nil)
	srcs := []imaging.Source{pngOf(t, 10, 10), pngOf(t, 900, 300), pngOf(t, 20, 40)}

	out, err := s.ImportImages(context.Background(), srcs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, src := range srcs {
		want, err := s.Normalize(context.Background(), src, nil)
		require.NoError(t, err)
		require.Equal(t, want, out[i], "order kept for %d", i)
	}

	srcs[1] = imaging.Source{Data: []byte("GIF89a"), MIME: "image/gif"}
	_, err = s.ImportImages(context.Background(), srcs)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)

	six := make([]imaging.Source, model.MaxImages+1)
	_, err = s.ImportImages(context.Background(), six)
	require.ErrorIs(t, err, errs.ErrTooManyImages)
}

func TestShare_ValidatesAndFallsBack(t *testing.T) {
	t.Parallel()

	st := &fakeStore{available: true, createErr: errs.ErrStore}
	s := newSvc(t, st)
	doc := s.New()

	bad := doc.Clone()
	bad.Occasion = "wedding"
	_, err := s.Share(context.Background(), bad)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Zero(t, st.creates.Load())

	link, err := s.Share(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, link.Fallback)
	require.Equal(t, share.TransportLocal, link.Transport)

	v := s.Open(context.Background(), link.URL)
	require.Equal(t, share.ModeShared, v.Mode)
	require.Equal(t, doc.Title, v.Document.Title)
}

func TestShareOpen_Remote(t *testing.T) {
	t.Parallel()

	st := &fakeStore{available: true}
	s := newSvc(t, st)
	doc := s.New()
	doc.Title = "Quer namorar comigo?"

	link, err := s.Share(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, share.TransportRemote, link.Transport)

	v := s.Open(context.Background(), link.URL)
	require.Equal(t, share.ModeShared, v.Mode)
	require.Equal(t, doc, v.Document)

	v = s.Open(context.Background(), "https://lovepage.example/?id=nope")
	require.Equal(t, share.ModeMissing, v.Mode)
}
