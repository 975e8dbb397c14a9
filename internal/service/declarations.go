package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/imaging"
	"github.com/and161185/lovepage/internal/model"
	"github.com/and161185/lovepage/internal/share"
)

// DeclarationService defines the editor and sharing operations over a declaration page.
type DeclarationService interface {
	// New returns a fresh document populated with defaults.
	New() model.Document
	// SetImage normalizes src into slot index; index == len(images) appends.
	SetImage(ctx context.Context, doc *model.Document, index int, src imaging.Source, crop *imaging.Crop) error
	// RemoveImage drops slot index.
	RemoveImage(doc *model.Document, index int) error
	// SetMusic normalizes src and makes it the page song.
	SetMusic(ctx context.Context, doc *model.Document, src imaging.Source) error
	// ImportImages normalizes several sources concurrently, keeping input order.
	ImportImages(ctx context.Context, srcs []imaging.Source) ([]string, error)
	// Normalize converts one image into an embeddable asset.
	Normalize(ctx context.Context, src imaging.Source, crop *imaging.Crop) (string, error)
	// NormalizeAudio converts one song into an embeddable asset.
	NormalizeAudio(ctx context.Context, src imaging.Source) (string, error)
	// Share produces a link for doc.
	Share(ctx context.Context, doc model.Document) (share.Link, error)
	// Open resolves a link into a view.
	Open(ctx context.Context, rawURL string) share.View
}

// importWorkers bounds concurrent decodes in ImportImages.
const importWorkers = 4

type DeclarationServiceImpl struct {
	resolver *share.Resolver
	norm     *imaging.Normalizer
	now      func() time.Time
}

// NewDeclarationService picks the normalizer profile matching the resolver transport.
// client fetches remote images that need cropping; nil means http.DefaultClient.
func NewDeclarationService(resolver *share.Resolver, client *http.Client) *DeclarationServiceImpl {
	return &DeclarationServiceImpl{
		resolver: resolver,
		norm:     imaging.New(imaging.ProfileFor(resolver.Remote()), client),
		now:      time.Now,
	}
}

// Profile returns the normalizer bounds in effect.
func (s *DeclarationServiceImpl) Profile() imaging.Config { return s.norm.Config() }

func (s *DeclarationServiceImpl) New() model.Document { return model.Defaults(s.now()) }

// Reset discards doc's edits.
func (s *DeclarationServiceImpl) Reset(doc *model.Document) { *doc = s.New() }

func (s *DeclarationServiceImpl) SetImage(ctx context.Context, doc *model.Document, index int, src imaging.Source, crop *imaging.Crop) error {
	n := len(doc.Images)
	if index < 0 || index > n {
		return fmt.Errorf("%w: image index %d out of range [0,%d]", errs.ErrValidation, index, n)
	}
	if index == n && n >= model.MaxImages {
		return errs.ErrTooManyImages
	}
	asset, err := s.norm.Normalize(ctx, src, crop)
	if err != nil {
		return err
	}
	images := append(make([]string, 0, n+1), doc.Images...)
	if index == n {
		images = append(images, asset)
	} else {
		images[index] = asset
	}
	doc.Images = images
	return nil
}

func (s *DeclarationServiceImpl) RemoveImage(doc *model.Document, index int) error {
	if index < 0 || index >= len(doc.Images) {
		return fmt.Errorf("%w: image index %d out of range", errs.ErrValidation, index)
	}
	images := make([]string, 0, len(doc.Images)-1)
	images = append(images, doc.Images[:index]...)
	doc.Images = append(images, doc.Images[index+1:]...)
	return nil
}

func (s *DeclarationServiceImpl) SetMusic(ctx context.Context, doc *model.Document, src imaging.Source) error {
	asset, err := s.norm.NormalizeAudio(ctx, src)
	if err != nil {
		return err
	}
	doc.MusicURL = asset
	doc.MusicEnabled = true
	return nil
}

func (s *DeclarationServiceImpl) ImportImages(ctx context.Context, srcs []imaging.Source) ([]string, error) {
	if len(srcs) > model.MaxImages {
		return nil, fmt.Errorf("%w (%d > %d)", errs.ErrTooManyImages, len(srcs), model.MaxImages)
	}
	out := make([]string, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importWorkers)
	for i, src := range srcs {
		g.Go(func() error {
			asset, err := s.norm.Normalize(gctx, src, nil)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			out[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DeclarationServiceImpl) Normalize(ctx context.Context, src imaging.Source, crop *imaging.Crop) (string, error) {
	return s.norm.Normalize(ctx, src, crop)
}

func (s *DeclarationServiceImpl) NormalizeAudio(ctx context.Context, src imaging.Source) (string, error) {
	return s.norm.NormalizeAudio(ctx, src)
}

// Share validates doc before handing it to the resolver.
func (s *DeclarationServiceImpl) Share(ctx context.Context, doc model.Document) (share.Link, error) {
	if err := doc.Validate(); err != nil {
		return share.Link{}, err
	}
	return s.resolver.Share(ctx, doc)
}

func (s *DeclarationServiceImpl) Open(ctx context.Context, rawURL string) share.View {
	return s.resolver.LoadURL(ctx, rawURL)
}
