// Package store is the remote persistence adapter for shared declarations.
//
// It hides the concrete backend, bounds every call with a timeout and converts
// failures into errs.ErrStore / errs.ErrNotFound so callers can fall back.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
	"github.com/and161185/lovepage/internal/repository"
)

// PlaceholderMarker in an endpoint means "not configured".
const PlaceholderMarker = "placeholder"

// DefaultTimeout bounds each remote call when Config.Timeout is unset.
const DefaultTimeout = 5 * time.Second

// Config is the externally supplied store configuration.
type Config struct {
	Endpoint   string        // backend URL, e.g. postgres://... or dynamodb://table
	Credential string        // password or ACCESS_KEY:SECRET
	Timeout    time.Duration // per-call bound
}

// Configured reports whether the endpoint is usable. It never touches the network.
func (c Config) Configured() bool {
	ep := strings.TrimSpace(c.Endpoint)
	return ep != "" && !strings.Contains(strings.ToLower(ep), PlaceholderMarker)
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Adapter creates and fetches declarations in the remote store.
type Adapter struct {
	repo    repository.DeclarationRepository // nil when unavailable
	timeout time.Duration
	log     *zap.Logger
	closer  func()
}

// New wraps repo. A nil repo yields an unavailable adapter.
func New(repo repository.DeclarationRepository, timeout time.Duration, log *zap.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{repo: repo, timeout: timeout, log: log}
}

// Unavailable returns an adapter that refuses every remote operation.
func Unavailable(log *zap.Logger) *Adapter { return New(nil, 0, log) }

// Available reports whether remote operations can be attempted.
func (a *Adapter) Available() bool { return a != nil && a.repo != nil }

// Close releases backend resources.
func (a *Adapter) Close() {
	if a != nil && a.closer != nil {
		a.closer()
	}
}

// Create stores doc under a new identifier and returns it.
func (a *Adapter) Create(ctx context.Context, doc model.Document) (string, error) {
	if !a.Available() {
		return "", errs.ErrStoreUnavailable
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("%w: generate id: %v", errs.ErrStore, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rec := &model.Record{ID: id, Document: doc.Clone()}
	if err := a.repo.Create(ctx, rec); err != nil {
		a.log.Warn("store create failed", zap.Error(err))
		return "", fmt.Errorf("%w: create: %v", errs.ErrStore, err)
	}
	a.log.Info("declaration stored", zap.String("id", id.String()), zap.Time("created_at", rec.CreatedAt))
	return id.String(), nil
}

// Fetch loads the declaration stored under id.
// Unknown or malformed identifiers are errs.ErrNotFound.
func (a *Adapter) Fetch(ctx context.Context, id string) (model.Document, error) {
	if !a.Available() {
		return model.Document{}, errs.ErrStoreUnavailable
	}
	uid, err := uuid.FromString(strings.TrimSpace(id))
	if err != nil {
		return model.Document{}, errs.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rec, err := a.repo.Get(ctx, uid)
	switch {
	case err == nil:
		return rec.Document, nil
	case errors.Is(err, errs.ErrNotFound):
		return model.Document{}, errs.ErrNotFound
	default:
		a.log.Warn("store fetch failed", zap.String("id", id), zap.Error(err))
		return model.Document{}, fmt.Errorf("%w: fetch: %v", errs.ErrStore, err)
	}
}
