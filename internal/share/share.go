// Package share turns a document into a shareable link and resolves links back into documents.
//
// Remote storage is preferred when available. Every remote failure degrades to a
// self-contained link carrying the compressed document in its "d" parameter.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/lovepage/internal/codec"
	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
)

// Query parameter names of a share link.
const (
	ParamID   = "id"
	ParamData = "d"
)

// Store is the remote persistence used for short links.
type Store interface {
	Available() bool
	Create(ctx context.Context, doc model.Document) (string, error)
	Fetch(ctx context.Context, id string) (model.Document, error)
}

// Gate may refuse a remote create for a client.
type Gate interface {
	Allow(ctx context.Context, client string) (bool, time.Duration, error)
}

// Transport says how a link carries its document.
type Transport string

const (
	TransportRemote Transport = "remote"
	TransportLocal  Transport = "local"
)

// Link is the outcome of a share.
type Link struct {
	URL       string
	ID        string // set for remote links
	Transport Transport
	Fallback  bool // remote was attempted but the link is local
	Oversize  bool // local URL longer than codec.SafeURLLength
}

// Mode tells a viewer how to present a loaded link.
type Mode string

const (
	ModeEdit    Mode = "edit"
	ModeShared  Mode = "shared"
	ModeMissing Mode = "missing"
)

// View is the outcome of loading a link.
type View struct {
	Mode     Mode
	Document model.Document
	ID       string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGate installs a rate gate consulted before each remote create.
func WithGate(g Gate) Option { return func(r *Resolver) { r.gate = g } }

// WithObserver receives every state change of every share.
func WithObserver(fn func(State)) Option { return func(r *Resolver) { r.observe = fn } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(r *Resolver) { r.log = l } }

// DefaultTimeout bounds the rate gate and remote create of one share together.
const DefaultTimeout = 5 * time.Second

// WithTimeout bounds the remote part of a share; on expiry the share falls back to a local link.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock overrides time.Now, used for defaults.
func WithClock(now func() time.Time) Option { return func(r *Resolver) { r.now = now } }

// Resolver creates and resolves share links against a public base URL.
type Resolver struct {
	base    *url.URL
	store   Store
	gate    Gate
	observe func(State)
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// New constructs a Resolver. store may be nil, which means local links only.
func New(baseURL string, store Store, opts ...Option) (*Resolver, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("share: invalid public url %q", baseURL)
	}
	base.RawQuery, base.Fragment = "", ""
	if base.Path == "" {
		base.Path = "/"
	}
	r := &Resolver{base: base, store: store, timeout: DefaultTimeout, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Remote reports whether shares will try the remote store first.
func (r *Resolver) Remote() bool { return r.store != nil && r.store.Available() }

type flow struct {
	r     *Resolver
	state State
}

func (f *flow) fire(e event) error {
	s, err := next(f.state, e)
	if err != nil {
		return err
	}
	f.state = s
	if f.r.observe != nil {
		f.r.observe(s)
	}
	return nil
}

// Share produces a link for doc. It fails only when the document cannot be encoded locally.
func (r *Resolver) Share(ctx context.Context, doc model.Document) (Link, error) {
	f := &flow{r: r, state: StateIdle}

	if !r.Remote() {
		link, err := r.local(doc)
		if err != nil {
			return Link{}, err
		}
		return link, f.fire(evEncodeLocal)
	}

	if err := f.fire(evSave); err != nil {
		return Link{}, err
	}
	id, cause := r.createRemote(ctx, doc)
	if cause == nil {
		u := *r.base
		u.RawQuery = url.Values{ParamID: {id}}.Encode()
		return Link{URL: u.String(), ID: id, Transport: TransportRemote}, f.fire(evSaved)
	}

	r.log.Warn("remote share failed, using local link", zap.Error(cause))
	link, err := r.local(doc)
	if err != nil {
		return Link{}, err
	}
	link.Fallback = true
	return link, f.fire(evFallback)
}

func (r *Resolver) createRemote(ctx context.Context, doc model.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.gate != nil {
		client, _ := ClientFrom(ctx)
		ok, retry, err := r.gate.Allow(ctx, client)
		if err != nil {
			return "", fmt.Errorf("%w: gate: %v", errs.ErrStore, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: retry after %s", errs.ErrRateLimited, retry.Round(time.Second))
		}
	}
	return r.store.Create(ctx, doc)
}

func (r *Resolver) local(doc model.Document) (Link, error) {
	s, err := codec.Encode(doc)
	if err != nil {
		return Link{}, fmt.Errorf("share: encode: %w", err)
	}
	u := *r.base
	u.RawQuery = ParamData + "=" + s
	link := Link{URL: u.String(), Transport: TransportLocal}
	if !codec.Fits(link.URL) {
		link.Oversize = true
		r.log.Warn("share link exceeds safe length", zap.Int("len", len(link.URL)), zap.Int("limit", codec.SafeURLLength))
	}
	return link, nil
}

// Load resolves link query parameters. "id" takes precedence over "d".
func (r *Resolver) Load(ctx context.Context, q url.Values) View {
	now := r.now()
	if id := strings.TrimSpace(q.Get(ParamID)); id != "" {
		if r.store == nil {
			return r.missing(now, errs.ErrStoreUnavailable)
		}
		doc, err := r.store.Fetch(ctx, id)
		if err != nil {
			return r.missing(now, err)
		}
		return View{Mode: ModeShared, Document: doc, ID: id}
	}
	if d := q.Get(ParamData); d != "" {
		doc, err := codec.DecodeAt(d, now)
		if err != nil {
			return r.missing(now, err)
		}
		return View{Mode: ModeShared, Document: doc}
	}
	return View{Mode: ModeEdit, Document: model.Defaults(now)}
}

// LoadURL resolves a full link, or a bare query string such as "?d=...".
func (r *Resolver) LoadURL(ctx context.Context, raw string) View {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return r.missing(r.now(), fmt.Errorf("%w: %v", errs.ErrDecode, err))
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return r.missing(r.now(), fmt.Errorf("%w: %v", errs.ErrDecode, err))
	}
	return r.Load(ctx, q)
}

func (r *Resolver) missing(now time.Time, cause error) View {
	if errors.Is(cause, errs.ErrNotFound) {
		r.log.Info("shared declaration not found")
	} else {
		r.log.Warn("shared declaration unreadable", zap.Error(cause))
	}
	return View{Mode: ModeMissing, Document: model.Defaults(now)}
}
