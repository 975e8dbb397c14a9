// Package imaging turns user supplied photos and songs into bounded, embeddable data URLs.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	"github.com/and161185/lovepage/internal/errs"
)

// MaxUploadBytes is the ingestion budget for a single image or audio file.
const MaxUploadBytes = 5 << 20

// Config bounds the normalized output.
type Config struct {
	MaxDimension   int   // longest allowed side in pixels
	Quality        int   // JPEG quality, 1..100
	MaxUploadBytes int64 // raw input limit, before crop
}

var (
	// URLProfile keeps assets small enough to travel inside a share URL.
	URLProfile = Config{MaxDimension: 800, Quality: 50, MaxUploadBytes: MaxUploadBytes}
	// RemoteProfile is used when shares are persisted in the remote store.
	RemoteProfile = Config{MaxDimension: 1200, Quality: 70, MaxUploadBytes: MaxUploadBytes}
)

// ProfileFor picks the profile matching the active share transport.
func ProfileFor(remote bool) Config {
	if remote {
		return RemoteProfile
	}
	return URLProfile
}

// Crop is a rectangle in source image pixels.
type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Source is either raw upload bytes with a declared MIME type, or a URL
// (remote or data:).
type Source struct {
	Data []byte
	MIME string
	Name string // original file name, used for audio type hints
	URL  string
}

func (s Source) isUpload() bool { return s.URL == "" }

// Normalizer produces data URLs within its Config bounds.
type Normalizer struct {
	cfg    Config
	client *http.Client
}

// New constructs a Normalizer. client fetches remote images that need cropping;
// nil means http.DefaultClient.
func New(cfg Config, client *http.Client) *Normalizer {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = URLProfile.MaxDimension
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = URLProfile.Quality
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = MaxUploadBytes
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Normalizer{cfg: cfg, client: client}
}

// Config returns the bounds in effect.
func (n *Normalizer) Config() Config { return n.cfg }

// Normalize converts src into a JPEG data URL within bounds, applying crop if given.
// A remote URL without crop is returned unchanged.
func (n *Normalizer) Normalize(ctx context.Context, src Source, crop *Crop) (string, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case src.isUpload():
		if err = n.checkImageUpload(src); err != nil {
			return "", err
		}
		data = src.Data
	case strings.HasPrefix(src.URL, "data:"):
		var mime string
		mime, data, err = parseDataURL(src.URL)
		if err != nil {
			return "", err
		}
		if err = n.checkImageUpload(Source{Data: data, MIME: mime}); err != nil {
			return "", err
		}
	case crop == nil:
		return src.URL, nil
	default:
		if data, err = n.fetch(ctx, src.URL); err != nil {
			return "", err
		}
		if err = n.checkImageUpload(Source{Data: data}); err != nil {
			return "", err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrDecodeFailed, err)
	}

	area := img.Bounds()
	if crop != nil {
		r := image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height).Add(area.Min)
		area = r.Intersect(img.Bounds())
		if crop.Width <= 0 || crop.Height <= 0 || area.Empty() {
			return "", fmt.Errorf("%w: crop %+v outside image %v", errs.ErrValidation, *crop, img.Bounds().Size())
		}
	}

	w, h := fitWithin(area.Dx(), area.Dy(), n.cfg.MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, area, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.cfg.Quality}); err != nil {
		return "", fmt.Errorf("%w: encode jpeg: %v", errs.ErrDecodeFailed, err)
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

// NormalizeAudio accepts MP3 uploads within the byte budget; remote URLs pass through.
func (n *Normalizer) NormalizeAudio(_ context.Context, src Source) (string, error) {
	if !src.isUpload() && !strings.HasPrefix(src.URL, "data:") {
		return src.URL, nil
	}
	data := src.Data
	if !src.isUpload() {
		var err error
		if src.MIME, data, err = parseDataURL(src.URL); err != nil {
			return "", err
		}
	}
	if int64(len(data)) > n.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w (%d > %d bytes)", errs.ErrFileTooLarge, len(data), n.cfg.MaxUploadBytes)
	}
	sniffed := mimetype.Detect(data)
	isMP3 := src.MIME == "audio/mpeg" || strings.HasSuffix(strings.ToLower(src.Name), ".mp3")
	if !isMP3 || !sniffed.Is("audio/mpeg") {
		return "", fmt.Errorf("%w: %q (%s), want MP3", errs.ErrUnsupportedFormat, src.MIME, sniffed.String())
	}
	return dataURL("audio/mpeg", data), nil
}

func (n *Normalizer) checkImageUpload(src Source) error {
	if int64(len(src.Data)) > n.cfg.MaxUploadBytes {
		return fmt.Errorf("%w (%d > %d bytes)", errs.ErrFileTooLarge, len(src.Data), n.cfg.MaxUploadBytes)
	}
	sniffed := mimetype.Detect(src.Data)
	if src.MIME != "" && !acceptedImage(src.MIME) {
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, src.MIME)
	}
	if !acceptedImage(sniffed.String()) {
		return fmt.Errorf("%w: content is %s", errs.ErrUnsupportedFormat, sniffed.String())
	}
	return nil
}

func (n *Normalizer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", errs.ErrDecodeFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch: status %d", errs.ErrDecodeFailed, resp.StatusCode)
	}
	// one byte over the limit is enough to reject
	data, err := io.ReadAll(io.LimitReader(resp.Body, n.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", errs.ErrDecodeFailed, err)
	}
	return data, nil
}

func acceptedImage(mime string) bool {
	return mime == "image/jpeg" || mime == "image/png"
}

// fitWithin scales w x h down, keeping aspect ratio, so neither side exceeds limit.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	ratio := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
	tw := int(math.Round(float64(w) * ratio))
	th := int(math.Round(float64(h) * ratio))
	return max(tw, 1), max(th, 1)
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func parseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URL", errs.ErrValidation)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("%w: data URL must be base64", errs.ErrValidation)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errs.ErrDecodeFailed, err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}
