// Package codec maps a Document to and from a compact string that fits in a URL query value.
//
// The format is JSON compressed with lz-string's URI-component alphabet, the same
// representation the browser editor writes into the "d" parameter.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	lzstring "github.com/daku10/go-lz-string"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/model"
)

// SafeURLLength is the longest share URL assumed to survive browsers and proxies.
const SafeURLLength = 8000

// Fits reports whether a share URL stays within SafeURLLength.
func Fits(u string) bool { return len(u) <= SafeURLLength }

// Encode serializes d with every field present, compresses it and returns a URL-safe string.
func Encode(d model.Document) (string, error) {
	if d.Images == nil {
		d.Images = []string{}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	out, err := lzstring.CompressToEncodedURIComponent(string(raw))
	if err != nil {
		return "", fmt.Errorf("compress document: %w", err)
	}
	return out, nil
}

// Decode is the inverse of Encode. Any malformed input yields errs.ErrDecode and a zero Document.
func Decode(s string) (model.Document, error) {
	return DecodeAt(s, time.Now())
}

// DecodeAt decodes s, filling absent fields from the defaults at now.
func DecodeAt(s string, now time.Time) (doc model.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = model.Document{}, fmt.Errorf("%w: %v", errs.ErrDecode, r)
		}
	}()

	if s == "" {
		return model.Document{}, fmt.Errorf("%w: empty payload", errs.ErrDecode)
	}
	// query decoding turns '+' into ' '
	s = strings.ReplaceAll(s, " ", "+")
	if !validAlphabet(s) {
		return model.Document{}, fmt.Errorf("%w: unexpected character", errs.ErrDecode)
	}

	raw, err := lzstring.DecompressFromEncodedURIComponent(s)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}
	if raw == "" {
		return model.Document{}, fmt.Errorf("%w: not a compressed payload", errs.ErrDecode)
	}
	return Unmarshal([]byte(raw), now)
}

// Unmarshal parses the JSON form of a document. Unknown fields, bad enums and
// too many images are rejected; absent fields take their defaults.
func Unmarshal(raw []byte, now time.Time) (model.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var p model.Partial
	if err := dec.Decode(&p); err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}
	if dec.More() {
		return model.Document{}, fmt.Errorf("%w: trailing data", errs.ErrDecode)
	}

	d := p.WithDefaults(now)
	if !d.Occasion.Valid() || !d.Animation.Valid() || len(d.Images) > model.MaxImages {
		return model.Document{}, fmt.Errorf("%w: %v", errs.ErrDecode, d.Validate())
	}
	return d, nil
}

func validAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		case c == '+', c == '-', c == '$':
		default:
			return false
		}
	}
	return true
}
