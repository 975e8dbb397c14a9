// Package model defines domain entities used by services, codecs and repositories.
package model

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/lovepage/internal/errs"
)

// MaxImages is the number of photo slots a declaration page has.
const MaxImages = 5

// DateLayout is the calendar date format used by StartDate.
const DateLayout = "2006-01-02"

// Occasion selects which interactive affordances the page shows.
type Occasion string

const (
	OccasionDeclaration Occasion = "declaration"
	OccasionProposal    Occasion = "proposal"
	OccasionAnniversary Occasion = "anniversary"
)

// Valid reports whether o is a known occasion.
func (o Occasion) Valid() bool {
	switch o {
	case OccasionDeclaration, OccasionProposal, OccasionAnniversary:
		return true
	}
	return false
}

// HasAnswerButtons reports whether the page shows accept/decline buttons.
func (o Occasion) HasAnswerButtons() bool { return o == OccasionProposal }

// Animation is the background effect played behind the page.
type Animation string

const (
	AnimationHearts   Animation = "hearts"
	AnimationSparkles Animation = "sparkles"
	AnimationNone     Animation = "none"
	AnimationFloat    Animation = "float"
)

// Valid reports whether a is a known animation.
func (a Animation) Valid() bool {
	switch a {
	case AnimationHearts, AnimationSparkles, AnimationNone, AnimationFloat:
		return true
	}
	return false
}

// Document is one declaration page: texts, photos, styling, music and countdown.
// JSON names are the wire names of shared links.
type Document struct {
	Occasion        Occasion  `json:"occasion"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	Message         string    `json:"message"`
	Footer          string    `json:"footer"`
	Images          []string  `json:"images"` // remote URLs or data URLs, at most MaxImages
	BackgroundColor string    `json:"backgroundColor"`
	TextColor       string    `json:"textColor"`
	Animation       Animation `json:"animation"`
	ButtonTextYes   string    `json:"buttonTextYes"`
	ButtonTextNo    string    `json:"buttonTextNo"`
	ShowCountdown   bool      `json:"showCountdown"`
	StartDate       string    `json:"startDate"` // YYYY-MM-DD
	MusicURL        string    `json:"musicUrl"`
	MusicEnabled    bool      `json:"musicEnabled"`
	MusicStartTime  float64   `json:"musicStartTime"` // seconds
	MusicDuration   float64   `json:"musicDuration"`  // seconds
}

// Clone returns a deep copy, so edits on the copy never touch d.
func (d Document) Clone() Document {
	out := d
	out.Images = append(make([]string, 0, len(d.Images)), d.Images...)
	return out
}

// Validate checks type shape only; colors and texts are left to rendering.
func (d Document) Validate() error {
	if !d.Occasion.Valid() {
		return fmt.Errorf("%w: occasion %q", errs.ErrValidation, d.Occasion)
	}
	if !d.Animation.Valid() {
		return fmt.Errorf("%w: animation %q", errs.ErrValidation, d.Animation)
	}
	if len(d.Images) > MaxImages {
		return fmt.Errorf("%w (%d > %d)", errs.ErrTooManyImages, len(d.Images), MaxImages)
	}
	if d.ShowCountdown {
		if _, err := time.Parse(DateLayout, d.StartDate); err != nil {
			return fmt.Errorf("%w: start date %q", errs.ErrValidation, d.StartDate)
		}
	}
	return nil
}

// Record is a remotely stored share: an exact copy of a Document plus store metadata.
type Record struct {
	ID        uuid.UUID // server-generated, opaque to link holders
	CreatedAt time.Time // set by the store
	Document  Document
}
