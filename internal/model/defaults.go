package model

import "time"

var defaultImages = []string{
	"https://picsum.photos/seed/love1/800/600",
	"https://picsum.photos/seed/love2/800/600",
	"https://picsum.photos/seed/love3/800/600",
	"https://picsum.photos/seed/love4/800/600",
	"https://picsum.photos/seed/love5/800/600",
}

// Defaults returns the canonical starting document; the countdown starts today.
func Defaults(now time.Time) Document {
	return Document{
		Occasion:        OccasionProposal,
		Title:           "Quer namorar comigo?",
		Subtitle:        "Você é a melhor coisa que já me aconteceu",
		Message:         "Desde que te conheci, minha vida ganhou um novo brilho. Você é a pessoa que eu sempre sonhei em ter ao meu lado, compartilhando cada momento, cada risada e cada sonho.",
		Footer:          "Com todo o meu amor, para sempre seu.",
		Images:          append([]string(nil), defaultImages...),
		BackgroundColor: "#fff1f2",
		TextColor:       "#9f1239",
		Animation:       AnimationHearts,
		ButtonTextYes:   "Sim, eu aceito!",
		ButtonTextNo:    "Não",
		ShowCountdown:   true,
		StartDate:       now.UTC().Format(DateLayout),
		MusicURL:        "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
		MusicEnabled:    false,
		MusicStartTime:  0,
		MusicDuration:   60,
	}
}

// Partial is a Document as it arrives from the outside world: any field may be absent (nil).
type Partial struct {
	Occasion        *Occasion  `json:"occasion"`
	Title           *string    `json:"title"`
	Subtitle        *string    `json:"subtitle"`
	Message         *string    `json:"message"`
	Footer          *string    `json:"footer"`
	Images          *[]string  `json:"images"`
	BackgroundColor *string    `json:"backgroundColor"`
	TextColor       *string    `json:"textColor"`
	Animation       *Animation `json:"animation"`
	ButtonTextYes   *string    `json:"buttonTextYes"`
	ButtonTextNo    *string    `json:"buttonTextNo"`
	ShowCountdown   *bool      `json:"showCountdown"`
	StartDate       *string    `json:"startDate"`
	MusicURL        *string    `json:"musicUrl"`
	MusicEnabled    *bool      `json:"musicEnabled"`
	MusicStartTime  *float64   `json:"musicStartTime"`
	MusicDuration   *float64   `json:"musicDuration"`
}

// WithDefaults fills every absent field from Defaults(now). The result is always fully populated.
func (p Partial) WithDefaults(now time.Time) Document {
	d := Defaults(now)
	pick(&d.Occasion, p.Occasion)
	pick(&d.Title, p.Title)
	pick(&d.Subtitle, p.Subtitle)
	pick(&d.Message, p.Message)
	pick(&d.Footer, p.Footer)
	if p.Images != nil {
		d.Images = append(make([]string, 0, len(*p.Images)), *p.Images...)
	}
	pick(&d.BackgroundColor, p.BackgroundColor)
	pick(&d.TextColor, p.TextColor)
	pick(&d.Animation, p.Animation)
	pick(&d.ButtonTextYes, p.ButtonTextYes)
	pick(&d.ButtonTextNo, p.ButtonTextNo)
	pick(&d.ShowCountdown, p.ShowCountdown)
	pick(&d.StartDate, p.StartDate)
	pick(&d.MusicURL, p.MusicURL)
	pick(&d.MusicEnabled, p.MusicEnabled)
	pick(&d.MusicStartTime, p.MusicStartTime)
	pick(&d.MusicDuration, p.MusicDuration)
	return d
}

func pick[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
