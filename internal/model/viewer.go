package model

import (
	"fmt"
	"math"
	"time"
)

// noAnswers replace the decline button label once the recipient starts refusing.
var noAnswers = []string{
	"Tem certeza?",
	"Pensa bem...",
	"Olha o que você está perdendo!",
	"Errou o botão?",
	"Não aceito não como resposta!",
	"Tente de novo!",
	"Quase lá!",
	"Sério mesmo?",
}

// DaysSince returns whole days elapsed from StartDate (UTC midnight) to now.
func (d Document) DaysSince(now time.Time) (int, error) {
	start, err := time.Parse(DateLayout, d.StartDate)
	if err != nil {
		return 0, fmt.Errorf("start date %q: %w", d.StartDate, err)
	}
	return int(math.Floor(now.Sub(start).Hours() / 24)), nil
}

// CountdownLabel renders the "days together" counter, or "" when hidden or undated.
func (d Document) CountdownLabel(now time.Time) string {
	if !d.ShowCountdown {
		return ""
	}
	n, err := d.DaysSince(now)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d dias", n)
}

// NoButtonText is the decline button label after the given number of refusals.
func (d Document) NoButtonText(refusals int) string {
	if refusals <= 0 {
		return d.ButtonTextNo
	}
	return noAnswers[refusals%len(noAnswers)]
}
