package sim

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var lang = language.English

// Rows returns the printable key/value pairs of r in display order.
func (r Report) Rows() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	choice := r.Choice
	if choice == "" {
		choice = "-"
	}
	rows := map[string]string{
		"Game":          r.Game,
		"Choice":        choice,
		"Rounds":        p.Sprintf("%d", r.Rounds),
		"Bet":           r.Bet,
		"Total Bet":     r.TotalBet,
		"Total Win":     r.TotalWin,
		"RTP":           p.Sprintf("%.3f %%", 100*r.RTP),
		"RTP 95% CI":    p.Sprintf("[%.3f%%, %.3f%%]", 100*r.RtpCI.Lo, 100*r.RtpCI.Hi),
		"Expected RTP":  p.Sprintf("%.3f %%", 100*r.Expected.RTP),
		"STD":           p.Sprintf("%.3f", r.StdDev),
		"Expected STD":  p.Sprintf("%.3f", r.Expected.StdDev),
		"Hit Rate":      p.Sprintf("%.3f %%", 100*r.HitRate),
		"Hit 95% CI":    p.Sprintf("[%.3f%%, %.3f%%]", 100*r.HitCI.Lo, 100*r.HitCI.Hi),
		"Expected Hit":  p.Sprintf("%.3f %%", 100*r.Expected.HitRate),
		"Win/Push/Loss": p.Sprintf("%d / %d / %d", r.Wins, r.Pushes, r.Losses),
		"Used":          r.Used.Round(1e6).String(),
	}
	keys := []string{
		"Game", "Choice", "Rounds", "Bet", "Total Bet", "Total Win",
		"RTP", "RTP 95% CI", "Expected RTP", "STD", "Expected STD",
		"Hit Rate", "Hit 95% CI", "Expected Hit", "Win/Push/Loss", "Used",
	}
	return keys, rows
}

// Table renders r as a boxed two-column table.
func (r Report) Table() string {
	keys, rows := r.Rows()
	title := r.Game
	if r.Choice != "" {
		title += " (" + r.Choice + ")"
	}
	return fmtTable(title, keys, rows)
}

// WriteYAML dumps reports as a YAML list.
func WriteYAML(w io.Writer, reps []Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reps); err != nil {
		return err
	}
	return enc.Close()
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(msg[k]); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	b.WriteString(divider)
	for _, k := range keys {
		v := msg[k]
		b.WriteString("| " + k + blank(maxKeyLen-2-runewidth.StringWidth(k)) + " | " + v + blank(maxValLen-2-runewidth.StringWidth(v)) + " |\n")
	}
	b.WriteString(divider)
	return b.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
