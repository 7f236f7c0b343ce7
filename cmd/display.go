// cmd/display.go
package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/playback"
)

var (
	keyingStyle   = lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("0")).Bold(true)
	canceledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
)

// display echoes a transmission on one terminal line, highlighting the
// character currently being keyed.
type display struct {
	mu  sync.Mutex
	out io.Writer

	labels  []string // per token, as printed
	wordEnd []bool   // a space follows the token
	next    int
	line    strings.Builder
}

func newDisplay(out io.Writer) *display {
	return &display{out: out}
}

// start prepares the display for text.
func (d *display) start(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.labels, d.wordEnd = d.labels[:0], d.wordEnd[:0]
	d.next = 0
	d.line.Reset()

	for _, word := range strings.Split(text, " ") {
		if strings.HasPrefix(word, string(cw.ProsignMarker)) {
			d.labels = append(d.labels, "<"+strings.ToUpper(strings.TrimPrefix(word, string(cw.ProsignMarker)))+">")
			d.wordEnd = append(d.wordEnd, true)
			continue
		}
		for _, r := range strings.ToUpper(word) {
			d.labels = append(d.labels, string(r))
			d.wordEnd = append(d.wordEnd, false)
		}
		if n := len(d.wordEnd); n > 0 {
			d.wordEnd[n-1] = true
		}
	}
}

func (d *display) label(token string) string {
	if d.next < len(d.labels) {
		return d.labels[d.next]
	}
	return token
}

func (d *display) beforeChar(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintf(d.out, "\r%s%s", d.line.String(), keyingStyle.Render(d.label(token)))
}

func (d *display) afterChar(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.line.WriteString(d.label(token))
	if d.next < len(d.wordEnd) && d.wordEnd[d.next] {
		d.line.WriteByte(' ')
	}
	d.next++
	_, _ = fmt.Fprintf(d.out, "\r%s", d.line.String())
}

func (d *display) afterSend() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintln(d.out)
}

func (d *display) afterCancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintf(d.out, "\r%s%s\n", d.line.String(), canceledStyle.Render("[canceled]"))
}

func (d *display) hooks() playback.Hooks {
	return playback.Hooks{
		BeforeChar:  d.beforeChar,
		AfterChar:   d.afterChar,
		AfterSend:   d.afterSend,
		AfterCancel: d.afterCancel,
	}
}
