package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
)

// printer writes log entries to a stream as they appear. On a terminal a
// progress entry that gets replaced is rewritten in place; otherwise every
// version is printed on its own line.
type printer struct {
	w       io.Writer
	tty     bool
	version uint64
	ids     []uint64 // id of the entry printed for each log index
	open    bool     // cursor sits at the end of an unterminated progress line
}

func newPrinter(w io.Writer, tty bool) *printer {
	return &printer{w: w, tty: tty}
}

// sync prints whatever changed in log since the previous call.
func (p *printer) sync(log *output.Log) {
	u := log.Since(p.version)
	p.version = u.Version

	if u.Reset {
		if len(u.Entries) < len(p.ids) {
			// Log was cleared.
			p.ids = nil
		}
		for i, e := range u.Entries {
			if i < len(p.ids) && p.ids[i] == e.ID {
				continue
			}
			p.put(i, e)
		}
		return
	}
	for _, d := range u.Deltas {
		p.put(d.Index, d.Entry)
	}
}

// put prints e as the entry at log index i.
func (p *printer) put(i int, e models.LogEntry) {
	if i >= len(p.ids) {
		p.ids = append(p.ids, e.ID)
		p.emit(e)
		return
	}
	p.ids[i] = e.ID
	if p.tty && p.open && i == len(p.ids)-1 {
		fmt.Fprint(p.w, "\r"+ansi.EraseEntireLine+p.render(e))
		return
	}
	p.emit(e)
}

// finish terminates a pending progress line.
func (p *printer) finish() {
	if p.open {
		fmt.Fprintln(p.w)
		p.open = false
	}
}

func (p *printer) emit(e models.LogEntry) {
	p.finish()
	if p.tty && e.IsProgress {
		fmt.Fprint(p.w, p.render(e))
		p.open = true
		return
	}
	fmt.Fprintln(p.w, p.render(e))
}

func (p *printer) render(e models.LogEntry) string {
	text := output.DisplayText(e)
	if !p.tty {
		return text
	}
	return kindStyle(e.Kind).Render(text)
}

func kindStyle(kind models.OutputKind) lipgloss.Style {
	switch kind {
	case models.KindStderr:
		return styleStderr
	case models.KindSystem:
		return styleSystem
	case models.KindSuccess:
		return styleSuccess
	case models.KindError:
		return styleError
	default:
		return lipgloss.NewStyle()
	}
}
