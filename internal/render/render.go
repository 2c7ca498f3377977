// Package render draws allocator state for terminals: a one-line bar of
// owned and free cells, a fragmentation legend, and the comparison table.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/frag"
	"github.com/joshuapare/memsim/pkg/sim"
)

const (
	plainOwned = '#'
	plainFree  = '.'
	glyphOwned = "█"
	glyphFree  = "░"
)

var (
	palette = []lipgloss.Color{
		lipgloss.Color("#7D56F4"),
		lipgloss.Color("#00D7FF"),
		lipgloss.Color("#FF00FF"),
		lipgloss.Color("#04B575"),
		lipgloss.Color("#FFA500"),
		lipgloss.Color("#FF4B4B"),
	}
	mutedColor   = lipgloss.Color("#666666")
	successColor = lipgloss.Color("#04B575")
	warningColor = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#FF4B4B")

	freeStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(palette[0])
)

// Options configures a Renderer.
type Options struct {
	Color bool         // ANSI styling via lipgloss; plain ASCII otherwise
	Width int          // maximum bar width in characters, 0 for one per cell
	Lang  language.Tag // number formatting; English when unset
}

// Renderer formats allocator state.
type Renderer struct {
	color   bool
	width   int
	printer *message.Printer
}

func New(opts Options) *Renderer {
	tag := opts.Lang
	if tag == language.Und {
		tag = language.English
	}
	return &Renderer{color: opts.Color, width: opts.Width, printer: message.NewPrinter(tag)}
}

// Bar draws cells on one line. When the bar is narrower than the space each
// character covers a bucket of cells and shows as owned if at least half of
// them are, in the colour of the first owner.
func (r *Renderer) Bar(cells []memory.Cell) string {
	n := len(cells)
	w := n
	if r.width > 0 && r.width < n {
		w = r.width
	}

	var b strings.Builder
	if !r.color {
		b.WriteByte('[')
	}
	for i := range w {
		lo, hi := i*n/w, (i+1)*n/w
		owned, owner := 0, memory.PID(0)
		for _, c := range cells[lo:hi] {
			if c.Used {
				if owned == 0 {
					owner = c.Owner
				}
				owned++
			}
		}
		isOwned := owned*2 >= hi-lo && owned > 0
		switch {
		case !r.color && isOwned:
			b.WriteRune(plainOwned)
		case !r.color:
			b.WriteRune(plainFree)
		case isOwned:
			b.WriteString(ownerStyle(owner).Render(glyphOwned))
		default:
			b.WriteString(freeStyle.Render(glyphFree))
		}
	}
	if !r.color {
		b.WriteByte(']')
	}
	return b.String()
}

func ownerStyle(pid memory.PID) lipgloss.Style {
	i := int(pid) % len(palette)
	if i < 0 {
		i += len(palette)
	}
	return lipgloss.NewStyle().Foreground(palette[i])
}

// Legend summarises a fragmentation report on one line.
func (r *Renderer) Legend(rep frag.Report) string {
	owned := rep.TotalCells - rep.FreeCells
	pct := 0.0
	if rep.TotalCells > 0 {
		pct = float64(owned) / float64(rep.TotalCells) * 100
	}
	return r.printer.Sprintf("%d/%d cells owned (%.1f%%), %d free runs, largest %d, fragmentation %.1f%% (unusable %.1f%%)",
		owned, rep.TotalCells, pct, rep.FreeRuns, rep.LargestFreeRun, rep.Legacy, rep.Unusable)
}

// Percent formats v with one decimal place.
func (r *Renderer) Percent(v float64) string {
	return r.printer.Sprintf("%.1f%%", v)
}

// Number formats n with locale digit grouping.
func (r *Renderer) Number(n int) string {
	return r.printer.Sprintf("%d", n)
}

var tableHeaders = []string{"VARIANT", "ATTEMPTED", "SUCCEEDED", "EFFICIENCY"}

// Efficiency renders the comparison rows as an aligned table.
func (r *Renderer) Efficiency(rows []sim.Row) string {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, tableHeaders)
	for _, row := range rows {
		cells = append(cells, []string{
			row.Label,
			r.Number(row.Attempted),
			r.Number(row.Succeeded),
			r.Percent(row.Efficiency),
		})
	}

	widths := make([]int, len(tableHeaders))
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	var b strings.Builder
	for li, line := range cells {
		for i, c := range line {
			if i > 0 {
				b.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(c))
			if i == 0 {
				c += pad
			} else {
				c = pad + c
			}
			if r.color {
				switch {
				case li == 0:
					c = headerStyle.Render(c)
				case i == len(line)-1:
					c = lipgloss.NewStyle().Foreground(efficiencyColor(rows[li-1].Efficiency)).Render(c)
				}
			}
			b.WriteString(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func efficiencyColor(v float64) lipgloss.Color {
	switch {
	case v >= 75:
		return successColor
	case v >= 50:
		return warningColor
	default:
		return errorColor
	}
}
