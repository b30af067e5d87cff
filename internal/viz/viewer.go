package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/battsim/internal/export"
)

// Viewer browses the variables of one run.
type Viewer struct {
	title       string
	termination string
	series      []export.Series
	cursor      int
	themeIdx    int
	width       int
	height      int
	showHelp    bool
}

// NewViewer builds a viewer over series. termination is shown in the header.
func NewViewer(title, termination string, series []export.Series) Viewer {
	return Viewer{
		title:       title,
		termination: termination,
		series:      series,
		width:       100,
		height:      30,
	}
}

// WithTheme starts the viewer on the named theme.
func (v Viewer) WithTheme(name string) Viewer {
	for i, t := range Themes {
		if t.Name == name {
			v.themeIdx = i
		}
	}
	return v
}

func (v Viewer) Init() tea.Cmd {
	return nil
}

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return v, tea.Quit
		case "down", "j":
			if len(v.series) > 0 {
				v.cursor = (v.cursor + 1) % len(v.series)
			}
		case "up", "k":
			if len(v.series) > 0 {
				v.cursor = (v.cursor - 1 + len(v.series)) % len(v.series)
			}
		case "t":
			v.themeIdx = (v.themeIdx + 1) % len(Themes)
		case "?":
			v.showHelp = !v.showHelp
		}
	}
	return v, nil
}

// Selected returns the name of the highlighted variable.
func (v Viewer) Selected() string {
	if len(v.series) == 0 {
		return ""
	}
	return v.series[v.cursor].Name
}

// Theme returns the active theme.
func (v Viewer) Theme() Theme { return Themes[v.themeIdx] }

func (v Viewer) View() string {
	st := v.Theme().styles()

	var b strings.Builder
	b.WriteString(st.title.Render(v.title))
	if v.termination != "" {
		b.WriteString("  " + Termination(v.termination))
	}
	b.WriteString("\n\n")

	if len(v.series) == 0 {
		b.WriteString(st.muted.Render("no variables stored"))
		return b.String()
	}

	sparkWidth := 24
	for i, s := range v.series {
		name := s.Name
		if i == v.cursor {
			name = st.selected.Render("▸ " + name)
		} else {
			name = st.label.Render("  " + name)
		}
		fmt.Fprintf(&b, "%s  %s\n", SparklineChart(s.Values, sparkWidth), name)
	}
	b.WriteString("\n")

	sel := v.series[v.cursor]
	plotWidth := max(v.width-16, 20)
	plotHeight := max(v.height-len(v.series)-14, 6)
	b.WriteString(st.panel.Render(Plot(sel.Name, sel.Values, plotWidth, plotHeight)))
	b.WriteString("\n")

	if n := len(sel.Values); n > 0 {
		lo, hi := sel.Values[0], sel.Values[0]
		for _, x := range sel.Values {
			lo = min(lo, x)
			hi = max(hi, x)
		}
		fmt.Fprintf(&b, "%s   %s   %s   %s\n",
			Metric("min", lo), Metric("max", hi), Metric("final", sel.Values[n-1]), Metric("t_end", sel.T[len(sel.T)-1]))
	}

	if v.showHelp {
		b.WriteString("\n" + st.muted.Render("j/k select variable · t theme ("+v.Theme().Name+") · q quit"))
	} else {
		b.WriteString("\n" + st.muted.Render("? help"))
	}
	return b.String()
}

// RunViewer blocks until the user quits the viewer.
func RunViewer(v Viewer) error {
	_, err := tea.NewProgram(v, tea.WithAltScreen()).Run()
	return err
}
