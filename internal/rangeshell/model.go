// Package rangeshell implements the interactive entry browser: a
// paginated list of an open archive's entries with an action to
// extract the entry under the cursor to an output directory.
package rangeshell

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpainter/rangezip/internal/zipbatch"
	"github.com/jpainter/rangezip/internal/zipdir"
	"github.com/jpainter/rangezip/internal/zipextract"
)

const pageSize = 20

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type extractDoneMsg struct {
	path string
	err  error
}

// Model is the bubbletea model driving the archive browser.
type Model struct {
	arc     *zipdir.Archive
	outDir  string
	entries []zipdir.ZipEntryInfo

	cursor int
	page   int

	status string
	err    error
}

// New builds a browser over the entries of an already-opened archive,
// extracting selected entries into outDir.
func New(arc *zipdir.Archive, outDir string) Model {
	return Model{
		arc:     arc,
		outDir:  outDir,
		entries: arc.List(),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.page*pageSize {
					m.page--
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= (m.page+1)*pageSize {
					m.page++
				}
			}
		case "pgup", "left", "h":
			if m.page > 0 {
				m.page--
				m.cursor = m.page * pageSize
			}
		case "pgdown", "right", "l":
			if (m.page+1)*pageSize < len(m.entries) {
				m.page++
				m.cursor = m.page * pageSize
			}
		case "enter", "x":
			if len(m.entries) == 0 {
				return m, nil
			}
			entry := m.entries[m.cursor]
			if entry.IsDir() {
				m.status = fmt.Sprintf("skipped %s: directory entry", entry.Path)
				return m, nil
			}
			m.status = fmt.Sprintf("extracting %s...", entry.Path)
			m.err = nil
			return m, extractCmd(m.arc, entry, m.outDir)
		}

	case extractDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.status = fmt.Sprintf("extracted %s", msg.path)
			m.err = nil
		}
	}
	return m, nil
}

func extractCmd(arc *zipdir.Archive, entry zipdir.ZipEntryInfo, outDir string) tea.Cmd {
	return func() tea.Msg {
		if arc.Closed() {
			return extractDoneMsg{path: entry.Path, err: zipdir.NewInvalidArgument("extraction requested after close")}
		}
		sink := zipbatch.FileSink{Root: outDir}
		s, closeSink, err := sink.Create(entry)
		if err != nil {
			return extractDoneMsg{path: entry.Path, err: err}
		}
		err = zipextract.Extract(context.Background(), arc.Client(), entry, s, nil)
		if closeErr := closeSink(); err == nil {
			err = closeErr
		}
		return extractDoneMsg{path: entry.Path, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d entries", len(m.entries))))
	b.WriteString(dimStyle.Render("  (up/down move, enter extract, q quit)"))
	b.WriteByte('\n')
	b.WriteByte('\n')

	start := m.page * pageSize
	end := start + pageSize
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for i := start; i < end; i++ {
		e := m.entries[i]
		marker := "  "
		line := fmt.Sprintf("%6d  %10d  %s", i, e.FileSize, e.Path)
		if i == m.cursor {
			marker = "> "
			line = cursorStyle.Render(line)
		}
		fmt.Fprintf(&b, "%s%s\n", marker, line)
	}

	b.WriteByte('\n')
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteByte('\n')
	return b.String()
}
