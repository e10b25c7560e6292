package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"gramlint/internal/driver"
)

type fileState uint8

const (
	stateQueued fileState = iota
	stateChecking
	stateClean
	stateMatches
	statePartial
	stateError
)

var stateLabels = [...]string{
	stateQueued:   "queued",
	stateChecking: "checking",
	stateClean:    "clean",
	stateMatches:  "done",
	statePartial:  "partial",
	stateError:    "error",
}

var stateStyles = [...]lipgloss.Style{
	stateQueued:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	stateChecking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateClean:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	stateMatches:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	statePartial:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	stateError:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (s fileState) finished() bool { return s >= stateClean }

const labelWidth = 8

type fileItem struct {
	path    string
	state   fileState
	matches int
	failed  int
	err     string
}

type progressModel struct {
	title   string
	events  <-chan driver.FileEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem

	finished int
	matches  int
	failed   int // предложения с ошибкой анализа по всем файлам

	width  int
	height int
	done   bool
}

type eventMsg driver.FileEvent
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders check progress.
// files are listed in the order CheckFiles received them; the model quits
// once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.FileEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = stateStyles[stateChecking]

	items := make([]fileItem, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file}
	}
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		items:   items,
	}
	m.resize(80, 24)
	return m
}

func (m *progressModel) resize(width, height int) {
	m.width, m.height = width, height
	m.prog.Width = max(width-12, 10)
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.FileEvent(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// прерывание обрабатывает вызывающий через контекст
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 && msg.Height > 0 {
			m.resize(msg.Width, msg.Height)
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev driver.FileEvent) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	item := &m.items[ev.Index]
	if item.state.finished() {
		return nil
	}
	switch ev.Status {
	case driver.FileChecking:
		item.state = stateChecking
		return nil
	case driver.FileDone:
		item.matches, item.failed = ev.Matches, ev.Failed
		switch {
		case ev.Failed > 0:
			item.state = statePartial
		case ev.Matches > 0:
			item.state = stateMatches
		default:
			item.state = stateClean
		}
		m.matches += ev.Matches
		m.failed += ev.Failed
	case driver.FileError:
		item.state = stateError
		if ev.Err != nil {
			item.err = ev.Err.Error()
		}
	}
	m.finished++
	return m.prog.SetPercent(float64(m.finished) / float64(len(m.items)))
}

func (m *progressModel) header() string {
	h := fmt.Sprintf("%s %d/%d files, %s", m.title, m.finished, len(m.items), plural(m.matches, "match"))
	if m.failed > 0 {
		h += fmt.Sprintf(", %s not analyzed", plural(m.failed, "sentence"))
	}
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

// visible picks the rows that fit the terminal: files being checked first,
// then the most recently finished ones, in list order.
func (m *progressModel) visible(rows int) ([]int, int) {
	if rows >= len(m.items) {
		idx := make([]int, len(m.items))
		for i := range idx {
			idx[i] = i
		}
		return idx, 0
	}
	picked := make([]bool, len(m.items))
	n := 0
	pick := func(want func(fileItem) bool) {
		for i := len(m.items) - 1; i >= 0 && n < rows; i-- {
			if !picked[i] && want(m.items[i]) {
				picked[i] = true
				n++
			}
		}
	}
	pick(func(it fileItem) bool { return it.state == stateChecking })
	pick(func(it fileItem) bool { return it.state == stateError })
	pick(func(it fileItem) bool { return it.state.finished() })
	pick(func(fileItem) bool { return true })

	idx := make([]int, 0, n)
	for i, ok := range picked {
		if ok {
			idx = append(idx, i)
		}
	}
	return idx, len(m.items) - n
}

func (m *progressModel) row(item fileItem) string {
	label := stateStyles[item.state].Render(fmt.Sprintf("%*s", labelWidth, stateLabels[item.state]))
	nameWidth := max(m.width-labelWidth-16, 20)
	line := "  " + label + " " + truncate(item.path, nameWidth)
	switch {
	case item.state == stateError && item.err != "":
		line += " " + dimStyle.Render(truncate(item.err, max(m.width-runewidth.StringWidth(line)-1, 10)))
	case item.matches > 0:
		line += fmt.Sprintf(" (%d)", item.matches)
	}
	return line
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")

	// заголовок, отступы и полоса прогресса
	idx, hidden := m.visible(max(m.height-6, 3))
	for _, i := range idx {
		b.WriteString(m.row(m.items[i]))
		b.WriteByte('\n')
	}
	if hidden > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", hidden)))
		b.WriteByte('\n')
	}

	b.WriteString("\n  ")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "ch") {
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
