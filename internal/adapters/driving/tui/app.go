// Package tui provides an interactive terminal UI for querying Flowport
// collections, built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driving"
)

type state int

const (
	statePick state = iota
	stateSearch
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// App is the Bubble Tea model for the search UI. It starts on a collection
// picker unless a collection ID was supplied up front, then moves to a query
// prompt with a scrollable result pane.
type App struct {
	knowledge driving.KnowledgeService
	ctx       context.Context
	startID   string

	state       state
	collections []domain.Collection
	pickCursor  int

	collection *domain.Collection
	input      textinput.Model
	viewport   viewport.Model
	matches    []domain.ChunkMatch
	cursor     int
	lastQuery  string
	status     string

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the search UI. When collectionID is non-empty the picker is
// skipped and the app opens directly on that collection.
func NewApp(knowledge driving.KnowledgeService, collectionID string) (*App, error) {
	if knowledge == nil {
		return nil, ErrMissingKnowledgeService
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a query and press Enter"
	input.CharLimit = 0
	input.Focus()

	return &App{
		knowledge: knowledge,
		ctx:       context.Background(),
		startID:   collectionID,
		state:     statePick,
		input:     input,
		viewport:  viewport.New(0, 0),
		status:    "Loading collections...",
	}, nil
}

// WithContext sets the context used for knowledge service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

func (a *App) Init() tea.Cmd {
	load := a.loadCollections()
	if a.startID != "" {
		load = a.loadCollection(a.startID)
	}
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("flowport - Collection Search"), load)
}

type collectionsLoadedMsg struct {
	collections []domain.Collection
}

type collectionLoadedMsg struct {
	collection *domain.Collection
}

type matchesMsg struct {
	query   string
	matches []domain.ChunkMatch
}

type errMsg struct {
	err error
}

func (a *App) loadCollections() tea.Cmd {
	return func() tea.Msg {
		collections, err := a.knowledge.List(a.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return collectionsLoadedMsg{collections: collections}
	}
}

func (a *App) loadCollection(id string) tea.Cmd {
	return func() tea.Msg {
		collection, err := a.knowledge.Get(a.ctx, id)
		if err != nil {
			return errMsg{err: err}
		}
		return collectionLoadedMsg{collection: collection}
	}
}

func (a *App) runQuery(query string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.knowledge.Query(a.ctx, a.collection.ID, query, domain.DefaultTopK)
		if err != nil {
			return errMsg{err: err}
		}
		return matchesMsg{query: query, matches: result.Matches}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case collectionsLoadedMsg:
		a.collections = msg.collections
		if a.pickCursor >= len(a.collections) {
			a.pickCursor = 0
		}
		if len(a.collections) == 0 {
			a.status = "No collections yet. Create one with 'flowport collections create'."
		} else {
			a.status = "Pick a collection."
		}
		return a, nil

	case collectionLoadedMsg:
		a.collection = msg.collection
		a.state = stateSearch
		a.matches = nil
		a.cursor = 0
		a.lastQuery = ""
		a.viewport.SetContent(a.renderMatch())
		a.status = fmt.Sprintf("Searching %s. Type a query.", msg.collection.Name)
		return a, nil

	case matchesMsg:
		a.matches = msg.matches
		a.cursor = 0
		a.lastQuery = msg.query
		if len(a.matches) == 0 {
			a.status = fmt.Sprintf("No matches for %q", msg.query)
		} else {
			a.status = fmt.Sprintf("%d matches for %q (up/down to browse)", len(a.matches), msg.query)
		}
		a.viewport.SetContent(a.renderMatch())
		a.viewport.GotoTop()
		return a, nil

	case errMsg:
		a.status = "Error: " + msg.err.Error()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
		return a, tea.Quit
	}
	if a.state == statePick {
		return a.handlePickKey(msg)
	}
	return a.handleSearchKey(msg)
}

func (a *App) handlePickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "up", "k":
		if a.pickCursor > 0 {
			a.pickCursor--
		}
	case "down", "j":
		if a.pickCursor < len(a.collections)-1 {
			a.pickCursor++
		}
	case "enter":
		if len(a.collections) > 0 {
			a.status = "Opening " + a.collections[a.pickCursor].Name + "..."
			return a, a.loadCollection(a.collections[a.pickCursor].ID)
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Esc returns to the picker, unless the app was opened on a fixed
		// collection, in which case there is nothing to go back to.
		if a.startID != "" {
			return a, tea.Quit
		}
		a.state = statePick
		a.collection = nil
		a.matches = nil
		a.cursor = 0
		a.input.SetValue("")
		a.status = "Pick a collection."
		return a, a.loadCollections()
	case "enter":
		query := strings.TrimSpace(a.input.Value())
		if query == "" {
			return a, nil
		}
		a.status = fmt.Sprintf("Searching for %q...", query)
		return a, a.runQuery(query)
	case "up":
		if len(a.matches) > 0 {
			a.cursor = (a.cursor - 1 + len(a.matches)) % len(a.matches)
			a.viewport.SetContent(a.renderMatch())
			a.viewport.GotoTop()
			return a, nil
		}
	case "down":
		if len(a.matches) > 0 {
			a.cursor = (a.cursor + 1) % len(a.matches)
			a.viewport.SetContent(a.renderMatch())
			a.viewport.GotoTop()
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) resize() {
	_, resultFrame := resultBoxStyle.GetFrameSize()
	_, queryFrame := queryBoxStyle.GetFrameSize()

	// Header, collection summary and status line each take one row.
	reserved := 3 + resultFrame + queryFrame + 1
	height := a.height - reserved
	if height < 3 {
		height = 3
	}
	a.viewport.Width = max(20, a.width-4)
	a.viewport.Height = height
	a.input.Width = max(20, a.width-8)
}

func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.state == statePick {
		return a.viewPick()
	}
	return a.viewSearch()
}

func (a *App) viewPick() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Flowport Search") + "\n")
	b.WriteString(dimStyle.Render("Pick a collection (enter to select, q to quit)") + "\n\n")

	if len(a.collections) == 0 {
		b.WriteString(dimStyle.Render("  No collections available.") + "\n")
	}
	for i := range a.collections {
		col := &a.collections[i]
		line := fmt.Sprintf("%s (%d docs, %d chunks)", col.Name, col.DocumentCount, col.ChunkCount)
		if !col.Ready {
			line += "  [not ready]"
		}
		if i == a.pickCursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + statusStyle.Render(a.status))
	return b.String()
}

func (a *App) viewSearch() string {
	summary := fmt.Sprintf("%s (%d documents, %d chunks)",
		a.collection.Name, a.collection.DocumentCount, a.collection.ChunkCount)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Flowport Search") + "\n")
	b.WriteString(dimStyle.Render(summary) + "\n")
	b.WriteString(resultBoxStyle.Render(a.viewport.View()) + "\n")
	b.WriteString(queryBoxStyle.Render(a.input.View()) + "\n")
	b.WriteString(statusStyle.Render(a.status))
	return b.String()
}

func (a *App) renderMatch() string {
	if len(a.matches) == 0 {
		return "No matches yet. Type a query and press Enter."
	}

	m := a.matches[a.cursor]
	title := m.DocumentTitle
	if title == "" {
		title = m.DocumentID
	}
	head := fmt.Sprintf("Match %d/%d  score=%.3f  %s", a.cursor+1, len(a.matches), m.Score, title)
	return head + "\n\n" + m.Content
}
