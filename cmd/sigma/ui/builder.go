package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sigmair/internal/logging"
	"sigmair/internal/sigma"
	"sigmair/internal/store"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// livePreviewDelay is how long typing must pause before the input is
// translated for the live preview.
const livePreviewDelay = 150 * time.Millisecond

// BlockList is the persisted list the builder edits. *store.BlockStore
// satisfies it.
type BlockList interface {
	Add(ctx context.Context, input string) (store.Block, error)
	List(ctx context.Context) ([]store.Block, error)
	Remove(ctx context.Context, id string) error
	MoveUp(ctx context.Context, id string) error
	MoveDown(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
}

// blocksLoadedMsg carries the list after a load or a mutation.
type blocksLoadedMsg struct {
	blocks []store.Block
	status string
	err    error
}

// liveTickMsg fires after a typing pause; stale ticks carry an old seq.
type liveTickMsg struct {
	seq int
}

// Builder is the interactive frame builder.
type Builder struct {
	ctx        context.Context
	blocks     BlockList
	translator *sigma.Translator

	width    int
	height   int
	input    textinput.Model
	viewport viewport.Model

	items       []store.Block
	cursor      int
	focusList   bool
	sortPreview bool
	frame       string

	live    sigma.Result
	liveSeq int

	status    string
	statusErr bool
	styles    Styles
}

// NewBuilder creates a frame builder over list. A nil translator uses the
// built-in lexicon for the live preview.
func NewBuilder(ctx context.Context, list BlockList, translator *sigma.Translator, theme Theme, sortPreview bool) Builder {
	if ctx == nil {
		ctx = context.Background()
	}
	if translator == nil {
		translator = sigma.NewTranslator(sigma.DefaultLexicon())
	}

	styles := NewStyles(theme)

	ti := textinput.New()
	ti.Placeholder = "Describe a task, e.g. Design a language specification"
	ti.Prompt = "› "
	ti.PromptStyle = styles.Prompt
	ti.CharLimit = 500
	ti.Focus()

	m := Builder{
		ctx:         ctx,
		blocks:      list,
		translator:  translator,
		input:       ti,
		viewport:    viewport.New(0, 0),
		sortPreview: sortPreview,
		styles:      styles,
	}
	m.SetSize(100, 30)
	return m
}

// Init loads the block list.
func (m Builder) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(""))
}

// SetSize lays out the panes for a terminal of width x height.
func (m *Builder) SetSize(width, height int) {
	m.width = width
	m.height = height

	_, right := m.paneWidths()
	// header, input, live line, status, footer, pane borders
	paneHeight := height - 8
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.viewport.Width = right - 4
	m.viewport.Height = paneHeight
	m.input.Width = width - 6
	m.refreshViewport()
}

func (m Builder) paneWidths() (int, int) {
	left := m.width * 45 / 100
	return left, m.width - left
}

// Update handles messages.
func (m Builder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case blocksLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.items = msg.blocks
		m.clampCursor()
		m.frame = ""
		if msg.status != "" {
			m.setStatus(msg.status)
		}
		m.refreshViewport()
		return m, nil

	case liveTickMsg:
		if msg.seq == m.liveSeq {
			m.live = sigma.Result{}
			if strings.TrimSpace(m.input.Value()) != "" {
				m.live = m.translator.Translate(m.input.Value())
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyTab {
			m.toggleFocus()
			return m, nil
		}
		if m.focusList {
			return m.updateList(msg)
		}
		return m.updateInput(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Builder) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.setError(store.ErrEmptyInput)
			return m, nil
		}
		m.input.Reset()
		m.live = sigma.Result{}
		m.liveSeq++
		return m, m.mutate("add", func(ctx context.Context) (string, error) {
			b, err := m.blocks.Add(ctx, text)
			if err != nil {
				return "", err
			}
			if b.IsError {
				return "Added error block " + b.Output, nil
			}
			return "Added " + b.Output, nil
		})
	case tea.KeyEsc:
		m.toggleFocus()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.liveSeq++
	seq := m.liveSeq
	tick := tea.Tick(livePreviewDelay, func(time.Time) tea.Msg { return liveTickMsg{seq: seq} })
	return m, tea.Batch(cmd, tick)
}

func (m Builder) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "i", "/":
		m.toggleFocus()
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "K":
		if b, ok := m.selected(); ok && m.cursor > 0 {
			m.cursor--
			return m, m.mutate("move up", func(ctx context.Context) (string, error) {
				return "", m.blocks.MoveUp(ctx, b.ID)
			})
		}
	case "J":
		if b, ok := m.selected(); ok && m.cursor < len(m.items)-1 {
			m.cursor++
			return m, m.mutate("move down", func(ctx context.Context) (string, error) {
				return "", m.blocks.MoveDown(ctx, b.ID)
			})
		}
	case "d", "x", "delete":
		if b, ok := m.selected(); ok {
			return m, m.mutate("remove", func(ctx context.Context) (string, error) {
				return "Removed " + b.Output, m.blocks.Remove(ctx, b.ID)
			})
		}
	case "c":
		return m, m.mutate("clear", func(ctx context.Context) (string, error) {
			n, err := m.blocks.Clear(ctx)
			return fmt.Sprintf("Cleared %d blocks", n), err
		})
	case "s":
		m.sortPreview = !m.sortPreview
		m.refreshViewport()
	case "b":
		m.frame = sigma.BuildFrame(m.outputs())
		m.sortPreview = false
		m.setStatus(fmt.Sprintf("Built frame from %d blocks", len(m.items)))
		m.refreshViewport()
	case "y":
		m.frame = sigma.BuildFrame(m.outputs())
		m.sortPreview = false
		m.refreshViewport()
		if err := clipboardWriteAll(m.frame); err != nil {
			m.setError(fmt.Errorf("failed to copy frame: %w", err))
		} else {
			m.setStatus("Copied frame to clipboard")
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// load lists the blocks in the background.
func (m Builder) load(status string) tea.Cmd {
	list, ctx := m.blocks, m.ctx
	return func() tea.Msg {
		blocks, err := list.List(ctx)
		return blocksLoadedMsg{blocks: blocks, status: status, err: err}
	}
}

// mutate runs op in the background and reloads the list afterwards.
func (m Builder) mutate(name string, op func(ctx context.Context) (string, error)) tea.Cmd {
	list, ctx := m.blocks, m.ctx
	return func() tea.Msg {
		logging.UIDebug("block list %s", name)
		status, err := op(ctx)
		if err != nil {
			return blocksLoadedMsg{err: fmt.Errorf("%s: %w", name, err)}
		}
		blocks, err := list.List(ctx)
		return blocksLoadedMsg{blocks: blocks, status: status, err: err}
	}
}

func (m *Builder) toggleFocus() {
	m.focusList = !m.focusList
	if m.focusList {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

func (m *Builder) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Builder) selected() (store.Block, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return store.Block{}, false
	}
	return m.items[m.cursor], true
}

func (m Builder) outputs() []string {
	out := make([]string, len(m.items))
	for i, b := range m.items {
		out[i] = b.Output
	}
	return out
}

func (m *Builder) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Builder) setError(err error) {
	if errors.Is(err, store.ErrEmptyInput) {
		m.status = "input required"
	} else {
		m.status = err.Error()
	}
	m.statusErr = true
	logging.UIDebug("status error: %s", m.status)
}

func (m *Builder) refreshViewport() {
	m.viewport.SetContent(m.renderRight())
}

// renderRight is the sort preview, the built frame or a hint.
func (m Builder) renderRight() string {
	if m.sortPreview {
		entries := sigma.PreviewFrameOrder(m.outputs())
		if len(entries) == 0 {
			return m.styles.Muted.Render("Nothing to sort yet.")
		}
		lines := []string{m.styles.Title.Render("Sorted preview")}
		for _, e := range entries {
			line := fmt.Sprintf("%2d ← %-2d %s", e.SortedIndex+1, e.OriginalIndex+1, e.Text)
			switch {
			case e.IsDuplicate:
				line = m.styles.Duplicate.Render(line + "  (dropped)")
			case e.Moved:
				line = m.styles.Moved.Render(line + "  (moved)")
			default:
				line = m.styles.Block.Render(line)
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	}
	if m.frame != "" {
		return m.styles.Title.Render("Frame") + "\n" + m.styles.Block.Render(m.frame)
	}
	return m.styles.Muted.Render("Press b to build the frame, s for the sorted preview.")
}

func (m Builder) renderList(width int) string {
	title := m.styles.Title.Render(fmt.Sprintf("Blocks (%d)", len(m.items)))
	if len(m.items) == 0 {
		return title + "\n" + m.styles.Muted.Render("Type a task and press enter.")
	}

	lines := []string{title}
	for i, b := range m.items {
		text := truncate(fmt.Sprintf("%d. %s", i+1, b.Output), width)
		style := m.styles.Block
		if b.IsError {
			style = m.styles.Error
		}
		if i == m.cursor && m.focusList {
			text = "› " + text
			style = m.styles.Selected
		} else {
			text = "  " + text
		}
		lines = append(lines, style.Render(text))
	}
	return strings.Join(lines, "\n")
}

// View renders the builder.
func (m Builder) View() string {
	header := m.styles.Header.Render("Σ-IR frame builder")

	live := ""
	if m.live.Output != "" {
		style := m.styles.Success
		if !m.live.Success {
			style = m.styles.Warning
		}
		live = m.styles.Muted.Render("  → ") + style.Render(m.live.Output)
	}

	left, right := m.paneWidths()
	listPane, viewPane := m.styles.BlurredPane, m.styles.BlurredPane
	if m.focusList {
		listPane = m.styles.FocusedPane
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listPane.Width(left-2).Height(m.viewport.Height).Render(m.renderList(left-6)),
		viewPane.Width(right-2).Height(m.viewport.Height).Render(m.viewport.View()),
	)

	status := ""
	if m.status != "" {
		if m.statusErr {
			status = m.styles.Error.Render(m.status)
		} else {
			status = m.styles.Success.Render(m.status)
		}
	}

	help := "tab list · enter add · ctrl+c quit"
	if m.focusList {
		help = "j/k move · J/K reorder · d delete · s sort · b build · y copy · c clear · tab input · q quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.input.View(),
		live,
		panes,
		m.styles.Content.Render(status),
		m.styles.Footer.Render(help),
	)
}
