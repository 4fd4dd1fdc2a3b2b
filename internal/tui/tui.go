// Package tui is the terminal front end of an interactive session. It
// renders the wizard's current step with bubbletea and runs every wizard
// operation as a command, so the screen stays live while the catalog loads
// or the assistant writes.
//
// Keys that arrive while an operation runs are queued and replayed once it
// finishes. Typed-ahead input therefore always lands on the step it was
// meant for.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

// QuitCommand typed into a text field abandons the session.
const QuitCommand = "/quit"

// Outcome is how a session left the screen.
type Outcome int

const (
	Running Outcome = iota
	Completed
	Abandoned
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)
)

var pickKinds = map[domain.Step]domain.ComponentKind{
	domain.StepPersona:        domain.KindPersona,
	domain.StepLLM:            domain.KindLLMProfile,
	domain.StepTools:          domain.KindTool,
	domain.StepKnowledgeBases: domain.KindKnowledgeBase,
}

var stepTitles = map[domain.Step]string{
	domain.StepWelcome:           "Welcome",
	domain.StepIdentity:          "Identity",
	domain.StepPersona:           "Persona",
	domain.StepLLM:               "LLM profile",
	domain.StepTools:             "Tools",
	domain.StepKnowledgeBases:    "Knowledge bases",
	domain.StepContentGeneration: "Backstory and system prompt",
	domain.StepPreview:           "Preview",
	domain.StepComplete:          "Done",
}

// opDoneMsg reports the end of a wizard operation started by run.
type opDoneMsg struct{ err error }

// Model is the bubbletea model for one session. It must be used through a
// pointer.
type Model struct {
	w      *wizard.Wizard
	loader wizard.Loader
	ctx    context.Context

	spinner spinner.Model
	input   textinput.Model

	busy    string // label of the running operation, "" when idle
	pending []tea.KeyMsg

	// Copied from the wizard whenever an operation ends. View never reads
	// the wizard because an operation may be running on it.
	step    domain.Step
	sel     domain.Selection
	records []domain.Component
	doc     string
	replies []string
	shown   int
	accept  string

	cursor   int
	selected map[int]bool
	retry    bool
	notice   string

	outcome Outcome
	err     error
}

// New returns a model that starts w from loader.
func New(w *wizard.Wizard, loader wizard.Loader) *Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		w:        w,
		loader:   loader,
		ctx:      context.Background(),
		spinner:  sp,
		input:    ti,
		step:     domain.StepWelcome,
		selected: map[int]bool{},
		accept:   w.AcceptPhrase(),
	}
}

// Outcome reports how the session ended.
func (m *Model) Outcome() Outcome { return m.outcome }

// Err returns the error that stopped the session, if any.
func (m *Model) Err() error { return m.err }

// Init starts loading the catalog.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.start())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.abandon()
		}
		if m.busy != "" {
			m.pending = append(m.pending, msg)
			return m, nil
		}
		return m, m.handleKey(msg)

	case opDoneMsg:
		m.busy = ""
		cmd := m.finished(msg.err)
		return m, tea.Batch(cmd, m.drain())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.textStep() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// run starts op as a command. The model stays busy until its opDoneMsg.
func (m *Model) run(label string, op func(ctx context.Context) error) tea.Cmd {
	m.busy = label
	m.notice = ""
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: op(ctx)}
	}
}

func (m *Model) start() tea.Cmd {
	loader := m.loader
	return m.run("Loading component catalog", func(ctx context.Context) error {
		return m.w.Start(ctx, loader)
	})
}

func (m *Model) abandon() tea.Cmd {
	m.w.Abandon()
	m.outcome = Abandoned
	m.pending = nil
	return tea.Quit
}

// finished applies the result of an operation.
func (m *Model) finished(err error) tea.Cmd {
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrAbandoned), errors.Is(err, context.Canceled):
			m.outcome = Abandoned
			return tea.Quit
		case domain.IsKind(err, domain.CatalogUnavailable):
			m.retry = true
			m.notice = message(err)
		case domain.KindOf(err).Recoverable():
			m.notice = message(err)
		default:
			m.err = err
			return tea.Quit
		}
	}

	m.capture()
	switch {
	case m.step == domain.StepComplete:
		m.outcome = Completed
		return tea.Quit
	case m.step == domain.StepContentGeneration && !m.sel.HasContent() && err == nil:
		return m.run("Writing backstory and system prompt", m.w.GenerateContent)
	}
	return nil
}

// capture copies what View needs from the wizard.
func (m *Model) capture() {
	step := m.w.Step()
	if step != m.step {
		m.cursor = 0
		m.selected = map[int]bool{}
		m.input.Reset()
	}
	m.step = step
	m.sel = m.w.Snapshot()

	m.records = nil
	if kind, ok := pickKinds[step]; ok && m.w.Catalog() != nil {
		m.records = m.w.Catalog().Records(kind)
	}

	m.doc = ""
	if step == domain.StepPreview && m.w.Document() != nil {
		out, err := m.w.Document().YAML()
		if err != nil {
			m.notice = message(err)
		}
		m.doc = string(out)
	}

	turns := m.w.Transcript()
	m.replies = nil
	for _, t := range turns[m.shown:] {
		if t.Role == wizard.RoleAssistant {
			m.replies = append(m.replies, t.Content)
		}
	}
	m.shown = len(turns)

	m.input.Placeholder = ""
	if step == domain.StepContentGeneration {
		m.input.Placeholder = fmt.Sprintf("feedback, or %q to accept", m.accept)
	}
}

// drain replays queued keys until one starts an operation.
func (m *Model) drain() tea.Cmd {
	var cmds []tea.Cmd
	for len(m.pending) > 0 && m.busy == "" && m.outcome == Running {
		k := m.pending[0]
		m.pending = m.pending[1:]
		cmds = append(cmds, m.handleKey(k))
	}
	return tea.Batch(cmds...)
}

// handleKey presses each key of msg in turn. Keys left over when one of
// them starts an operation go back to the front of the queue.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := splitKeys(msg)
	var cmds []tea.Cmd
	for i, k := range keys {
		if m.outcome != Running {
			break
		}
		if m.busy != "" {
			m.pending = append(slices.Clone(keys[i:]), m.pending...)
			break
		}
		cmds = append(cmds, m.press(k))
	}
	return tea.Batch(cmds...)
}

// splitKeys breaks a run of typed runes into single keys.
func splitKeys(msg tea.KeyMsg) []tea.KeyMsg {
	if msg.Type != tea.KeyRunes || len(msg.Runes) < 2 {
		return []tea.KeyMsg{msg}
	}
	keys := make([]tea.KeyMsg, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: msg.Alt})
	}
	return keys
}

func (m *Model) press(k tea.KeyMsg) tea.Cmd {
	if m.retry {
		switch k.String() {
		case "y", "enter":
			m.retry = false
			return m.start()
		case "n", "q", "esc":
			return m.abandon()
		}
		return nil
	}

	switch m.step {
	case domain.StepIdentity, domain.StepContentGeneration:
		if k.Type == tea.KeyEnter {
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(k)
		return cmd

	case domain.StepPreview:
		switch k.String() {
		case "s", "enter":
			return m.run("Saving", m.w.Finish)
		case "r":
			return m.run("Assembling again", m.w.Regenerate)
		case "q", "esc":
			return m.abandon()
		}
		return nil
	}

	if _, ok := pickKinds[m.step]; !ok {
		return nil
	}
	switch k.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
	case " ", "x":
		if m.multiSelect() {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "enter":
		return m.choose()
	case "q", "esc":
		return m.abandon()
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	if value == QuitCommand {
		return m.abandon()
	}
	m.input.Reset()

	if m.step == domain.StepIdentity {
		return m.run("Saving "+identityLabel(m.sel.NextIdentityField()), func(ctx context.Context) error {
			return m.w.SubmitIdentity(ctx, value)
		})
	}
	return m.run("Thinking", func(ctx context.Context) error {
		return m.w.Respond(ctx, value)
	})
}

func (m *Model) choose() tea.Cmd {
	if m.multiSelect() {
		refs := m.checked()
		if m.step == domain.StepTools {
			return m.run("Resolving MCP servers", func(ctx context.Context) error {
				return m.w.ChooseTools(ctx, refs)
			})
		}
		return m.run("Saving knowledge bases", func(ctx context.Context) error {
			return m.w.ChooseKnowledgeBases(ctx, refs)
		})
	}

	if m.cursor >= len(m.records) {
		return nil
	}
	ref := m.records[m.cursor].ID
	if m.step == domain.StepPersona {
		return m.run("Applying persona", func(ctx context.Context) error {
			return m.w.ChoosePersona(ctx, ref)
		})
	}
	return m.run("Applying LLM profile", func(ctx context.Context) error {
		return m.w.ChooseLLMProfile(ctx, ref)
	})
}

func (m *Model) multiSelect() bool {
	return m.step == domain.StepTools || m.step == domain.StepKnowledgeBases
}

func (m *Model) textStep() bool {
	return m.step == domain.StepIdentity || m.step == domain.StepContentGeneration
}

// checked returns the ids of the toggled records in catalog order.
func (m *Model) checked() []string {
	var refs []string
	for i, r := range m.records {
		if m.selected[i] {
			refs = append(refs, r.ID)
		}
	}
	return refs
}

// View renders the current step.
func (m *Model) View() string {
	switch m.outcome {
	case Abandoned:
		return ""
	case Completed:
		return successStyle.Render(fmt.Sprintf("✓ Agent %s is ready.", m.sel.AgentName)) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("agentwiz") + dimStyle.Render("  "+stepTitles[m.step]))
	b.WriteString("\n\n")

	for _, r := range m.replies {
		b.WriteString(replyStyle.Render(r) + "\n\n")
	}
	if m.notice != "" {
		b.WriteString(errorStyle.Render("! "+m.notice) + "\n\n")
	}

	switch {
	case m.busy != "":
		b.WriteString(m.spinner.View() + " " + dimStyle.Render(m.busy+"..."))
	case m.retry:
		b.WriteString(normalStyle.Render("Retry loading the catalog? (y/n)"))
	case m.step == domain.StepIdentity:
		b.WriteString(m.viewIdentity())
	case m.step == domain.StepContentGeneration:
		b.WriteString(m.viewContent())
	case m.step == domain.StepPreview:
		b.WriteString(m.viewPreview())
	default:
		if _, ok := pickKinds[m.step]; ok {
			b.WriteString(m.viewPicker())
		}
	}
	return boxStyle.Render(b.String()) + "\n"
}

func (m *Model) viewIdentity() string {
	var b strings.Builder
	for _, f := range domain.IdentityFields {
		if v := m.sel.IdentityValue(f); v != "" {
			b.WriteString(dimStyle.Render(identityLabel(f)+": ") + normalStyle.Render(v) + "\n")
		}
	}
	b.WriteString(subtitleStyle.Render(identityLabel(m.sel.NextIdentityField())))
	b.WriteString("\n" + m.input.View() + "\n\n")
	b.WriteString(dimStyle.Render("Enter to submit, " + QuitCommand + " or ctrl+c to quit"))
	return b.String()
}

func (m *Model) viewPicker() string {
	var b strings.Builder
	switch m.step {
	case domain.StepTools:
		b.WriteString(subtitleStyle.Render("Which tools can the agent call?"))
	case domain.StepKnowledgeBases:
		b.WriteString(subtitleStyle.Render("Which knowledge bases can it search? (optional)"))
	case domain.StepLLM:
		b.WriteString(subtitleStyle.Render("Which LLM profile should it run on?"))
	default:
		b.WriteString(subtitleStyle.Render("Who should the agent be?"))
	}
	b.WriteString("\n")

	for i, r := range m.records {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		box := ""
		if m.multiSelect() {
			box = "[ ] "
			if m.selected[i] {
				box = "[✓] "
			}
		}
		b.WriteString(cursor + box + style.Render(r.DisplayName))
		if i == m.cursor {
			if desc := describe(r); desc != "" {
				b.WriteString(dimStyle.Render("  " + desc))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.multiSelect() {
		b.WriteString(dimStyle.Render("↑/↓ to navigate, Space to toggle, Enter to confirm, q to quit"))
	} else {
		b.WriteString(dimStyle.Render("↑/↓ to navigate, Enter to select, q to quit"))
	}
	return b.String()
}

func (m *Model) viewContent() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Backstory") + "\n")
	b.WriteString(normalStyle.Render(m.sel.Backstory) + "\n\n")
	b.WriteString(titleStyle.Render("System prompt") + "\n")
	b.WriteString(normalStyle.Render(m.sel.SystemPrompt) + "\n\n")
	b.WriteString(m.input.View() + "\n\n")
	b.WriteString(dimStyle.Render("Enter to send, " + QuitCommand + " or ctrl+c to quit"))
	return b.String()
}

func (m *Model) viewPreview() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(m.sel.AgentName + ".yaml"))
	b.WriteString("\n" + m.doc + "\n")
	b.WriteString(dimStyle.Render("s to save, r to assemble again, q to quit"))
	return b.String()
}

func describe(r domain.Component) string {
	if r.Description != "" {
		return r.Description
	}
	return r.Category
}

func identityLabel(field string) string {
	switch field {
	case domain.FieldAgentName:
		return "Agent name (lowercase, e.g. billing-bot)"
	case domain.FieldDisplayName:
		return "Display name"
	case domain.FieldGoal:
		return "Goal"
	}
	return field
}

// message renders an error for the terminal without the operation prefix.
func message(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Message != "" {
			return de.Message
		}
		if de.Err != nil {
			return de.Err.Error()
		}
	}
	return err.Error()
}

// Run shows m on out and reads keys from in until the session completes or
// is abandoned. Canceling ctx abandons the session.
func Run(ctx context.Context, m *Model, in io.Reader, out io.Writer) error {
	m.ctx = ctx
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			m.w.Abandon()
			m.outcome = Abandoned
			return nil
		}
		return err
	}
	return m.err
}
