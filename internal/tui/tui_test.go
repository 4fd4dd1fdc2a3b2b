package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/catalog/catalogtest"
	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/logging"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

func newTestWizard(t *testing.T) *wizard.Wizard {
	t.Helper()
	w := wizard.New(logging.New(nil, "silent"), wizard.Options{StrictNames: true})
	t.Cleanup(w.Close)
	return w
}

// runScript feeds keystrokes to a program showing m. Enter is "\r" and
// ctrl+c is "\x03", as a terminal sends them.
func runScript(t *testing.T, m *Model, script string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, Run(ctx, m, strings.NewReader(script), &out))
	require.NoError(t, ctx.Err(), "script did not end the session")
	return out.String()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// --- Scripted sessions ---

func TestSessionSavesAgent(t *testing.T) {
	w := newTestWizard(t)
	m := New(w, wizard.Static(catalogtest.Load(t)))

	script := strings.Join([]string{
		"billing-bot\r",
		"Billing Bot\r",
		"reconcile invoices\r",
		"\r",     // Finance Analyst
		"\r",     // Precise
		"\r",     // no tool yet, rejected
		" jj \r", // List Invoices and Lookup Customer
		"\r",     // no knowledge bases
		"make it formal\r",
		"looks good\r",
		"r",
		"s",
	}, "")
	runScript(t, m, script)

	require.Equal(t, Completed, m.Outcome())
	assert.Equal(t, domain.StepComplete, w.Step())

	sel := w.Snapshot()
	assert.Equal(t, "Billing Bot", sel.DisplayName)
	assert.Equal(t, "finance-analyst", sel.Persona.ID)
	assert.Equal(t, "precise", sel.LLMProfile.ID)
	require.Len(t, sel.Tools, 2)
	assert.Len(t, sel.AutoIncludedServers, 2)
	assert.Empty(t, sel.KnowledgeBases)
	assert.True(t, sel.HasContent())
	require.NotNil(t, w.Document())

	var said []string
	for _, turn := range w.Transcript() {
		if turn.Role == wizard.RoleUser {
			said = append(said, turn.Content)
		}
	}
	assert.Contains(t, said, "make it formal")
	assert.Contains(t, m.View(), "billing-bot is ready")
}

func TestTypedAheadKeysWaitForTheirStep(t *testing.T) {
	w := newTestWizard(t)
	cat := catalogtest.Load(t)
	slow := wizard.LoaderFunc(func(ctx context.Context) (*catalog.Catalog, error) {
		time.Sleep(50 * time.Millisecond)
		return cat, nil
	})

	m := New(w, slow)
	runScript(t, m, "billing-bot\r"+QuitCommand+"\r")

	assert.Equal(t, Abandoned, m.Outcome())
	assert.True(t, w.Abandoned())
	assert.Equal(t, "billing-bot", w.Snapshot().AgentName)
	assert.Equal(t, domain.StepIdentity, w.Step())
}

func TestCtrlCAbandons(t *testing.T) {
	w := newTestWizard(t)
	m := New(w, wizard.Static(catalogtest.Load(t)))
	runScript(t, m, "\x03")

	assert.Equal(t, Abandoned, m.Outcome())
	assert.True(t, w.Abandoned())
	assert.Empty(t, m.View())
}

func TestCatalogRetry(t *testing.T) {
	w := newTestWizard(t)
	cat := catalogtest.Load(t)
	var calls atomic.Int32
	loader := wizard.LoaderFunc(func(context.Context) (*catalog.Catalog, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return cat, nil
	})

	m := New(w, loader)
	// "y" and the quit command arrive as one run of runes.
	runScript(t, m, "y"+QuitCommand+"\r")

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, Abandoned, m.Outcome())
	assert.Equal(t, domain.StepIdentity, w.Step())
}

func TestCatalogDeclined(t *testing.T) {
	w := newTestWizard(t)
	var calls atomic.Int32
	failing := wizard.LoaderFunc(func(context.Context) (*catalog.Catalog, error) {
		calls.Add(1)
		return nil, errors.New("offline")
	})

	m := New(w, failing)
	runScript(t, m, "n")

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Abandoned, m.Outcome())
	assert.Equal(t, domain.StepWelcome, w.Step())
}

func TestCanceledContextAbandons(t *testing.T) {
	w := newTestWizard(t)
	m := New(w, wizard.Static(catalogtest.Load(t)))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	// Input stays open so only the context can end the program.
	in, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	require.NoError(t, Run(ctx, m, in, &bytes.Buffer{}))

	assert.Equal(t, Abandoned, m.Outcome())
	assert.True(t, w.Abandoned())
}

// --- Model ---

func TestKeysQueueWhileBusy(t *testing.T) {
	w := newTestWizard(t)
	m := New(w, wizard.Static(catalogtest.Load(t)))

	start := m.start()
	require.NotEmpty(t, m.busy)

	m.Update(runes("bill"))
	m.Update(runes("ing"))
	assert.Len(t, m.pending, 2)
	assert.Empty(t, m.input.Value())

	m.Update(start())
	assert.Empty(t, m.busy)
	assert.Empty(t, m.pending)
	assert.Equal(t, domain.StepIdentity, m.step)
	assert.Equal(t, "billing", m.input.Value())
}

func TestCatalogFailureOffersRetry(t *testing.T) {
	w := newTestWizard(t)
	m := New(w, wizard.Static(catalogtest.Load(t)))

	err := domain.Wrap(domain.CatalogUnavailable, "start", errors.New("connection refused"))
	_, cmd := m.Update(opDoneMsg{err: err})
	assert.Nil(t, cmd)
	assert.True(t, m.retry)

	view := m.View()
	assert.Contains(t, view, "! connection refused")
	assert.Contains(t, view, "Retry loading the catalog?")
}

func TestFatalErrorStopsSession(t *testing.T) {
	w := newTestWizard(t)
	m := New(w, wizard.Static(catalogtest.Load(t)))

	err := domain.Errorf(domain.IncompleteSelection, "respond", "persona is required")
	_, cmd := m.Update(opDoneMsg{err: err})
	require.NotNil(t, cmd)
	assert.ErrorIs(t, m.Err(), err)
}

func TestPickers(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(t)
	require.NoError(t, w.Start(ctx, wizard.Static(catalogtest.Load(t))))
	for _, v := range []string{"billing-bot", "Billing Bot", "reconcile invoices"} {
		require.NoError(t, w.SubmitIdentity(ctx, v))
	}

	m := New(w, nil)
	m.Update(opDoneMsg{})
	require.Equal(t, domain.StepPersona, m.step)
	view := m.View()
	assert.Contains(t, view, "Finance Analyst")
	assert.Contains(t, view, "Support Agent")
	assert.NotContains(t, view, "[ ]", "single choice has no checkboxes")

	m.Update(runes("jjjj"))
	assert.Equal(t, 2, m.cursor, "cursor stops at the last record")
	m.Update(runes("k"))
	assert.Equal(t, 1, m.cursor)

	require.NoError(t, w.ChoosePersona(ctx, "finance-analyst"))
	require.NoError(t, w.ChooseLLMProfile(ctx, "precise"))
	m.Update(opDoneMsg{})
	require.Equal(t, domain.StepTools, m.step)
	assert.Equal(t, 0, m.cursor, "cursor resets on a new step")

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(runes("jj"))
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, []string{"list-invoices", "lookup-customer"}, m.checked())
	assert.Contains(t, m.View(), "[✓]")
}

func TestContentIsGeneratedOnArrival(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard(t)
	require.NoError(t, w.Start(ctx, wizard.Static(catalogtest.Load(t))))
	for _, v := range []string{"billing-bot", "Billing Bot", "reconcile invoices"} {
		require.NoError(t, w.SubmitIdentity(ctx, v))
	}
	require.NoError(t, w.ChoosePersona(ctx, "finance-analyst"))
	require.NoError(t, w.ChooseLLMProfile(ctx, "precise"))
	require.NoError(t, w.ChooseTools(ctx, []string{"summarize"}))
	require.NoError(t, w.ChooseKnowledgeBases(ctx, nil))

	m := New(w, nil)
	_, cmd := m.Update(opDoneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, domain.StepContentGeneration, m.step)
	assert.Contains(t, m.busy, "Writing")

	// Generation failures still commit content, so no second attempt.
	_, cmd = m.Update(opDoneMsg{err: domain.Wrap(domain.GenerationFailed, "generateContent", errors.New("rate limited"))})
	assert.Nil(t, cmd)
	assert.Empty(t, m.busy)
	assert.Contains(t, m.View(), "! rate limited")
}

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []string
	}{
		{"single rune", runes("j"), []string{"j"}},
		{"run of runes", runes("jjk"), []string{"j", "j", "k"}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []string{"enter"}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, []string{" "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, k := range splitKeys(tt.msg) {
				got = append(got, k.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "persona \"x\" not in catalog",
		message(domain.Errorf(domain.NotFound, "choosePersona", "persona %q not in catalog", "x")))
	assert.Equal(t, "boom", message(domain.Wrap(domain.GenerationFailed, "generate", errors.New("boom"))))
	assert.Equal(t, "plain", message(errors.New("plain")))
}
