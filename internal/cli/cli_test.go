package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentwiz/internal/catalog/catalogtest"
	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/logging"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// setupHome creates an agentwiz home with a directory catalog and a
// config file pointing at it, and returns the config path.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("AGENTWIZ_HOME", home)
	t.Setenv("OPENAI_API_KEY", "")

	catDir := filepath.Join(home, "catalog")
	catalogtest.WriteDir(t, catDir)

	cfgPath := filepath.Join(home, "config.yaml")
	content := "catalog:\n  source: dir\n  dir: " + catDir + "\n" +
		"assistant:\n  provider: none\n" +
		"logging:\n  level: silent\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgFile, logLevel = "", ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newTestWizard(t *testing.T) *wizard.Wizard {
	t.Helper()
	log = silentLog()
	w := wizard.New(log, wizard.Options{StrictNames: true})
	t.Cleanup(w.Close)
	return w
}

// --- Input parsing ---

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("TRUE"))
	assert.Equal(t, false, parseValue("false"))
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, 0.5, parseValue("0.5"))
	assert.Equal(t, "gpt-4o", parseValue("gpt-4o"))
	assert.Equal(t, "1.2.3", parseValue("1.2.3"))
}

func TestParseKind(t *testing.T) {
	k, err := parseKind("TOOLS")
	require.NoError(t, err)
	assert.Equal(t, domain.KindTool, k)

	_, err = parseKind("widgets")
	assert.ErrorContains(t, err, "mcpServers")
}

// --- Scripted driver ---

func TestRunAnswers(t *testing.T) {
	w := newTestWizard(t)
	a := Answers{
		AgentName:      "billing-bot",
		DisplayName:    "Billing Bot",
		Goal:           "reconcile invoices",
		Persona:        "finance-analyst",
		LLMProfile:     "precise",
		Tools:          []string{"list-invoices", "post-payment"},
		KnowledgeBases: []string{"policies"},
		Feedback:       []string{"more formal"},
	}
	require.NoError(t, runAnswers(context.Background(), w, wizard.Static(catalogtest.Load(t)), a))
	assert.Equal(t, domain.StepComplete, w.Step())
	assert.True(t, w.Document().Has("spec", "rag"))
	assert.Equal(t, 1, w.Document().Lookup("spec", "mcpServers").Len())
}

func TestRunAnswersStopsOnBadRef(t *testing.T) {
	w := newTestWizard(t)
	a := Answers{
		AgentName:   "billing-bot",
		DisplayName: "Billing Bot",
		Goal:        "reconcile invoices",
		Persona:     "nobody",
	}
	err := runAnswers(context.Background(), w, wizard.Static(catalogtest.Load(t)), a)
	assert.True(t, domain.IsKind(err, domain.NotFound))
	assert.Equal(t, domain.StepPersona, w.Step())
}

// --- Commands ---

const answersYAML = `agentName: billing-bot
displayName: Billing Bot
goal: reconcile invoices
persona: finance-analyst
llmProfile: precise
tools: [list-invoices, lookup-customer]
`

func TestBuildAndHistoryCommands(t *testing.T) {
	cfgPath := setupHome(t)
	answers := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(answers, []byte(answersYAML), 0o600))

	out, err := execute(t, "", "--config", cfgPath, "build", "-f", answers)
	require.NoError(t, err)
	assert.Contains(t, out, "apiVersion: agents.enterprise.com/v1alpha9")
	assert.Contains(t, out, "name: billing-bot")

	target := filepath.Join(t.TempDir(), "out", "billing-bot.yaml")
	_, err = execute(t, "", "--config", cfgPath, "build", "-f", answers, "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: Agent")

	out, err = execute(t, "", "--config", cfgPath, "history", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[0])[0]

	out, err = execute(t, "", "--config", cfgPath, "history", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "urn:enterprise:agent:billing-bot:v1")

	_, err = execute(t, "", "--config", cfgPath, "history", "delete", id)
	require.NoError(t, err)
	_, err = execute(t, "", "--config", cfgPath, "history", "show", id)
	assert.ErrorContains(t, err, "not found")
}

// chatScript answers every step of the chat screen. Enter is "\r".
const chatScript = "billing-bot\rBilling Bot\rreconcile invoices\r" +
	"\r" + // Finance Analyst
	"\r" + // Precise
	" \r" + // List Invoices
	"\r" + // no knowledge bases
	"looks good\r" +
	"s"

func TestChatCommandWritesFile(t *testing.T) {
	cfgPath := setupHome(t)

	out, err := execute(t, chatScript, "--config", cfgPath, "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ")

	path := filepath.Join(os.Getenv("AGENTWIZ_HOME"), "agents", "billing-bot.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "role: FinanceAgent")

	out, err = execute(t, "", "--config", cfgPath, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "billing-bot")
}

func TestChatCommandAbandoned(t *testing.T) {
	cfgPath := setupHome(t)
	out, err := execute(t, "billing-bot\r/quit\r", "--config", cfgPath, "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Session abandoned.")

	_, err = os.Stat(filepath.Join(os.Getenv("AGENTWIZ_HOME"), "agents", "billing-bot.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestChatCommandRejectsUnsafeDefaultPath(t *testing.T) {
	cfgPath := setupHome(t)
	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("wizard:\n  strictNames: false\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	script := strings.Replace(chatScript, "billing-bot", "../../escape", 1)
	_, err = execute(t, script, "--config", cfgPath, "chat")
	assert.ErrorContains(t, err, "pass --out")

	home := os.Getenv("AGENTWIZ_HOME")
	_, statErr := os.Stat(filepath.Join(home, "..", "escape.yaml"))
	assert.True(t, os.IsNotExist(statErr))

	target := filepath.Join(t.TempDir(), "agent.yaml")
	out, err := execute(t, script, "--config", cfgPath, "chat", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved "+target)
}

func TestDefaultAgentPath(t *testing.T) {
	path, err := defaultAgentPath("/agents", "billing-bot")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/agents", "billing-bot.yaml"), path)

	for _, name := range []string{"../../x", "a/b", "", "Billing Bot"} {
		_, err := defaultAgentPath("/agents", name)
		assert.Error(t, err, name)
	}
}

func TestCatalogCommands(t *testing.T) {
	cfgPath := setupHome(t)

	out, err := execute(t, "", "--config", cfgPath, "catalog", "list", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "tools (4)")
	assert.Contains(t, out, "urn:tool:lookup-customer")
	assert.NotContains(t, out, "personas")

	out, err = execute(t, "", "--config", cfgPath, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "personas (3)")

	out, err = execute(t, "", "--config", cfgPath, "catalog", "resolve", "post-payment", "lookup-customer", "list-invoices")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "urn:server:erp"))
	assert.True(t, strings.HasPrefix(lines[1], "urn:server:crm"))

	_, err = execute(t, "", "--config", cfgPath, "catalog", "resolve", "nope")
	assert.True(t, domain.IsKind(err, domain.NotFound))

	out, err = execute(t, "", "--config", cfgPath, "catalog", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog 1.2.0 OK")

	out, err = execute(t, "", "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared cache")
}

func TestConfigCommands(t *testing.T) {
	cfgPath := setupHome(t)

	_, err := execute(t, "", "--config", cfgPath, "config", "set", "document.namespace", "finance")
	require.NoError(t, err)

	out, err := execute(t, "", "--config", cfgPath, "config", "get", "document.namespace")
	require.NoError(t, err)
	assert.Equal(t, "finance\n", out)

	out, err = execute(t, "", "--config", cfgPath, "config", "get", "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "source: dir")

	out, err = execute(t, "", "--config", cfgPath, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Config OK")

	_, err = execute(t, "", "--config", cfgPath, "config", "unset", "document.namespace")
	require.NoError(t, err)
	_, err = execute(t, "", "--config", cfgPath, "config", "get", "document.namespace")
	assert.ErrorContains(t, err, "not found")

	out, err = execute(t, "", "--config", cfgPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", out)

	_, err = execute(t, "", "--config", cfgPath, "config", "set", "catalog.cache", "redis")
	require.NoError(t, err, "invalid values are saved with a warning")
	_, err = execute(t, "", "--config", cfgPath, "config", "validate")
	assert.ErrorContains(t, err, "1 issue")
}

func TestVersionAndStatus(t *testing.T) {
	cfgPath := setupHome(t)

	out, err := execute(t, "", "--config", cfgPath, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "agentwiz "))

	out, err = execute(t, "", "--config", cfgPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "cache=sqlite")
	assert.Contains(t, out, "templates only (provider none)")
}
