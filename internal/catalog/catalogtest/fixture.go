// Package catalogtest provides a small in-memory component library for tests.
package catalogtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/logging"
)

// Index is a catalog index in the published JSON layout.
const Index = `{
  "version": "1.2.0",
  "lastUpdated": "2025-01-15",
  "description": "Test component library",
  "components": {
    "mcpServers": [
      {"id": "erp", "file": "mcp-servers/erp.yaml", "urn": "urn:server:erp", "displayName": "ERP Server", "category": "finance", "tags": ["erp"]},
      {"id": "crm", "file": "mcp-servers/crm.yaml", "urn": "urn:server:crm", "displayName": "CRM Server", "category": "sales", "tags": ["crm"]},
      {"id": "search", "file": "mcp-servers/search.yaml", "urn": "urn:server:search", "displayName": "Search Server", "category": "search", "tags": []}
    ],
    "tools": [
      {"id": "list-invoices", "file": "tools/list-invoices.yaml", "urn": "urn:tool:list-invoices", "displayName": "List Invoices", "dependsOnServer": "urn:server:erp", "category": "finance", "tags": ["invoices"]},
      {"id": "post-payment", "file": "tools/post-payment.yaml", "urn": "urn:tool:post-payment", "displayName": "Post Payment", "dependsOnServer": "urn:server:erp", "category": "finance", "tags": ["payments"]},
      {"id": "lookup-customer", "file": "tools/lookup-customer.yaml", "urn": "urn:tool:lookup-customer", "displayName": "Lookup Customer", "dependsOnServer": "urn:server:crm", "category": "sales", "tags": []},
      {"id": "summarize", "file": "tools/summarize.yaml", "urn": "urn:tool:summarize", "displayName": "Summarize", "dependsOnServer": "", "category": "general", "tags": []}
    ],
    "knowledgeBases": [
      {"id": "policies", "file": "knowledge-bases/policies.yaml", "urn": "urn:kb:policies", "displayName": "Finance Policies", "type": "AzureAISearch", "category": "finance", "tags": []},
      {"id": "ledger-docs", "file": "knowledge-bases/ledger-docs.yaml", "urn": "urn:kb:ledger-docs", "displayName": "Ledger Docs", "type": "PostgresPgvector", "category": "finance", "tags": []}
    ],
    "llmProfiles": [
      {"id": "precise", "file": "llm-profiles/precise.yaml", "displayName": "Precise", "temperature": 0.1, "useCase": "analysis", "tags": []},
      {"id": "creative", "file": "llm-profiles/creative.yaml", "displayName": "Creative", "temperature": 0.9, "useCase": "writing", "tags": []}
    ],
    "personas": [
      {"id": "finance-analyst", "file": "personas/finance-analyst.yaml", "displayName": "Finance Analyst", "domain": "Finance", "tone": "Precise", "tags": []},
      {"id": "support-agent", "file": "personas/support-agent.yaml", "displayName": "Support Agent", "domain": "Customer Support", "tone": "Friendly", "tags": []},
      {"id": "plain", "file": "", "displayName": "Plain Helper", "domain": "General", "tone": "Neutral", "tags": []}
    ]
  },
  "statistics": {"totalComponents": 14, "mcpServers": 3, "tools": 4, "knowledgeBases": 2, "llmProfiles": 2, "personas": 3}
}`

// Files maps catalog-relative paths to file contents, including the index.
var Files = map[string]string{
	catalog.DefaultIndexFile: Index,

	"mcp-servers/erp.yaml": `identity:
  urn: urn:server:erp
  displayName: ERP Server
url: https://erp.enterprise.com/mcp
protocol: streamable-http
authentication:
  type: oauth2
`,
	"mcp-servers/crm.yaml": `identity:
  urn: urn:server:crm
  displayName: CRM Server
url: https://crm.enterprise.com/mcp
protocol: sse
authentication:
  type: apiKey
`,
	"mcp-servers/search.yaml": `identity:
  urn: urn:server:search
  displayName: Search Server
url: https://search.enterprise.com/mcp
protocol: sse
authentication: {}
`,

	"tools/list-invoices.yaml": `toolTemplate:
  identity:
    urn: urn:tool:list-invoices
  name: list_invoices
  description: List open invoices
  mcp:
    serverRef:
      urn: urn:server:erp
    toolName: listInvoices
`,
	"tools/post-payment.yaml": `toolTemplate:
  identity:
    urn: urn:tool:post-payment
  name: post_payment
  description: Post a payment against an invoice
  mcp:
    serverRef:
      urn: urn:server:erp
    toolName: postPayment
`,
	"tools/lookup-customer.yaml": `toolTemplate:
  identity:
    urn: urn:tool:lookup-customer
  name: lookup_customer
  description: Find a customer record
  mcp:
    serverRef:
      urn: urn:server:crm
    toolName: lookupCustomer
`,
	"tools/summarize.yaml": `toolTemplate:
  identity:
    urn: urn:tool:summarize
  name: summarize
  description: Summarize text
`,

	"knowledge-bases/policies.yaml": `kbTemplate:
  identity:
    urn: urn:kb:policies
    name: finance-policies
  type: AzureAISearch
  connection:
    endpoint: https://search.enterprise.com
    index: policies
`,
	"knowledge-bases/ledger-docs.yaml": `kbTemplate:
  identity:
    urn: urn:kb:ledger-docs
    name: ledger-docs
  type: PostgresPgvector
  connection:
    host: pg.enterprise.com
    table: ledger_chunks
`,

	"llm-profiles/precise.yaml": `llmTemplate:
  provider: azure-openai
  model: gpt-4o
  parameters:
    temperature: 0.1
    topP: 0.9
    maxTokens: 4000
`,
	"llm-profiles/creative.yaml": `llmTemplate:
  provider: azure-openai
  model: gpt-4o
  parameters:
    temperature: 0.9
    topP: 1
    maxTokens: 2000
`,

	"personas/finance-analyst.yaml": `personaTemplate:
  agentType: FinanceAgent
  tone: Precise
  topics:
    - invoices
    - reconciliation
`,
	"personas/support-agent.yaml": `personaTemplate:
  agentType: SupportAgent
  tone: Friendly
  topics:
    - tickets
`,
}

// WriteDir writes Files under dir.
func WriteDir(t testing.TB, dir string) {
	t.Helper()
	for name, content := range Files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// Source returns an in-memory catalog.Source serving Files.
func Source() *MapSource {
	files := make(map[string][]byte, len(Files))
	for k, v := range Files {
		files[k] = []byte(v)
	}
	return &MapSource{Files: files}
}

// Load returns the fixture catalog fully resolved.
func Load(t testing.TB) *catalog.Catalog {
	t.Helper()
	l := catalog.NewLoader(Source(), nil, logging.New(nil, "silent"), catalog.LoaderOptions{})
	cat, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return cat
}
