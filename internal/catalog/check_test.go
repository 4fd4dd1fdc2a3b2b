package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/catalog/catalogtest"
	"github.com/soyeahso/agentwiz/internal/domain"
)

func TestCheckFixtureIsClean(t *testing.T) {
	assert.Empty(t, catalog.Check(catalogtest.Load(t)))
}

func TestCheckReportsIntegrityIssues(t *testing.T) {
	cat := catalogtest.Load(t)
	cat.Components.Tools = append(cat.Components.Tools,
		tool("orphan", "urn:server:gone"),
		domain.Tool{Component: domain.Component{ID: "list-invoices", URN: "urn:tool:list-invoices-v2"}},
	)
	cat.Components.MCPServers = append(cat.Components.MCPServers, domain.Server{Component: domain.Component{ID: "nourn"}})

	issues := catalog.Check(cat)
	require.Len(t, issues, 3)

	var msgs []string
	for _, is := range issues {
		msgs = append(msgs, is.String())
	}
	assert.Contains(t, msgs, "mcpServers/nourn: missing urn")
	assert.Contains(t, msgs, "tools/list-invoices: duplicate id")
	assert.Contains(t, msgs, `tools/orphan: dependsOnServer "urn:server:gone" does not match any server`)
}
