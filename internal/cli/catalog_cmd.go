package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/domain"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the component catalog",
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogCheckCmd())
	cmd.AddCommand(newCatalogResolveCmd())
	return cmd
}

func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	rt, err := openRuntime()
	if err != nil {
		return nil, err
	}
	defer rt.Close()
	return rt.Loader.Load(cmd.Context())
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [kind]",
		Short:     "List catalog components",
		Long:      "List catalog components. kind is one of mcpServers, tools, knowledgeBases, llmProfiles, personas.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := domain.ComponentKinds
			if len(args) == 1 {
				kind, err := parseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []domain.ComponentKind{kind}
			}

			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), cat, kinds)
			return nil
		},
	}
}

func newCatalogCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report catalog integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			issues := catalog.Check(cat)
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue)
			}
			if len(issues) > 0 {
				return fmt.Errorf("catalog has %d issue(s)", len(issues))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s OK\n", cat.Version)
			return nil
		},
	}
}

func newCatalogResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <tool>...",
		Short: "Show the MCP servers required by a set of tools",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			tools, err := cat.Tools(args)
			if err != nil {
				return err
			}
			for _, s := range catalog.ResolveRequiredServers(tools, cat.Components.MCPServers) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", s.URN, s.DisplayName)
			}
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog, kinds []domain.ComponentKind) {
	for _, kind := range kinds {
		fmt.Fprintf(w, "%s (%d)\n", kind, cat.Count(kind))
		for _, r := range cat.Records(kind) {
			ref := r.URN
			if ref == "" {
				ref = r.ID
			}
			fmt.Fprintf(w, "  %-24s %-32s %s\n", r.ID, r.DisplayName, ref)
		}
	}
}

func parseKind(s string) (domain.ComponentKind, error) {
	for _, k := range domain.ComponentKinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q (want one of %s)", s, strings.Join(kindNames(), ", "))
}

func kindNames() []string {
	names := make([]string, len(domain.ComponentKinds))
	for i, k := range domain.ComponentKinds {
		names[i] = string(k)
	}
	return names
}
