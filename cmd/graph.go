package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liuxd6825/pageflow/entities"
	"github.com/liuxd6825/pageflow/navigation"
	"github.com/liuxd6825/pageflow/session"
)

// cmdGraph prints the navigation graph of the entities.
type cmdGraph struct {
	gs       *globalState
	validate bool
	format   string
}

// buildGraph registers every entity over a registry without a browser.
func buildGraph() (*navigation.Registry, []entities.Entity, error) {
	reg := navigation.NewRegistry()
	env := entities.NewEnv(navigation.NewNavigator(reg, nil))
	all := entities.All(env)
	if err := entities.Register(reg, all...); err != nil {
		return nil, nil, err
	}
	return reg, all, nil
}

func (c *cmdGraph) run(_ *cobra.Command, _ []string) error {
	reg, all, err := buildGraph()
	if err != nil {
		return err
	}
	if c.validate {
		c.gs.console.printf("%s navigation graph is valid: %d destinations of %d entities\n",
			c.gs.console.colorize("✓", colorGreen), len(reg.Keys()), len(all))
		return nil
	}

	chains := make(map[string][]string)
	for _, key := range reg.Keys() {
		chain, err := reg.Chain(key)
		if err != nil {
			return err
		}
		names := make([]string, len(chain))
		for i, k := range chain {
			names[i] = k.String()
		}
		chains[key.String()] = names
	}

	switch c.format {
	case "yaml":
		type entityGraph struct {
			Destinations map[string][]string `yaml:"destinations"`
			Operations   []string            `yaml:"operations"`
		}
		out := make(map[string]entityGraph, len(all))
		for _, e := range all {
			g := entityGraph{Destinations: make(map[string][]string), Operations: session.OperationNames(e)}
			for _, d := range e.Destinations() {
				g.Destinations[d.Name] = chains[d.Key().String()]
			}
			out[e.Type()] = g
		}
		return c.gs.console.printYAML(out)
	case "text":
		for _, key := range sortedKeys(chains) {
			c.gs.console.printf("%s\n", strings.Join(chains[key], " -> "))
		}
		return nil
	default:
		return fmt.Errorf("unsupported graph format %q, use text or yaml", c.format)
	}
}

func getCmdGraph(gs *globalState) *cobra.Command {
	c := &cmdGraph{gs: gs}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the navigation graph",
		Long: `Show the navigation graph.

Every destination is printed with the chain of prerequisites the navigator
walks to reach it, root first.`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	cmd.Flags().BoolVar(&c.validate, "validate", false, "only check the graph and report its size")
	cmd.Flags().StringVarP(&c.format, "format", "f", "text", "output format, text or yaml")
	return cmd
}
