package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdNavigate logs in and walks to a single destination.
type cmdNavigate struct {
	gs         *globalState
	args       []string
	screenshot bool
}

func (c *cmdNavigate) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", 0)
	flags.StringArrayVarP(&c.args, "arg", "a", nil, "navigation argument `key=value`, can be repeated")
	flags.BoolVar(&c.screenshot, "screenshot", false, "capture the page once the destination is reached")
	return flags
}

func (c *cmdNavigate) run(cmd *cobra.Command, posArgs []string) error {
	entity, name := posArgs[0], posArgs[1]
	navArgs, err := parseArgs(c.args)
	if err != nil {
		return err
	}

	cliConf, err := getConfig(cmd.Flags())
	if err != nil {
		return err
	}
	conf, err := getConsolidatedConfig(c.gs, cliConf)
	if err != nil {
		return err
	}

	s, closeSession, err := newSession(c.gs, conf)
	if err != nil {
		return err
	}
	defer closeSession()

	if err := s.Login(c.gs.ctx); err != nil {
		return err
	}
	view, err := s.Navigate(c.gs.ctx, entity, name, navArgs)
	if err != nil {
		return err
	}
	c.gs.console.printf("%s reached %s.%s (%s)\n", c.gs.console.colorize("✓", colorGreen), entity, name, viewName(view))

	if c.screenshot {
		path, err := s.Screenshot(c.gs.ctx, entity+"-"+name)
		if err != nil {
			return err
		}
		c.gs.console.printf("screenshot: %s\n", path)
	}
	return nil
}

func viewName(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}

func getCmdNavigate(gs *globalState) *cobra.Command {
	c := &cmdNavigate{gs: gs}

	cmd := &cobra.Command{
		Use:   "navigate <entity> <destination>",
		Short: "Log in and open a destination",
		Long: `Log in and open a destination of the navigation graph.

Prerequisites are reached first. Use "pageflow graph" to list destinations.`,
		Example: `  pageflow navigate content_view Edit -a entity_name=rhel9`,
		Args:    exactArgsWithMsg(2, "arg should be an entity and one of its destinations"),
		RunE:    c.run,
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(c.flagSet())
	cmd.Flags().AddFlagSet(configFlagSet())
	return cmd
}
