package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/liuxd6825/pageflow/scenario"
)

const (
	colorGreen = color.FgGreen
	colorRed   = color.FgRed
	colorGray  = color.FgHiBlack
)

// cmdRun runs a scenario file.
type cmdRun struct {
	gs  *globalState
	out string
}

func (c *cmdRun) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", 0)
	flags.StringVarP(&c.out, "out", "o", "", "write the JSON report to `file`")
	return flags
}

func (c *cmdRun) run(cmd *cobra.Command, args []string) (err error) {
	sc, err := scenario.Load(c.gs.fs, args[0])
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

	c.gs.console.printf("%s\n\n  scenario: %s (%d steps)\n  session:  %s\n\n",
		c.gs.console.banner(), sc.Name, len(sc.Steps), s.ID)

	runner := scenario.NewRunner(s, c.gs.logger)
	report, runErr := runner.Run(c.gs.ctx, sc)
	c.printReport(report)

	if c.out != "" {
		if err := report.WriteFile(c.gs.fs, c.out); err != nil {
			c.gs.logger.WithError(err).Error("couldn't write the report")
			if runErr == nil {
				return fmt.Errorf("writing the report: %w", err)
			}
		}
	}
	return runErr
}

func (c *cmdRun) printReport(report *scenario.Report) {
	cons := c.gs.console
	for _, res := range report.Steps {
		switch res.Status {
		case scenario.StatusPassed:
			cons.printf("  %s %s %s\n", cons.colorize("✓", colorGreen), res.Step.Title(),
				cons.colorize(res.Duration.String(), colorGray))
		case scenario.StatusFailed:
			cons.printf("  %s %s: %s\n", cons.colorize("✗", colorRed), res.Step.Title(), res.Error)
			if res.Hint != "" {
				cons.printf("      hint: %s\n", res.Hint)
			}
		default:
			cons.printf("  %s %s\n", cons.colorize("-", colorGray), res.Step.Title())
		}
	}
	passed, failed, skipped := report.Counts()
	cons.printf("\n  %d passed, %d failed, %d skipped\n", passed, failed, skipped)
}

func getCmdRun(gs *globalState) *cobra.Command {
	c := &cmdRun{gs: gs}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario",
		Long: `Run a scenario.

The scenario file lists entity operations; they run one after the other in
a single browser session.`,
		Example: `  pageflow run publish.yaml --out report.json`,
		Args:    exactArgsWithMsg(1, "arg should be the path of a scenario file"),
		RunE:    c.run,
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(c.flagSet())
	cmd.Flags().AddFlagSet(configFlagSet())
	return cmd
}
