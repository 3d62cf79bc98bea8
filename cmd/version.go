package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/liuxd6825/pageflow/lib/consts"
)

type versionCmd struct {
	gs     *globalState
	isJSON bool
}

func (c *versionCmd) run(_ *cobra.Command, _ []string) error {
	if !c.isJSON {
		c.gs.console.printf("pageflow v%s\n", consts.FullVersion())
		return nil
	}

	details := map[string]string{
		"version":    "v" + consts.Version,
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
	}
	jsonDetails, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed produce a JSON version details: %w", err)
	}
	c.gs.console.printf("%s\n", jsonDetails)
	return nil
}

func getCmdVersion(gs *globalState) *cobra.Command {
	versionCmd := &versionCmd{gs: gs}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Args:  cobra.NoArgs,
		RunE:  versionCmd.run,
	}

	cmd.Flags().BoolVar(&versionCmd.isJSON, "json", false, "if set, output version information will be in JSON format")

	return cmd
}
