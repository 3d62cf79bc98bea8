// Package cmd implements the pageflow command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/lib/consts"
	"github.com/liuxd6825/pageflow/log"
)

const waitLoggerCloseTimeout = time.Second * 5

// rootCommand keeps what the root pageflow command needs.
type rootCommand struct {
	globalState *globalState

	cmd            *cobra.Command
	loggerStopped  <-chan struct{}
	loggerIsRemote bool
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{globalState: gs}
	// the base command when called without any subcommands.
	rootCmd := &cobra.Command{
		Use:               "pageflow",
		Short:             "page-object automation for content management screens",
		Long:              "\n" + gs.console.banner(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}

	rootCmd.PersistentFlags().AddFlagSet(rootCmdPersistentFlagSet(gs))
	rootCmd.SetArgs(gs.args[1:])
	rootCmd.SetOut(gs.console.Stdout)
	rootCmd.SetErr(gs.console.Stderr)
	rootCmd.SetIn(gs.console.Stdin)

	rootCmd.AddCommand(
		getCmdGraph(gs),
		getCmdNavigate(gs),
		getCmdRun(gs),
		getCmdVersion(gs),
	)

	c.cmd = rootCmd
	return c
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	var err error

	c.loggerStopped, err = c.setupLoggers()
	if err != nil {
		return err
	}
	select {
	case <-c.loggerStopped:
	default:
		c.loggerIsRemote = true
	}

	if c.globalState.flags.noColor {
		c.globalState.console.theme = nil
	}
	stdlog.SetOutput(c.globalState.logger.Writer())
	c.globalState.logger.Debugf("pageflow version: v%s", consts.FullVersion())
	return nil
}

func (c *rootCommand) execute() {
	ctx, cancel := context.WithCancel(c.globalState.ctx)
	defer cancel()
	c.globalState.ctx = ctx

	exitCode := -1
	defer func() {
		if r := recover(); r != nil {
			c.globalState.logger.WithField("panic", r).Error("unexpected panic")
			cancel()
			c.waitLogger()
			c.globalState.osExit(int(exitcodes.GoPanic))
		}
	}()

	err := c.cmd.Execute()
	if err == nil {
		cancel()
		c.waitLogger()
		return
	}

	if code, ok := errext.ExitCodeOf(err); ok {
		exitCode = int(code)
	}

	errText, fields := errext.Format(err)
	c.globalState.logger.WithFields(fields).Error(errText)
	if c.loggerIsRemote {
		c.globalState.fallbackLogger.WithFields(fields).Error(errText)
		cancel()
		c.waitLogger()
	}

	c.globalState.osExit(exitCode)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main().
func Execute() {
	gs := newGlobalState(context.Background())

	newRootCommand(gs).execute()
}

func (c *rootCommand) waitLogger() {
	if !c.loggerIsRemote {
		return
	}
	select {
	case <-c.loggerStopped:
	case <-time.After(waitLoggerCloseTimeout):
		c.globalState.fallbackLogger.Errorf("the logger didn't stop in %s", waitLoggerCloseTimeout)
	}
}

func rootCmdPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	// Defaults come from gs.flags, which already hold the environment
	// values, so both the flags and the environment variables work.
	flags.StringVar(&gs.flags.logOutput, "log-output", gs.flags.logOutput,
		"change the output for pageflow logs, possible values are stderr,stdout,none,file[=./path.fileformat]")
	flags.Lookup("log-output").DefValue = gs.defaultFlags.logOutput

	flags.StringVar(&gs.flags.logFormat, "log-format", gs.flags.logFormat, "log output format (text, json or raw)")
	flags.Lookup("log-format").DefValue = gs.defaultFlags.logFormat

	flags.StringVarP(&gs.flags.configFilePath, "config", "c", gs.flags.configFilePath, "JSON config file")
	// Set the default of the usage message explicitly, so things like
	// `PAGEFLOW_CONFIG="blah" pageflow run -h` don't print a weird value.
	flags.Lookup("config").DefValue = gs.defaultFlags.configFilePath
	must(cobra.MarkFlagFilename(flags, "config"))

	flags.BoolVar(&gs.flags.noColor, "no-color", gs.flags.noColor, "disable colored output")
	flags.Lookup("no-color").DefValue = fmt.Sprint(gs.defaultFlags.noColor)

	flags.BoolVarP(&gs.flags.verbose, "verbose", "v", gs.defaultFlags.verbose, "enable verbose logging")
	return flags
}

// RawFormatter does nothing with the message but print it.
type RawFormatter struct{}

// Format renders a single log entry.
func (f RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// setupLoggers configures the logger from the global flags. The returned
// channel is closed once the logger has flushed everything it buffered
// after the context is done; it is closed right away for synchronous
// outputs.
func (c *rootCommand) setupLoggers() (<-chan struct{}, error) {
	ch := make(chan struct{})
	close(ch)

	gs := c.globalState
	if gs.flags.verbose {
		gs.logger.SetLevel(logrus.DebugLevel)
	}

	switch line := gs.flags.logOutput; {
	case line == "stderr":
		gs.logger.SetOutput(gs.console.Stderr)
	case line == "stdout":
		gs.logger.SetOutput(gs.console.Stdout)
	case line == "none":
		gs.logger.SetOutput(io.Discard)
	case strings.HasPrefix(line, "file"):
		ch = make(chan struct{})
		hook, err := log.FileHookFromConfigLine(gs.fs, gs.getwd, gs.fallbackLogger, line)
		if err != nil {
			return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
		go func() {
			hook.Listen(gs.ctx)
			close(ch)
		}()
		gs.logger.AddHook(hook)
		gs.logger.SetOutput(io.Discard)
	default:
		return nil, errext.WithExitCodeIfNone(
			fmt.Errorf("unsupported log output '%s'", line), exitcodes.InvalidConfig)
	}

	switch gs.flags.logFormat {
	case "raw":
		gs.logger.SetFormatter(&RawFormatter{})
		gs.logger.Debug("Logger format: RAW")
	case "json":
		gs.logger.SetFormatter(&logrus.JSONFormatter{})
		gs.logger.Debug("Logger format: JSON")
	default:
		gs.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   gs.console.isTTY && !gs.flags.noColor,
			DisableColors: gs.flags.noColor,
		})
		gs.logger.Debug("Logger format: TEXT")
	}
	return ch, nil
}
