package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/liuxd6825/pageflow/common"
)

const defaultConfigFileName = "config.json"

// globalFlags contains the config values that apply to every sub-command.
type globalFlags struct {
	configFilePath string
	noColor        bool
	logOutput      string
	logFormat      string
	verbose        bool
}

func getDefaultFlags(homeFolder string) globalFlags {
	return globalFlags{
		configFilePath: filepath.Join(homeFolder, "pageflow", defaultConfigFileName),
		logOutput:      "stderr",
	}
}

func getFlags(defaultFlags globalFlags, env map[string]string) globalFlags {
	result := defaultFlags

	if val, ok := env["PAGEFLOW_CONFIG"]; ok {
		result.configFilePath = val
	}
	if val, ok := env["PAGEFLOW_LOG_OUTPUT"]; ok {
		result.logOutput = val
	}
	if val, ok := env["PAGEFLOW_LOG_FORMAT"]; ok {
		result.logFormat = val
	}
	if env["PAGEFLOW_NO_COLOR"] != "" {
		result.noColor = true
	}
	// Support https://no-color.org/, even an empty value disables colors.
	if _, ok := env["NO_COLOR"]; ok {
		result.noColor = true
	}
	return result
}

// launchFunc opens the browser a session drives.
type launchFunc func(ctx context.Context, gs *globalState, conf Config) (common.Browser, error)

// globalState holds everything the commands touch outside of their
// arguments, so tests can swap the filesystem, the streams, the
// environment and the browser.
type globalState struct {
	ctx context.Context

	fs      afero.Fs
	getwd   func() (string, error)
	args    []string
	envVars map[string]string

	defaultFlags, flags globalFlags

	console *console
	osExit  func(int)

	logger         *logrus.Logger
	fallbackLogger logrus.FieldLogger

	launch launchFunc
}

func newGlobalState(ctx context.Context) *globalState {
	env := buildEnvMap(os.Environ())
	_, noColorsSet := env["NO_COLOR"]
	_, pageflowNoColorsSet := env["PAGEFLOW_NO_COLOR"]

	var stdout, stderr osFileW
	if noColorsSet || pageflowNoColorsSet {
		stdout = fdWriter{colorable.NewNonColorable(os.Stdout), os.Stdout.Fd()}
		stderr = fdWriter{colorable.NewNonColorable(os.Stderr), os.Stderr.Fd()}
	} else {
		stdout = fdWriter{colorable.NewColorableStdout(), os.Stdout.Fd()}
		stderr = fdWriter{colorable.NewColorableStderr(), os.Stderr.Fd()}
	}
	cons := newConsole(stdout, stderr, os.Stdin, !noColorsSet && !pageflowNoColorsSet, env["TERM"])

	confDir, err := os.UserConfigDir()
	if err != nil {
		confDir = ".config"
	}
	defaultFlags := getDefaultFlags(confDir)

	return &globalState{
		ctx:          ctx,
		fs:           afero.NewOsFs(),
		getwd:        os.Getwd,
		args:         append(make([]string, 0, len(os.Args)), os.Args...),
		envVars:      env,
		defaultFlags: defaultFlags,
		flags:        getFlags(defaultFlags, env),
		console:      cons,
		osExit:       os.Exit,
		logger:       cons.logger,
		fallbackLogger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
		launch: launchBrowser,
	}
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}
