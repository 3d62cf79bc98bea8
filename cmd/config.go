package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/entities"
	"github.com/liuxd6825/pageflow/errext"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/lib/types"
)

// Config is the consolidated configuration of a session. Every field is
// nullable so that each layer only overrides what it sets.
type Config struct {
	BaseURL  null.String `json:"baseURL" envconfig:"PAGEFLOW_BASE_URL"`
	Username null.String `json:"username" envconfig:"PAGEFLOW_USERNAME"`
	Password null.String `json:"password" envconfig:"PAGEFLOW_PASSWORD"`

	Headless          null.Bool          `json:"headless" envconfig:"PAGEFLOW_HEADLESS"`
	IgnoreHTTPSErrors null.Bool          `json:"ignoreHTTPSErrors" envconfig:"PAGEFLOW_IGNORE_HTTPS_ERRORS"`
	ExecutablePath    null.String        `json:"executablePath" envconfig:"PAGEFLOW_EXECUTABLE_PATH"`
	RemoteURL         null.String        `json:"remoteURL" envconfig:"PAGEFLOW_REMOTE_URL"`
	Proxy             null.String        `json:"proxy" envconfig:"PAGEFLOW_PROXY"`
	BrowserArgs       []string           `json:"browserArgs" envconfig:"PAGEFLOW_BROWSER_ARGS"`
	WindowSize        null.String        `json:"windowSize" envconfig:"PAGEFLOW_WINDOW_SIZE"`
	SlowMo            types.NullDuration `json:"slowMo" envconfig:"PAGEFLOW_SLOW_MO"`

	Timeout           types.NullDuration `json:"timeout" envconfig:"PAGEFLOW_TIMEOUT"`
	NavigationTimeout types.NullDuration `json:"navigationTimeout" envconfig:"PAGEFLOW_NAVIGATION_TIMEOUT"`
	PageSafeTimeout   types.NullDuration `json:"pageSafeTimeout" envconfig:"PAGEFLOW_PAGE_SAFE_TIMEOUT"`
	TaskTimeout       types.NullDuration `json:"taskTimeout" envconfig:"PAGEFLOW_TASK_TIMEOUT"`
	StepAttempts      null.Int           `json:"stepAttempts" envconfig:"PAGEFLOW_STEP_ATTEMPTS"`
	RetryDelay        types.NullDuration `json:"retryDelay" envconfig:"PAGEFLOW_RETRY_DELAY"`

	ScreenshotDir null.String `json:"screenshotDir" envconfig:"PAGEFLOW_SCREENSHOT_DIR"`
	TracesOutput  null.String `json:"tracesOutput" envconfig:"PAGEFLOW_TRACES_OUTPUT"`
	LogCategories null.String `json:"logCategories" envconfig:"PAGEFLOW_LOG_CATEGORIES"`
}

// Apply returns c overridden by the valid fields of cfg.
func (c Config) Apply(cfg Config) Config {
	if cfg.BaseURL.Valid {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Username.Valid {
		c.Username = cfg.Username
	}
	if cfg.Password.Valid {
		c.Password = cfg.Password
	}
	if cfg.Headless.Valid {
		c.Headless = cfg.Headless
	}
	if cfg.ExecutablePath.Valid {
		c.ExecutablePath = cfg.ExecutablePath
	}
	if cfg.RemoteURL.Valid {
		c.RemoteURL = cfg.RemoteURL
	}
	if cfg.Proxy.Valid {
		c.Proxy = cfg.Proxy
	}
	if cfg.IgnoreHTTPSErrors.Valid {
		c.IgnoreHTTPSErrors = cfg.IgnoreHTTPSErrors
	}
	if cfg.BrowserArgs != nil {
		c.BrowserArgs = cfg.BrowserArgs
	}
	if cfg.WindowSize.Valid {
		c.WindowSize = cfg.WindowSize
	}
	if cfg.SlowMo.Valid {
		c.SlowMo = cfg.SlowMo
	}
	if cfg.Timeout.Valid {
		c.Timeout = cfg.Timeout
	}
	if cfg.NavigationTimeout.Valid {
		c.NavigationTimeout = cfg.NavigationTimeout
	}
	if cfg.PageSafeTimeout.Valid {
		c.PageSafeTimeout = cfg.PageSafeTimeout
	}
	if cfg.TaskTimeout.Valid {
		c.TaskTimeout = cfg.TaskTimeout
	}
	if cfg.StepAttempts.Valid {
		c.StepAttempts = cfg.StepAttempts
	}
	if cfg.RetryDelay.Valid {
		c.RetryDelay = cfg.RetryDelay
	}
	if cfg.ScreenshotDir.Valid {
		c.ScreenshotDir = cfg.ScreenshotDir
	}
	if cfg.TracesOutput.Valid {
		c.TracesOutput = cfg.TracesOutput
	}
	if cfg.LogCategories.Valid {
		c.LogCategories = cfg.LogCategories
	}
	return c
}

// defaultConfig returns the values used when no layer sets them.
func defaultConfig() Config {
	return Config{
		Headless:          null.NewBool(true, false),
		WindowSize:        null.NewString(fmt.Sprintf("%dx%d", common.DefaultScreenWidth, common.DefaultScreenHeight), false),
		Timeout:           types.NewNullDuration(common.DefaultTimeout, false),
		NavigationTimeout: types.NewNullDuration(common.DefaultNavigationTimeout, false),
		PageSafeTimeout:   types.NewNullDuration(common.DefaultPageSafeTimeout, false),
		TaskTimeout:       types.NewNullDuration(entities.DefaultTaskTimeout, false),
		StepAttempts:      null.NewInt(int64(common.DefaultStepAttempts), false),
		RetryDelay:        types.NewNullDuration(common.DefaultStepRetryDelay, false),
		ScreenshotDir:     null.NewString("screenshots", false),
	}
}

func configFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", 0)
	flags.SortFlags = false
	flags.String("base-url", "", "URL of the application, opened before logging in")
	flags.StringP("username", "u", "", "user to log in as")
	flags.Bool("headless", true, "run the browser without a window")
	flags.String("executable-path", "", "path of the Chromium executable")
	flags.String("remote-url", "", "DevTools websocket `url` of a running browser to connect to instead of launching one")
	flags.String("proxy", "", "proxy server `url` of the browser")
	flags.Bool("ignore-https-errors", false, "accept invalid TLS certificates")
	flags.StringArray("browser-arg", nil, "extra browser `flag=value`, can be repeated")
	flags.String("window-size", "1920x1080", "browser window `width`x`height`")
	flags.Duration("slow-mo", 0, "pause before every browser action")
	flags.Duration("timeout", common.DefaultTimeout, "default timeout of element waits")
	flags.Duration("navigation-timeout", common.DefaultNavigationTimeout, "how long a view may take to be displayed")
	flags.Duration("page-safe-timeout", common.DefaultPageSafeTimeout, "how long the page may keep loading")
	flags.Duration("task-timeout", entities.DefaultTaskTimeout, "how long background tasks like publishing may run")
	flags.Int64("step-attempts", int64(common.DefaultStepAttempts), "runs of a navigation step failing with a transient error")
	flags.Duration("retry-delay", common.DefaultStepRetryDelay, "pause between two runs of a navigation step")
	flags.String("screenshot-dir", "screenshots", "`directory` screenshots are written to")
	flags.String("traces-output", "", "tracing output, e.g. otel=127.0.0.1:4317")
	flags.String("log-categories", "", "`regexp` of the library log categories to show")
	return flags
}

// getConfig reads the configuration set through CLI flags.
func getConfig(flags *pflag.FlagSet) (Config, error) {
	conf := Config{
		BaseURL:           getNullString(flags, "base-url"),
		Username:          getNullString(flags, "username"),
		Headless:          getNullBool(flags, "headless"),
		ExecutablePath:    getNullString(flags, "executable-path"),
		RemoteURL:         getNullString(flags, "remote-url"),
		Proxy:             getNullString(flags, "proxy"),
		IgnoreHTTPSErrors: getNullBool(flags, "ignore-https-errors"),
		WindowSize:        getNullString(flags, "window-size"),
		SlowMo:            getNullDuration(flags, "slow-mo"),
		Timeout:           getNullDuration(flags, "timeout"),
		NavigationTimeout: getNullDuration(flags, "navigation-timeout"),
		PageSafeTimeout:   getNullDuration(flags, "page-safe-timeout"),
		TaskTimeout:       getNullDuration(flags, "task-timeout"),
		StepAttempts:      getNullInt64(flags, "step-attempts"),
		RetryDelay:        getNullDuration(flags, "retry-delay"),
		ScreenshotDir:     getNullString(flags, "screenshot-dir"),
		TracesOutput:      getNullString(flags, "traces-output"),
		LogCategories:     getNullString(flags, "log-categories"),
	}
	if flags.Changed("browser-arg") {
		args, err := flags.GetStringArray("browser-arg")
		if err != nil {
			return conf, err
		}
		conf.BrowserArgs = args
	}
	return conf, nil
}

// readDiskConfig reads the JSON configuration file. A missing file is an
// empty configuration.
func readDiskConfig(gs *globalState) (Config, error) {
	data, err := afero.ReadFile(gs.fs, gs.flags.configFilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("couldn't load the configuration from %q: %w", gs.flags.configFilePath, err)
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("couldn't parse the configuration from %q: %w", gs.flags.configFilePath, err)
	}
	return conf, nil
}

// readEnvConfig reads the PAGEFLOW_* environment variables.
func readEnvConfig(envMap map[string]string) (Config, error) {
	var conf Config
	err := envconfig.Process("", &conf, func(key string) (string, bool) {
		v, ok := envMap[key]
		return v, ok
	})
	return conf, err
}

// getConsolidatedConfig merges, from lowest to highest priority: the
// defaults, the config file, the environment and the CLI flags.
func getConsolidatedConfig(gs *globalState, cliConf Config) (Config, error) {
	fileConf, err := readDiskConfig(gs)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	envConf, err := readEnvConfig(gs.envVars)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	conf := defaultConfig().Apply(fileConf).Apply(envConf).Apply(cliConf)
	if err := validateConfig(conf); err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	return conf, nil
}

func validateConfig(conf Config) error {
	var errs []error
	if _, _, err := conf.windowSize(); err != nil {
		errs = append(errs, err)
	}
	for name, d := range map[string]types.NullDuration{
		"timeout":            conf.Timeout,
		"navigation timeout": conf.NavigationTimeout,
		"page-safe timeout":  conf.PageSafeTimeout,
		"task timeout":       conf.TaskTimeout,
	} {
		if d.TimeDuration() <= 0 {
			errs = append(errs, fmt.Errorf("the %s must be positive, got %s", name, d.Duration))
		}
	}
	if conf.StepAttempts.Int64 < 1 {
		errs = append(errs, fmt.Errorf("step attempts must be at least 1, got %d", conf.StepAttempts.Int64))
	}
	if conf.SlowMo.TimeDuration() < 0 || conf.RetryDelay.TimeDuration() < 0 {
		errs = append(errs, errors.New("slow-mo and retry delay must not be negative"))
	}
	return errors.Join(errs...)
}

// windowSize parses "WIDTHxHEIGHT".
func (c Config) windowSize() (int64, int64, error) {
	w, h, ok := strings.Cut(c.WindowSize.String, "x")
	if !ok {
		return 0, 0, fmt.Errorf("window size must be WIDTHxHEIGHT, got %q", c.WindowSize.String)
	}
	width, errW := strconv.ParseInt(w, 10, 64)
	height, errH := strconv.ParseInt(h, 10, 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("window size must be WIDTHxHEIGHT, got %q", c.WindowSize.String)
	}
	return width, height, nil
}

// timeoutSettings returns the timeouts of the configuration.
func (c Config) timeoutSettings() *common.TimeoutSettings {
	ts := common.NewTimeoutSettings(nil)
	ts.SetDefaultTimeout(c.Timeout.TimeDuration())
	ts.SetDefaultNavigationTimeout(c.NavigationTimeout.TimeDuration())
	ts.SetDefaultPageSafeTimeout(c.PageSafeTimeout.TimeDuration())
	return ts
}
