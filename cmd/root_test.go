package cmd

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/pageflow/common"
	"github.com/liuxd6825/pageflow/common/browsertest"
	"github.com/liuxd6825/pageflow/errext/exitcodes"
	"github.com/liuxd6825/pageflow/lib/testutils"
)

type bufferStringer interface {
	io.ReadWriter
	String() string
	Bytes() []byte
}

type globalTestState struct {
	*globalState
	cancel func()

	stdOut, stdErr bufferStringer
	loggerHook     *testutils.SimpleLogrusHook
	browser        *browsertest.Fake
	launchedWith   *Config

	expectedExitCode int
}

// A thread-safe buffer implementation.
type safeBuffer struct {
	b bytes.Buffer
	m sync.RWMutex
}

func (b *safeBuffer) Read(p []byte) (n int, err error) {
	b.m.RLock()
	defer b.m.RUnlock()
	return b.b.Read(p)
}

func (b *safeBuffer) Write(p []byte) (n int, err error) {
	b.m.Lock()
	defer b.m.Unlock()
	return b.b.Write(p)
}

func (b *safeBuffer) String() string {
	b.m.RLock()
	defer b.m.RUnlock()
	return b.b.String()
}

func (b *safeBuffer) Bytes() []byte {
	b.m.RLock()
	defer b.m.RUnlock()
	return b.b.Bytes()
}

// noTTY is a descriptor no terminal check accepts.
const noTTY = ^uintptr(0)

type testOSFileW struct {
	io.Writer
}

func (f *testOSFileW) Fd() uintptr {
	return noTTY
}

type testOSFileR struct {
	io.Reader
}

func (f *testOSFileR) Fd() uintptr {
	return noTTY
}

func newGlobalTestState(t *testing.T) *globalTestState {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/test", 0o755))

	ts := &globalTestState{
		cancel:  cancel,
		stdOut:  &safeBuffer{},
		stdErr:  &safeBuffer{},
		browser: browsertest.New(),
	}

	cons := newConsole(&testOSFileW{ts.stdOut}, &testOSFileW{ts.stdErr}, &testOSFileR{&safeBuffer{}}, false, "")
	logger := cons.logger
	logger.SetLevel(logrus.InfoLevel)
	ts.loggerHook = testutils.NewLogHook()
	logger.AddHook(ts.loggerHook)

	osExitCalled := false
	defaultOsExitHandle := func(exitCode int) {
		cancel()
		osExitCalled = true
		assert.Equal(t, ts.expectedExitCode, exitCode)
	}
	t.Cleanup(func() {
		if ts.expectedExitCode > 0 {
			// Ensure that, if we expected an error, the os.Exit() mock was called.
			assert.Truef(t, osExitCalled, "expected exit code %d, but the os.Exit() mock was not called", ts.expectedExitCode)
		}
	})

	defaultFlags := getDefaultFlags("/test/.config")
	ts.globalState = &globalState{
		ctx:            ctx,
		fs:             fs,
		getwd:          func() (string, error) { return "/test", nil },
		args:           []string{},
		envVars:        map[string]string{},
		defaultFlags:   defaultFlags,
		flags:          defaultFlags,
		console:        cons,
		osExit:         defaultOsExitHandle,
		logger:         logger,
		fallbackLogger: logger,
		launch: func(_ context.Context, _ *globalState, conf Config) (common.Browser, error) {
			ts.launchedWith = &conf
			return ts.browser, nil
		},
	}
	return ts
}

func TestVersion(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "version"}
	newRootCommand(ts.globalState).execute()

	assert.Contains(t, ts.stdOut.String(), "pageflow v0.3.0")
}

func TestVersionJSON(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "version", "--json"}
	newRootCommand(ts.globalState).execute()

	assert.Contains(t, ts.stdOut.String(), `"version":"v0.3.0"`)
}

func TestUnsupportedLogOutput(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "--log-output", "loki", "version"}
	ts.expectedExitCode = int(exitcodes.InvalidConfig)
	newRootCommand(ts.globalState).execute()

	assert.True(t, testutils.LogContains(ts.loggerHook.Drain(), logrus.ErrorLevel, "unsupported log output 'loki'"))
}

func TestLogOutputFile(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "-v", "--log-output", "file=./pageflow.log", "--log-format", "json", "graph", "--validate"}
	newRootCommand(ts.globalState).execute()

	data, err := afero.ReadFile(ts.fs, "/test/pageflow.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pageflow version: v0.3.0`)
	assert.NotContains(t, ts.stdErr.String(), "pageflow version")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t)
	ts.args = []string{"pageflow", "publish"}
	ts.expectedExitCode = -1
	newRootCommand(ts.globalState).execute()

	assert.True(t, testutils.LogContains(ts.loggerHook.Drain(), logrus.ErrorLevel, `unknown command "publish"`))
}
