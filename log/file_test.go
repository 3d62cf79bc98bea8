package log

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileHookConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line      string
		expPath   string
		expLevels []logrus.Level
		expErr    string
	}{
		{line: "file=/pageflow.log", expPath: "/pageflow.log", expLevels: logrus.AllLevels},
		{line: "file=/pageflow.log,level=info", expPath: "/pageflow.log", expLevels: logrus.AllLevels[:5]},
		{line: "file=/pageflow.log,level=all", expPath: "/pageflow.log", expLevels: logrus.AllLevels},
		{line: "file=./pageflow.log", expPath: "./pageflow.log", expLevels: logrus.AllLevels},
		{line: "file", expErr: "filepath must not be empty"},
		{line: "file=,level=info", expErr: "key `file=` with no value"},
		{
			line:   "file=/pageflow.log,level=loud",
			expErr: `unknown log level "loud", use one of panic, fatal, error, warning, info, debug, trace or all`,
		},
		{line: "file=/tmp/pageflow.log,level=", expErr: "key `level=` with no value"},
		{line: "file=/tmp/pageflow.log,unknown=something", expErr: "unknown logfile config key unknown"},
		{
			line:   "unknown=something",
			expErr: "logfile configuration should be in the form `file=path-to-local-file` but is `unknown=something`",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.line, func(t *testing.T) {
			t.Parallel()

			conf, err := ParseFileHookConfig(test.line)
			if test.expErr != "" {
				require.ErrorContains(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expPath, conf.Path)
			assert.Equal(t, test.expLevels, conf.Levels)
		})
	}
}

func TestFileHookFromConfigLineOpen(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/runs", 0o755))
	cwd := func() (string, error) { return "/runs", nil }

	hook, err := FileHookFromConfigLine(fs, cwd, logrus.New(), "file=pageflow.log,level=warning")
	require.NoError(t, err)
	assert.Equal(t, logrus.AllLevels[:4], hook.Levels())
	exists, err := afero.Exists(fs, "/runs/pageflow.log")
	require.NoError(t, err)
	assert.True(t, exists, "relative paths are resolved against the working directory")

	_, err = FileHookFromConfigLine(fs, cwd, logrus.New(), "file=/missing/pageflow.log")
	assert.EqualError(t, err, "provided directory '/missing' does not exist")

	noCwd := func() (string, error) { return "", errors.New("getwd failed") }
	_, err = FileHookFromConfigLine(fs, noCwd, logrus.New(), "file=pageflow.log")
	assert.ErrorContains(t, err, "could not determine CWD: getwd failed")
}

func TestFileHookListen(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/logs", 0o755))
	hook, err := FileHookFromConfigLine(fs, nil, logrus.New(), "file=/logs/pageflow.log,level=info")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hook.Listen(ctx)
		close(done)
	}()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)

	logger.Info("reached host.All")
	require.Eventually(t, func() bool {
		data, err := afero.ReadFile(fs, "/logs/pageflow.log")
		return err == nil && len(data) > 0
	}, time.Second, 5*time.Millisecond, "a line is flushed once the queue is empty")

	logger.Debug("below the hook level")
	logger.Warn("closing the browser")
	cancel()
	<-done

	data, err := afero.ReadFile(fs, "/logs/pageflow.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "reached host.All")
	assert.Contains(t, string(data), "closing the browser")
	assert.NotContains(t, string(data), "below the hook level")
}
