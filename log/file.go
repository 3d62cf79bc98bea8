// Package log implements the category logger used by the UI layer and the
// logrus hooks used by the pageflow command.
package log

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/liuxd6825/pageflow/lib/strvals"
)

const fileHookQueue = 100

// FileHookConfig is a parsed `file=path[,level=lvl]` log output.
type FileHookConfig struct {
	Path   string
	Levels []logrus.Level
}

// ParseFileHookConfig parses a --log-output line of the file kind.
func ParseFileHookConfig(line string) (FileHookConfig, error) {
	conf := FileHookConfig{Levels: logrus.AllLevels}
	if kind, _, _ := strings.Cut(line, "="); kind != "file" {
		return conf, fmt.Errorf("logfile configuration should be in the form `file=path-to-local-file` but is `%s`", line)
	}
	tokens, err := strvals.Parse(line)
	if err != nil {
		return conf, fmt.Errorf("error while parsing logfile configuration %w", err)
	}
	for _, token := range tokens {
		switch token.Key {
		case "file":
			conf.Path = token.Value
		case "level":
			if conf.Levels, err = parseLevels(token.Value); err != nil {
				return conf, err
			}
		default:
			return conf, fmt.Errorf("unknown logfile config key %s", token.Key)
		}
	}
	if conf.Path == "" {
		return conf, errors.New("filepath must not be empty")
	}
	return conf, nil
}

// parseLevels returns level and every level more severe. "all" keeps
// every level.
func parseLevels(level string) ([]logrus.Level, error) {
	if level == "all" {
		return logrus.AllLevels, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q, use one of panic, fatal, error, warning, info, debug, trace or all", level)
	}
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= lvl {
			levels = append(levels, l)
		}
	}
	return levels, nil
}

// FileHook appends log entries to a file. Fire only queues the entry;
// Listen does the writing and closes the file once its context is done.
type FileHook struct {
	levels   []logrus.Level
	queue    chan []byte
	out      io.WriteCloser
	fallback logrus.FieldLogger
}

// FileHookFromConfigLine parses line and opens its file for appending. A
// relative path is resolved against the directory returned by getCwd.
func FileHookFromConfigLine(
	fsys afero.Fs, getCwd func() (string, error),
	fallback logrus.FieldLogger, line string,
) (*FileHook, error) {
	conf, err := ParseFileHookConfig(line)
	if err != nil {
		return nil, err
	}
	out, err := openLogFile(fsys, getCwd, conf.Path)
	if err != nil {
		return nil, err
	}
	return newFileHook(out, conf.Levels, fallback), nil
}

func newFileHook(out io.WriteCloser, levels []logrus.Level, fallback logrus.FieldLogger) *FileHook {
	return &FileHook{
		levels:   levels,
		queue:    make(chan []byte, fileHookQueue),
		out:      out,
		fallback: fallback,
	}
}

func openLogFile(fsys afero.Fs, getCwd func() (string, error), path string) (afero.File, error) {
	if !filepath.IsAbs(path) {
		cwd, err := getCwd()
		if err != nil {
			return nil, fmt.Errorf("'%s' is a relative path but could not determine CWD: %w", path, err)
		}
		path = filepath.Join(cwd, path)
	}
	if _, err := fsys.Stat(filepath.Dir(path)); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("provided directory '%s' does not exist", filepath.Dir(path))
	}
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open logfile %s: %w", path, err)
	}
	return f, nil
}

// Listen writes queued entries until ctx is done, then writes what is
// still queued and closes the file. The file is flushed whenever the
// queue runs empty so it can be followed during long runs.
func (h *FileHook) Listen(ctx context.Context) {
	w := bufio.NewWriter(h.out)
	for {
		select {
		case line := <-h.queue:
			h.write(w, line, len(h.queue) == 0)
		case <-ctx.Done():
			for len(h.queue) > 0 {
				h.write(w, <-h.queue, false)
			}
			if err := w.Flush(); err != nil {
				h.fallback.Errorf("failed to flush logfile: %v", err)
			}
			if err := h.out.Close(); err != nil {
				h.fallback.Errorf("failed to close logfile: %v", err)
			}
			return
		}
	}
}

func (h *FileHook) write(w *bufio.Writer, line []byte, flush bool) {
	if _, err := w.Write(line); err != nil {
		h.fallback.Errorf("failed to write a log message to a logfile: %v", err)
		return
	}
	if flush {
		if err := w.Flush(); err != nil {
			h.fallback.Errorf("failed to flush logfile: %v", err)
		}
	}
}

// Fire implements logrus.Hook.
func (h *FileHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return fmt.Errorf("failed to get a log entry bytes: %w", err)
	}
	h.queue <- line
	return nil
}

// Levels implements logrus.Hook.
func (h *FileHook) Levels() []logrus.Level {
	return h.levels
}
