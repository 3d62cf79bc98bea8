package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/liuxd6825/pageflow/lib/consts"
)

// osFile is the part of os.File the console needs to detect a terminal.
type osFile interface {
	Fd() uintptr
}

type osFileW interface {
	io.Writer
	osFile
}

type osFileR interface {
	io.Reader
	osFile
}

// fdWriter keeps the descriptor of a file behind a wrapping writer.
type fdWriter struct {
	io.Writer
	fd uintptr
}

func (w fdWriter) Fd() uintptr { return w.fd }

// console syncs writes to stdout and stderr and knows whether they are a
// terminal.
type console struct {
	isTTY          bool
	outMx          *sync.Mutex
	Stdout, Stderr osFileW
	Stdin          osFileR
	stdout, stderr *consoleWriter
	theme          *color.Color
	logger         *logrus.Logger
}

func newConsole(stdout, stderr osFileW, stdin osFileR, colorize bool, termType string) *console {
	outMx := &sync.Mutex{}
	outCW := newConsoleWriter(stdout, outMx, termType)
	errCW := newConsoleWriter(stderr, outMx, termType)
	isTTY := outCW.isTTY && errCW.isTTY

	logger := &logrus.Logger{
		Out:       errCW,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	var th *color.Color
	if isTTY && colorize {
		th = color.New(color.FgCyan)
		th.EnableColor()
		logger.Formatter = &logrus.TextFormatter{ForceColors: true}
	}

	return &console{
		isTTY:  isTTY,
		outMx:  outMx,
		Stdout: outCW,
		Stderr: errCW,
		Stdin:  stdin,
		stdout: outCW,
		stderr: errCW,
		theme:  th,
		logger: logger,
	}
}

// applyTheme colors s when themes are enabled.
func (c *console) applyTheme(s string) string {
	if c.theme != nil {
		return c.theme.Sprint(s)
	}
	return s
}

func (c *console) banner() string {
	return c.applyTheme(strings.Trim(consts.Banner, "\n"))
}

// colorize returns s in attrs when themes are enabled.
func (c *console) colorize(s string, attrs ...color.Attribute) string {
	if c.theme == nil {
		return s
	}
	col := color.New(attrs...)
	col.EnableColor()
	return col.Sprint(s)
}

func (c *console) print(s string) {
	if _, err := fmt.Fprint(c.Stdout, s); err != nil {
		c.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

func (c *console) printf(s string, a ...any) {
	if _, err := fmt.Fprintf(c.Stdout, s, a...); err != nil {
		c.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

func (c *console) printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal YAML: %w", err)
	}
	c.print(string(data))
	return nil
}

// readPassword prompts on stderr and reads a line from stdin without
// echoing it. It fails when stdin is not a terminal.
func (c *console) readPassword(prompt string) (string, error) {
	fd := int(c.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal, cannot prompt for the password")
	}
	if _, err := fmt.Fprint(c.Stderr, prompt); err != nil {
		return "", err
	}
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(c.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading the password: %w", err)
	}
	return string(pw), nil
}

// A writer that syncs writes with a mutex and, if the output is a TTY,
// clears before newlines.
type consoleWriter struct {
	osFileW
	isTTY bool
	mutex *sync.Mutex
}

func newConsoleWriter(out osFileW, mx *sync.Mutex, termType string) *consoleWriter {
	isTTY := termType != "dumb" && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))
	return &consoleWriter{out, isTTY, mx}
}

func (w *consoleWriter) Write(p []byte) (n int, err error) {
	origLen := len(p)
	if w.isTTY {
		// Erase till the end of line with each new line.
		p = bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\x1b', '[', '0', 'K', '\n'})
	}

	w.mutex.Lock()
	n, err = w.osFileW.Write(p)
	w.mutex.Unlock()

	if err != nil && n < origLen {
		return n, err
	}
	return origLen, err
}
