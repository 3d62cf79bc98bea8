package log

import (
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is a category logger. Every line carries the category it was
// logged under (e.g. "Navigator:Resolve", "Table:Read") and the time elapsed
// since the previous line, which makes slow UI steps easy to spot.
type Logger struct {
	Log            *logrus.Logger
	clock          *clock
	fields         logrus.Fields
	debugOverride  bool
	categoryFilter *regexp.Regexp
}

// clock remembers when the last line was logged. Loggers derived with With
// share it, so elapsed times stay relative to the previous line of the run.
type clock struct {
	mu   sync.Mutex
	last int64
}

// NewNullLogger will create a logger where log lines will
// be discarded and not logged anywhere.
func NewNullLogger() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return New(log, false, nil)
}

// New creates a new logger. With debugOverride set, lines below the level of
// logger are still printed.
func New(logger *logrus.Logger, debugOverride bool, categoryFilter *regexp.Regexp) *Logger {
	return &Logger{
		Log:            logger,
		clock:          &clock{},
		debugOverride:  debugOverride,
		categoryFilter: categoryFilter,
	}
}

// NewWithCategoryFilter is like New but compiles the category filter from a
// string; an empty filter logs every category.
func NewWithCategoryFilter(logger *logrus.Logger, debugOverride bool, filter string) (*Logger, error) {
	if filter == "" {
		return New(logger, debugOverride, nil), nil
	}
	re, err := regexp.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid log category filter %q: %w", filter, err)
	}
	return New(logger, debugOverride, re), nil
}

// With returns a logger adding key to every line, e.g. the session id.
func (l *Logger) With(key string, value interface{}) *Logger {
	if l == nil {
		return nil
	}
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value

	child := *l
	child.fields = fields
	return &child
}

func (l *Logger) Debugf(category string, msg string, args ...interface{}) {
	l.Logf(logrus.DebugLevel, category, msg, args...)
}

func (l *Logger) Errorf(category string, msg string, args ...interface{}) {
	l.Logf(logrus.ErrorLevel, category, msg, args...)
}

func (l *Logger) Infof(category string, msg string, args ...interface{}) {
	l.Logf(logrus.InfoLevel, category, msg, args...)
}

func (l *Logger) Warnf(category string, msg string, args ...interface{}) {
	l.Logf(logrus.WarnLevel, category, msg, args...)
}

func (l *Logger) Logf(level logrus.Level, category string, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	if l.Log != nil && l.Log.GetLevel() < level && !l.debugOverride {
		return
	}
	elapsed := l.clock.tick()

	if l.categoryFilter != nil && !l.categoryFilter.MatchString(category) {
		return
	}
	if l.Log == nil {
		magenta := color.New(color.FgMagenta).SprintFunc()
		fmt.Printf("%s: %s - %s ms\n", magenta(category), fmt.Sprintf(msg, args...), magenta(elapsed))
		return
	}
	entry := l.Log.WithFields(l.fields).WithFields(logrus.Fields{
		"category": category,
		"elapsed":  fmt.Sprintf("%d ms", elapsed),
	})
	if l.Log.GetLevel() < level {
		entry.Printf(msg, args...)
		return
	}
	entry.Logf(level, msg, args...)
}

// tick returns the milliseconds since the previous call, 0 on the first.
func (c *clock) tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	var elapsed int64
	if c.last != 0 {
		elapsed = now - c.last
	}
	c.last = now
	return elapsed
}
