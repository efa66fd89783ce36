// Package notifysvc implements resourcelist.NotificationSink.
package notifysvc

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/resourcelist"
)

var (
	_ resourcelist.NotificationSink = (*LogSink)(nil)
	_ resourcelist.NotificationSink = (*TerminalSink)(nil)
	_ resourcelist.NotificationSink = (*Recorder)(nil)
)

// LogSink forwards notifications to a core.Logger.
type LogSink struct {
	logger core.Logger
	args   []interface{}
}

// NewLogSink returns a sink logging through logger. args are appended to every entry (ie: the current academy.User).
func NewLogSink(logger core.Logger, args ...interface{}) *LogSink {
	return &LogSink{logger: logger, args: args}
}

func (s LogSink) NotifySuccess(msg string) { s.logger.Info(msg, s.args...) }
func (s LogSink) NotifyError(msg string)   { s.logger.Warn(msg, s.args...) }

// TerminalSink prints notifications, colored when the output is a terminal.
type TerminalSink struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func NewTerminalSink(w io.Writer, color bool) *TerminalSink {
	return &TerminalSink{w: w, color: color}
}

func (s *TerminalSink) NotifySuccess(msg string) { s.print("✔", text.FgGreen, msg) }
func (s *TerminalSink) NotifyError(msg string)   { s.print("✘", text.FgRed, msg) }

func (s *TerminalSink) print(mark string, color text.Color, msg string) {
	line := mark + " " + msg
	if s.color {
		line = color.Sprint(line)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, line)
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu        sync.Mutex
	successes []string
	errs      []string
}

func (r *Recorder) NotifySuccess(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *Recorder) NotifyError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, msg)
}

func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errs...)
}
