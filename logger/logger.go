package logger

import (
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
)

// Logger is the logging surface shared by the client packages.
// expected args: error, map[string]interface{} or any printable value
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options configures New.
type Options struct {
	Prefix       string
	RollbarToken string
	Environment  string
	CodeVersion  string
}

// New returns a Rollbar-reporting logger when a token is configured,
// a plain stdout logger otherwise.
func New(opts Options) Logger {
	std := log.New(os.Stdout, opts.Prefix, log.LstdFlags|log.Lmicroseconds)
	if opts.RollbarToken == "" {
		return &StdLogger{std: std}
	}
	return NewRollbarLogger(std, opts)
}

// StdLogger writes to a *log.Logger only.
type StdLogger struct {
	std *log.Logger
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", level, msg)
	for _, arg := range args {
		l.std.Printf("  %+v", arg)
	}
}

func (l *StdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l *StdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l *StdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l *StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

// RollbarLogger mirrors every entry to Rollbar and to the std logger.
type RollbarLogger struct {
	StdLogger
}

var _ Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, opts Options) *RollbarLogger {
	rollbar.SetToken(opts.RollbarToken)
	rollbar.SetEnvironment(opts.Environment)
	if opts.CodeVersion != "" {
		rollbar.SetCodeVersion(opts.CodeVersion)
	}
	if host, err := os.Hostname(); err == nil {
		rollbar.SetServerHost(host)
	}
	return &RollbarLogger{StdLogger{std: std}}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(append([]interface{}{msg}, args...)...)
	l.print("DEBUG", msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(append([]interface{}{msg}, args...)...)
	l.print("INFO", msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(append([]interface{}{msg}, args...)...)
	l.print("WARN", msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(append([]interface{}{msg}, args...)...)
	l.print("ERROR", msg, args)
}

// Flush blocks until queued Rollbar items are sent.
func (l *RollbarLogger) Flush() {
	rollbar.Wait()
}

// Flush waits for pending reports of loggers that send asynchronously.
// Call it before the process exits; os.Exit skips deferred calls.
func Flush(l Logger) {
	if f, ok := l.(interface{ Flush() }); ok {
		f.Flush()
	}
}

// Discard is a Logger that drops everything; handy in tests.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
