package logger

import (
	"bytes"
	"fmt"

	"github.com/logrusorgru/aurora/v3"
)

const prefix = "storekeeper"

type Printer interface {
	Output(calldepth int, s string) error
}

// Logger reports the outcome of every operation. Skips and internals go to
// Debugf, soft no-ops to Warnf, statements to SQL.
type Logger interface {
	Successf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Error(err error)
	SQL(query string, args ...interface{})
}

type ColoredLogger struct {
	printer Printer
	debug   bool
	sql     bool
}

type BWLogger struct {
	printer Printer
	debug   bool
	sql     bool
}

var _ Logger = (*ColoredLogger)(nil)
var _ Logger = (*BWLogger)(nil)

func New(p Printer, color, sql, debug bool) Logger {
	if color {
		return NewColorLogger(p, sql, debug)
	}

	return NewBWLogger(p, sql, debug)
}

func NewColorLogger(p Printer, sql, debug bool) *ColoredLogger {
	return &ColoredLogger{
		printer: p,
		debug:   debug,
		sql:     sql,
	}
}

func NewBWLogger(p Printer, sql, debug bool) *BWLogger {
	return &BWLogger{
		printer: p,
		debug:   debug,
		sql:     sql,
	}
}

func (cl *ColoredLogger) Debugf(format string, args ...interface{}) {
	if cl.debug {
		_ = cl.printer.Output(2, aurora.Yellow(debugLine(format, args...)).String())
	}
}

func (cl *ColoredLogger) Successf(format string, args ...interface{}) {
	_ = cl.printer.Output(2, aurora.Green(successLine(format, args...)).String())
}

func (cl *ColoredLogger) Warnf(format string, args ...interface{}) {
	_ = cl.printer.Output(2, aurora.Magenta(warnLine(format, args...)).String())
}

func (cl *ColoredLogger) Error(err error) {
	_ = cl.printer.Output(2, aurora.Red(errorLine(err)).String())
}

func (cl *ColoredLogger) SQL(query string, args ...interface{}) {
	if cl.sql {
		_ = cl.printer.Output(2, aurora.Gray(15, sqlLine(query, args...)).String())
	}
}

func (bwl *BWLogger) Debugf(format string, args ...interface{}) {
	if bwl.debug {
		_ = bwl.printer.Output(2, debugLine(format, args...))
	}
}

func (bwl *BWLogger) Successf(format string, args ...interface{}) {
	_ = bwl.printer.Output(2, successLine(format, args...))
}

func (bwl *BWLogger) Warnf(format string, args ...interface{}) {
	_ = bwl.printer.Output(2, warnLine(format, args...))
}

func (bwl *BWLogger) Error(err error) {
	_ = bwl.printer.Output(2, errorLine(err))
}

func (bwl *BWLogger) SQL(query string, args ...interface{}) {
	if bwl.sql {
		_ = bwl.printer.Output(2, sqlLine(query, args...))
	}
}

func successLine(format string, args ...interface{}) string {
	return fmt.Sprintf(prefix+": "+format, args...)
}

func warnLine(format string, args ...interface{}) string {
	return fmt.Sprintf(prefix+" warning: "+format, args...)
}

func debugLine(format string, args ...interface{}) string {
	return fmt.Sprintf(prefix+" debug: "+format, args...)
}

func errorLine(err error) string {
	return fmt.Sprintf("%s error: %s", prefix, err.Error())
}

func sqlLine(query string, args ...interface{}) string {
	var buf bytes.Buffer
	buf.WriteString(prefix)
	buf.WriteString(" running sql: ")
	buf.WriteString(query)

	if len(args) == 0 {
		return buf.String()
	}

	buf.WriteString("\nquery parameters: ")
	for i := range args {
		if i+1 < len(args) {
			buf.WriteString(fmt.Sprintf("{%#v}, ", args[i]))
		} else {
			buf.WriteString(fmt.Sprintf("{%#v}", args[i]))
		}
	}

	return buf.String()
}
