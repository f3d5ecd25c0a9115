package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/session"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// entry is a log call as rollbar-go understands it: a message or an error, plus a single map of extras.
type entry struct {
	msg    string
	err    error
	extras map[string]interface{}
	sess   *session.Session
}

// expected args: error, map[string]interface{}, session.Session; anything else ends up under "args".
func newEntry(msg string, args []interface{}) entry {
	e := entry{msg: msg, extras: make(map[string]interface{})}
	var other []interface{}
	for _, arg := range args {
		switch a := arg.(type) {
		case session.Session:
			if e.sess == nil {
				s := a
				e.sess = &s
			}
		case error:
			if e.err == nil {
				e.err = a
			} else {
				other = append(other, a.Error())
			}
		case map[string]interface{}:
			for k, v := range a {
				e.extras[k] = v
			}
		default:
			other = append(other, a)
		}
	}
	if len(other) > 0 {
		e.extras["args"] = other
	}
	if e.sess != nil {
		e.extras["session_id"] = e.sess.ID
		e.extras["session_state"] = e.sess.State.String()
	}
	return e
}

// rollbarArgs also sets the Rollbar person: only logged-in sessions are attributed.
func (e entry) rollbarArgs() []interface{} {
	if e.sess != nil && e.sess.IsAuthenticated() {
		rollbar.SetPerson(e.sess.ID, e.sess.Username, "")
	} else {
		rollbar.ClearPerson()
	}

	args := make([]interface{}, 0, 2)
	if e.err != nil {
		// message and error are mutually exclusive for rollbar-go
		e.extras["message"] = e.msg
		args = append(args, e.err)
	} else {
		args = append(args, e.msg)
	}
	if len(e.extras) > 0 {
		args = append(args, e.extras)
	}
	return args
}

// String renders e as a single `msg key=value ...` line, keys sorted.
func (e entry) String() string {
	var b strings.Builder
	b.WriteString(e.msg)
	if e.err != nil {
		fmt.Fprintf(&b, " error=%q", e.err.Error())
	}
	keys := make([]string, 0, len(e.extras))
	for k := range e.extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.extras[k])
	}
	return b.String()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	rollbar.Debug(e.rollbarArgs()...)
	l.std.Println(e)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	rollbar.Info(e.rollbarArgs()...)
	l.std.Println(e)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	rollbar.Warning(e.rollbarArgs()...)
	l.std.Println(e)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	rollbar.Error(e.rollbarArgs()...)
	l.std.Println(e)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	rollbar.Critical(e.rollbarArgs()...)
	l.std.Fatal(e)
}
