// Package console wires the `console` global (log/info/warn/error/debug),
// with level-tinted ANSI output gated on TTY detection the way the
// teacher's own lib/term builtins gate color on isatty (spec.md's
// console object is a host addition, not part of core ECMAScript).
package console

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/ecmacore/internal/interp"
)

const ID = "console"

type Plugin struct {
	Out io.Writer

	colorOnce sync.Once
	colorful  bool
}

func New(out io.Writer) *Plugin {
	if out == nil {
		out = os.Stdout
	}
	return &Plugin{Out: out}
}

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return []string{"object", "array"} }

func (p *Plugin) colorEnabled() bool {
	p.colorOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			p.colorful = false
			return
		}
		if f, ok := p.Out.(*os.File); ok {
			p.colorful = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
			return
		}
		p.colorful = false
	})
	return p.colorful
}

func (p *Plugin) tint(code string, s string) string {
	if !p.colorEnabled() {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	return nil
}

// SetDefaultGlobalBindings installs the `console` object on the global
// object once every plugin's intrinsics exist (interp.GlobalBinder).
func (p *Plugin) SetDefaultGlobalBindings(realm *interp.Realm) error {
	objectProto := realm.Intrinsic("%Object.prototype%")
	console := interp.OrdinaryObjectCreate(objectProto)
	console.Realm = realm

	console.CreateMethodProperty(interp.StringKey("log"), interp.ObjectValue(interp.NativeFunction(realm, "log", 0, p.logger(realm, "", "37"))))
	console.CreateMethodProperty(interp.StringKey("info"), interp.ObjectValue(interp.NativeFunction(realm, "info", 0, p.logger(realm, "", "36"))))
	console.CreateMethodProperty(interp.StringKey("debug"), interp.ObjectValue(interp.NativeFunction(realm, "debug", 0, p.logger(realm, "", "90"))))
	console.CreateMethodProperty(interp.StringKey("warn"), interp.ObjectValue(interp.NativeFunction(realm, "warn", 0, p.logger(realm, "WARN: ", "33"))))
	console.CreateMethodProperty(interp.StringKey("error"), interp.ObjectValue(interp.NativeFunction(realm, "error", 0, p.logger(realm, "ERROR: ", "31"))))

	realm.GlobalObject.CreateDataProperty(interp.StringKey("console"), interp.ObjectValue(console))
	realm.GlobalEnv.VarNames["console"] = true
	return nil
}

func (p *Plugin) logger(realm *interp.Realm, prefix, colorCode string) func(this interp.Value, args []interp.Value) interp.Completion {
	return func(this interp.Value, args []interp.Value) interp.Completion {
		parts := make([]string, len(args))
		for i, a := range args {
			s, c := consoleDisplay(realm, a)
			if interp.IsAbrupt(c) {
				return c
			}
			parts[i] = s
		}
		line := prefix + strings.Join(parts, " ")
		fmt.Fprintln(p.Out, p.tint(colorCode, line))
		return interp.NormalCompletion(interp.Undefined())
	}
}

// consoleDisplay renders a value the way console.log shows it: strings
// print bare (no quotes), non-callable objects via inspectObject, and
// everything else via ToString.
func consoleDisplay(realm *interp.Realm, v interp.Value) (string, interp.Completion) {
	if v.IsString() {
		return v.AsString(), interp.Completion{}
	}
	if v.IsObject() && !v.IsCallable() {
		return inspectObject(realm, v.AsObject(), map[*interp.Object]bool{}), interp.Completion{}
	}
	sC := interp.ToString(v)
	if interp.IsAbrupt(sC) {
		return "", sC
	}
	return sC.Value.AsString(), interp.Completion{}
}

func inspectObject(realm *interp.Realm, o *interp.Object, seen map[*interp.Object]bool) string {
	if seen[o] {
		return "[Circular]"
	}
	seen[o] = true

	if interp.IsArray(interp.ObjectValue(o)) {
		lengthC := o.Get(interp.StringKey("length"), interp.ObjectValue(o))
		n := 0
		if !interp.IsAbrupt(lengthC) {
			n = int(lengthC.Value.AsNumber())
		}
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i := 0; i < n; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			vC := o.Get(interp.StringKey(itoa(i)), interp.ObjectValue(o))
			if interp.IsAbrupt(vC) {
				buf.WriteString("undefined")
				continue
			}
			buf.WriteString(inspectValue(realm, vC.Value, seen))
		}
		buf.WriteByte(']')
		return buf.String()
	}

	if o.Call != nil {
		return "[Function]"
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range o.OwnPropertyKeys() {
		if k.IsSymbol() {
			continue
		}
		desc := o.GetOwnProperty(k)
		if desc == nil || desc.Enumerable == nil || !*desc.Enumerable {
			continue
		}
		if !first {
			buf.WriteString(", ")
		}
		first = false
		vC := o.Get(k, interp.ObjectValue(o))
		valStr := "undefined"
		if !interp.IsAbrupt(vC) {
			valStr = inspectValue(realm, vC.Value, seen)
		}
		buf.WriteString(k.String())
		buf.WriteString(": ")
		buf.WriteString(valStr)
	}
	buf.WriteByte('}')
	return buf.String()
}

func inspectValue(realm *interp.Realm, v interp.Value, seen map[*interp.Object]bool) string {
	if v.IsString() {
		return "'" + v.AsString() + "'"
	}
	if v.IsObject() {
		return inspectObject(realm, v.AsObject(), seen)
	}
	sC := interp.ToString(v)
	if interp.IsAbrupt(sC) {
		return "?"
	}
	return sC.Value.AsString()
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [12]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[p:])
}
