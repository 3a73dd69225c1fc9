package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/array"
	"github.com/funvibe/ecmacore/internal/plugins/console"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

func newRealm(t *testing.T, out *bytes.Buffer) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	plugins := []interp.Plugin{object.New(), iterator.New(), array.New(), console.New(out)}
	if err := interp.RegisterPlugins(realm, plugins); err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	return realm
}

func TestConsoleLogPlainStringsNoColor(t *testing.T) {
	var out bytes.Buffer
	realm := newRealm(t, &out)

	logFn := realm.GlobalObject.Get(interp.StringKey("console"), interp.ObjectValue(realm.GlobalObject))
	if interp.IsAbrupt(logFn) {
		t.Fatalf("console not on global object: %v", logFn)
	}
	logMethod := logFn.Value.AsObject().Get(interp.StringKey("log"), logFn.Value)
	if interp.IsAbrupt(logMethod) || !logMethod.Value.IsCallable() {
		t.Fatal("console.log missing or not callable")
	}

	c := logMethod.Value.AsObject().Call(interp.Undefined(), []interp.Value{interp.String("hello"), interp.Number(42)})
	if interp.IsAbrupt(c) {
		t.Fatalf("console.log threw: %v", c)
	}

	got := out.String()
	// out is a *bytes.Buffer, never an *os.File, so color detection must
	// resolve to "off" regardless of environment — no ANSI escapes here.
	if strings.Contains(got, "\033[") {
		t.Fatalf("console.log to a buffer emitted ANSI escapes: %q", got)
	}
	if got != "hello 42\n" {
		t.Fatalf("console.log output = %q, want %q", got, "hello 42\n")
	}
}

func TestConsoleWarnErrorPrefixes(t *testing.T) {
	var out bytes.Buffer
	realm := newRealm(t, &out)
	consoleObj := realm.GlobalObject.Get(interp.StringKey("console"), interp.ObjectValue(realm.GlobalObject)).Value.AsObject()

	warn := consoleObj.Get(interp.StringKey("warn"), interp.ObjectValue(consoleObj)).Value
	warn.AsObject().Call(interp.Undefined(), []interp.Value{interp.String("careful")})
	if !strings.HasPrefix(out.String(), "WARN: careful") {
		t.Fatalf("console.warn output = %q, want WARN: prefix", out.String())
	}

	out.Reset()
	errFn := consoleObj.Get(interp.StringKey("error"), interp.ObjectValue(consoleObj)).Value
	errFn.AsObject().Call(interp.Undefined(), []interp.Value{interp.String("boom")})
	if !strings.HasPrefix(out.String(), "ERROR: boom") {
		t.Fatalf("console.error output = %q, want ERROR: prefix", out.String())
	}
}

func TestConsoleLogInspectsObjectsAndArrays(t *testing.T) {
	var out bytes.Buffer
	realm := newRealm(t, &out)
	consoleObj := realm.GlobalObject.Get(interp.StringKey("console"), interp.ObjectValue(realm.GlobalObject)).Value.AsObject()
	logMethod := consoleObj.Get(interp.StringKey("log"), interp.ObjectValue(consoleObj)).Value

	arr := interp.ArrayCreate(realm, 0)
	arr.CreateDataProperty(interp.StringKey("0"), interp.Number(1))
	arr.CreateDataProperty(interp.StringKey("1"), interp.String("x"))

	logMethod.AsObject().Call(interp.Undefined(), []interp.Value{interp.ObjectValue(arr)})
	if got := out.String(); got != "[1, 'x']\n" {
		t.Fatalf("console.log(array) = %q, want %q", got, "[1, 'x']\n")
	}
}
