package atcore

import (
	"errors"
	"testing"
)

func TestHandlerTableRegisterAppendsAndUpdates(t *testing.T) {
	tbl := newHandlerTable(3)

	var calls []string
	h := func(name string) Handler {
		return HandlerFunc(func(line []byte) { calls = append(calls, name) })
	}

	if err := tbl.register([]byte("AT"), h("first")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tbl.register([]byte("AT"), h("second")); err != nil {
		t.Fatalf("register update: %v", err)
	}
	if len(tbl.entries) != 1 {
		t.Fatalf("duplicate register should update in place, got %d entries", len(tbl.entries))
	}

	handler, _, ok := tbl.match([]byte("AT+CREG?"))
	if !ok {
		t.Fatal("expected match")
	}
	handler.Handle(nil)
	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("expected updated handler to fire, got %v", calls)
	}
}

func TestHandlerTableURCPrecedence(t *testing.T) {
	tbl := newHandlerTable(3)

	var order []string
	record := func(name string) Handler {
		return HandlerFunc(func(line []byte) { order = append(order, name) })
	}

	if err := tbl.register([]byte("+CREG"), record("ordinary")); err != nil {
		t.Fatal(err)
	}
	if err := tbl.registerURC([]byte("+CREG"), record("urc")); err != nil {
		t.Fatal(err)
	}

	if len(tbl.entries) != 1 {
		t.Fatalf("registerURC with duplicate prefix should replace, not add; got %d", len(tbl.entries))
	}

	h, _, ok := tbl.match([]byte("+CREG: 1"))
	if !ok {
		t.Fatal("expected match")
	}
	h.Handle(nil)
	if len(order) != 1 || order[0] != "urc" {
		t.Errorf("URC registration should win, got %v", order)
	}
}

func TestHandlerTableURCPrependsAheadOfOrdinary(t *testing.T) {
	tbl := newHandlerTable(3)
	noop := HandlerFunc(func([]byte) {})

	if err := tbl.register([]byte("OK"), noop); err != nil {
		t.Fatal(err)
	}
	if err := tbl.registerURC([]byte("+CMTI"), noop); err != nil {
		t.Fatal(err)
	}
	if string(tbl.entries[0].prefix) != "+CMTI" {
		t.Errorf("URC entry should be at index 0, got %q", tbl.entries[0].prefix)
	}
}

func TestHandlerTableFull(t *testing.T) {
	tbl := newHandlerTable(1)
	noop := HandlerFunc(func([]byte) {})

	if err := tbl.register([]byte("A"), noop); err != nil {
		t.Fatal(err)
	}
	if err := tbl.register([]byte("B"), noop); !errors.Is(err, ErrResource) {
		t.Errorf("register into full table = %v, want ErrResource", err)
	}
}

func TestHandlerTableUnregisterNotFound(t *testing.T) {
	tbl := newHandlerTable(2)
	if err := tbl.unregister([]byte("X")); !errors.Is(err, ErrNotFound) {
		t.Errorf("unregister missing = %v, want ErrNotFound", err)
	}
}

func TestHandlerTableEmptyPrefixRejected(t *testing.T) {
	tbl := newHandlerTable(2)
	noop := HandlerFunc(func([]byte) {})
	if err := tbl.register(nil, noop); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("register(nil prefix) = %v, want ErrInvalidArg", err)
	}
}

func TestHandlerTableMatchSkipsLeadingWhitespace(t *testing.T) {
	tbl := newHandlerTable(2)
	var got []byte
	tbl.register([]byte("+CSQ:"), HandlerFunc(func(line []byte) { got = line }))

	h, rest, ok := tbl.match([]byte("+CSQ:  15,99"))
	if !ok {
		t.Fatal("expected match")
	}
	h.Handle(rest)
	if string(got) != "15,99" {
		t.Errorf("rest = %q, want %q", got, "15,99")
	}
}
