package id_test

import (
	"testing"

	"github.com/xraph/hookq/id"
)

func TestNewHookID_Unique(t *testing.T) {
	a := id.NewHookID()
	b := id.NewHookID()
	if a.String() == b.String() {
		t.Errorf("expected unique IDs, got %q twice", a)
	}
	if a.IsNil() {
		t.Error("new ID should not be nil")
	}
}

func TestParseHookID_RoundTrip(t *testing.T) {
	orig := id.NewHookID()
	parsed, err := id.ParseHookID(orig.String())
	if err != nil {
		t.Fatalf("ParseHookID: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed, orig)
	}
}

func TestParseHookID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"not-a-typeid",
		"job_01h2xcejqtf2nbrexx3vqjhp41", // wrong prefix
	}
	for _, c := range cases {
		if _, err := id.ParseHookID(c); err == nil {
			t.Errorf("ParseHookID(%q): expected error", c)
		}
	}
}

func TestHookID_NilBehavior(t *testing.T) {
	var nilID id.HookID
	if !nilID.IsNil() {
		t.Error("zero value should be nil")
	}
	if nilID.String() != "" {
		t.Errorf("nil ID String() = %q, want empty", nilID.String())
	}

	v, err := nilID.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Errorf("nil ID Value() = %v, want nil", v)
	}
}

func TestHookID_TextMarshaling(t *testing.T) {
	orig := id.NewHookID()
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var decoded id.HookID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded.String() != orig.String() {
		t.Errorf("text round trip mismatch: %q != %q", decoded, orig)
	}
}

func TestHookID_Scan(t *testing.T) {
	orig := id.NewHookID()

	var fromString id.HookID
	if err := fromString.Scan(orig.String()); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if fromString.String() != orig.String() {
		t.Errorf("Scan(string) = %q, want %q", fromString, orig)
	}

	var fromNil id.HookID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("Scan(nil) should yield the nil ID")
	}

	var fromInt id.HookID
	if err := fromInt.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}
