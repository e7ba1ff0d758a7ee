package viewstate

import (
	"net/url"
	"testing"
)

func TestDefaultsOmitted(t *testing.T) {
	s := New()
	if got := s.Encode(); got != "" {
		t.Errorf("Encode() of a fresh state = %q, want empty", got)
	}

	s.SetBool(KeySplit, false)
	s.SetFloat(KeyZoom, 12)
	s.Set(KeySource, "mapterhorn")
	if got := s.Encode(); got != "" {
		t.Errorf("Encode() with default values = %q, want empty", got)
	}
}

func TestEveryKeyHasDefault(t *testing.T) {
	s := New()
	for k, d := range Defaults {
		if d == "" {
			t.Errorf("key %q has an empty default", k)
		}
		if got := s.Get(k); got != d {
			t.Errorf("Get(%q) = %q, want %q", k, got, d)
		}
	}
}

func TestRoundTripPreservesUnknownKeys(t *testing.T) {
	s := New()
	s.SetBool(KeySplit, true)
	s.Set(KeySource2, "aws-terrarium")
	s.SetFloat(KeyRampMax, 4807.5)
	s.Set("futureFlag", "a b&c")

	decoded, err := Decode("?" + s.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !decoded.Bool(KeySplit) {
		t.Error("split lost")
	}
	if decoded.Get(KeySource2) != "aws-terrarium" {
		t.Errorf("src2 = %q", decoded.Get(KeySource2))
	}
	if decoded.Float(KeyRampMax) != 4807.5 {
		t.Errorf("rampMax = %v", decoded.Float(KeyRampMax))
	}
	if decoded.Get("futureFlag") != "a b&c" {
		t.Errorf("unknown key value = %q", decoded.Get("futureFlag"))
	}
	if u := decoded.Unknown(); len(u) != 1 || u[0] != "futureFlag" {
		t.Errorf("Unknown() = %v", u)
	}
}

func TestEncodeOnlyChangedKeys(t *testing.T) {
	s := New()
	s.Set(KeyHillshadeAlg, "igor")
	s.SetFloat(KeyPitch, 0)

	q, err := url.ParseQuery(s.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if len(q) != 2 {
		t.Fatalf("encoded keys = %v, want 2", q)
	}
	if q.Get(KeyHillshadeAlg) != "igor" || q.Get(KeyPitch) != "0" {
		t.Errorf("encoded = %v", q)
	}
}

func TestTypedGettersFallBack(t *testing.T) {
	s, err := Decode("z=abc&split=maybe&exportMax=x")
	if err != nil {
		t.Fatal(err)
	}
	if s.Float(KeyZoom) != 12 {
		t.Errorf("Float(z) = %v, want default 12", s.Float(KeyZoom))
	}
	if s.Bool(KeySplit) {
		t.Error("Bool(split) = true, want default false")
	}
	if s.Int(KeyExportMax) != 4096 {
		t.Errorf("Int(exportMax) = %d", s.Int(KeyExportMax))
	}
}

func TestResetAndDecodeError(t *testing.T) {
	s := New()
	s.Set(KeyRamp, "viridis")
	s.Reset(KeyRamp)
	if s.Get(KeyRamp) != "hypsometric" {
		t.Errorf("Reset did not restore default: %q", s.Get(KeyRamp))
	}

	if _, err := Decode("a=%zz"); err == nil {
		t.Error("expected error for malformed escape")
	}
}
