package clipboard

import (
	"bytes"
	"testing"
)

func TestOpenClose(t *testing.T) {
	var cb Clipboard
	if !cb.Open(42) {
		t.Fatal("first Open failed")
	}
	if cb.Open(99) {
		t.Error("second Open on an open clipboard should fail")
	}
	if cb.Time() != 42 {
		t.Errorf("Time = %d, want 42", cb.Time())
	}
	cb.Close()
	if !cb.Open(43) {
		t.Error("Open after Close failed")
	}
}

func TestAddGet(t *testing.T) {
	var cb Clipboard
	cb.Open(1)
	cb.Add(FormatText, []byte("hello"))
	cb.Close()

	if !cb.Has(FormatText) {
		t.Error("FormatText missing after Add")
	}
	if cb.Has(FormatHTML) {
		t.Error("FormatHTML present without Add")
	}
	if string(cb.Get(FormatText)) != "hello" {
		t.Errorf("Get = %q, want %q", cb.Get(FormatText), "hello")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	var cb Clipboard
	cb.Open(7)
	cb.Add(FormatText, []byte("plain"))
	cb.Add(FormatHTML, []byte("<b>rich</b>"))
	cb.Close()

	data := cb.Marshal()

	var out Clipboard
	if err := out.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(out.Get(FormatText)) != "plain" {
		t.Errorf("text = %q, want %q", out.Get(FormatText), "plain")
	}
	if string(out.Get(FormatHTML)) != "<b>rich</b>" {
		t.Errorf("html = %q, want %q", out.Get(FormatHTML), "<b>rich</b>")
	}
	if out.Has(FormatBitmap) {
		t.Error("bitmap present in round-trip without Add")
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// the coherence rule compares marshalled bytes; identical contents
	// must marshal identically
	var a, b Clipboard
	a.Add(FormatText, []byte("same"))
	b.Add(FormatText, []byte("same"))
	if !bytes.Equal(a.Marshal(), b.Marshal()) {
		t.Error("identical clipboards marshalled differently")
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	var cb Clipboard
	for _, data := range [][]byte{
		{},
		{0, 0, 0, 1},
		{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 9},
	} {
		if err := cb.Unmarshal(data); err == nil {
			t.Errorf("Unmarshal(%v) succeeded, want error", data)
		}
	}
}

func TestEmpty(t *testing.T) {
	var cb Clipboard
	cb.Open(5)
	cb.Add(FormatText, []byte("x"))
	cb.Empty()
	if cb.Has(FormatText) {
		t.Error("payload survived Empty")
	}
	if cb.Time() != 5 {
		t.Errorf("Empty cleared the time: %d", cb.Time())
	}
}
