package smaz

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"the quick brown fox jumps over the lazy dog",
		"Hello, World!",
		"this is a test of the compression layer",
		"http://example.com/path?query=1",
		"こんにちは世界",
		"mixed ASCII and 日本語 in one message",
		"line one\nline two\r\nline three",
		"x",
		"\x01\x02\x03\x04",
		string([]byte{0}) + "embedded nul",
		strings.Repeat("\x80\x81", 400), // forces multiple verbatim runs
	}

	for _, in := range cases {
		comp := Compress([]byte(in))
		out, err := Decompress(comp)
		if err != nil {
			t.Errorf("Decompress(Compress(%q)): %v", in, err)
			continue
		}
		if !bytes.Equal(out, []byte(in)) {
			t.Errorf("round trip of %q: got %q", in, out)
		}
	}
}

func TestCompressDeterministic(t *testing.T) {
	in := []byte("determinism is not optional for this encoder")
	if !bytes.Equal(Compress(in), Compress(in)) {
		t.Error("Compress produced different output for the same input")
	}
}

func TestCompressShrinksEnglish(t *testing.T) {
	in := []byte("the end of the world and the start of the next one")
	comp := Compress(in)
	if len(comp) >= len(in) {
		t.Errorf("expected compression, got %d bytes from %d", len(comp), len(in))
	}
}

func TestCompressEmitsVerbatim(t *testing.T) {
	comp := Compress([]byte{0x01})
	want := []byte{codeVerbatimByte, 0x01}
	if !bytes.Equal(comp, want) {
		t.Errorf("Compress(0x01) = %v, want %v", comp, want)
	}
}

func TestDecompressKnownCodes(t *testing.T) {
	out, err := Decompress([]byte{1, 0, 2})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got := string(out); got != "the e" {
		t.Errorf("got %q, want %q", got, "the e")
	}
}

func TestDecompressCorrupt(t *testing.T) {
	cases := [][]byte{
		{codeVerbatimByte},         // escape with no byte
		{codeVerbatimRun},          // run with no length
		{codeVerbatimRun, 10, 'a'}, // run shorter than declared
		{0, codeVerbatimRun, 255},  // truncated after a valid code
	}

	for _, in := range cases {
		if _, err := Decompress(in); !errors.Is(err, ErrCorruptStream) {
			t.Errorf("Decompress(%v): got %v, want ErrCorruptStream", in, err)
		}
	}
}

func TestLongestMatchWins(t *testing.T) {
	// "the" must encode as the single code 1, not as "t"+"h"+"e".
	comp := Compress([]byte("the"))
	if !bytes.Equal(comp, []byte{1}) {
		t.Errorf("Compress(\"the\") = %v, want [1]", comp)
	}
}
