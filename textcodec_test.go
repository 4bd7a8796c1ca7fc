package sealbox

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeTextAlphabetPerGeneration(t *testing.T) {
	// 0xFF bytes force characters where the two alphabets differ.
	raw := []byte{0xFF, 0xFE, 0xFD}

	legacy := encodeText(versionV1, raw)
	if strings.ContainsAny(legacy, "+/") {
		t.Fatalf("legacy encoding leaked standard-alphabet characters: %q", legacy)
	}

	current := encodeText(versionV2, raw)
	if strings.ContainsAny(current, "-_") {
		t.Fatalf("current encoding leaked url-safe characters: %q", current)
	}
	if !strings.ContainsAny(current, "+/") {
		t.Fatalf("expected standard-alphabet characters in %q", current)
	}
}

func TestDecodeTextRoundTrip(t *testing.T) {
	raw := []byte{0x01, 0x00, 0x7F, 0x80, 0xFF}

	for _, version := range []byte{versionV1, versionV2} {
		text := encodeText(version, raw)
		out, err := decodeText(version, text)
		if err != nil {
			t.Fatalf("decodeText failed for version %#x: %v", version, err)
		}
		if !bytes.Equal(out, raw) {
			t.Fatalf("round trip mismatch for version %#x", version)
		}
	}
}

func TestDecodeTextForeignAlphabetRejected(t *testing.T) {
	raw := []byte{0xFF, 0xFE, 0xFD}

	if _, err := decodeText(versionV2, encodeText(versionV1, raw)); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage for url-safe text under standard decoder, got %v", err)
	}
	if _, err := decodeText(versionV1, encodeText(versionV2, raw)); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage for standard text under url-safe decoder, got %v", err)
	}
}

func TestSniffVersionBothGenerations(t *testing.T) {
	for _, version := range []byte{versionV1, versionV2} {
		raw := append([]byte{version}, bytes.Repeat([]byte{0xFF}, 16)...)
		text := encodeText(version, raw)

		got, err := sniffVersion(text)
		if err != nil {
			t.Fatalf("sniffVersion failed for version %#x: %v", version, err)
		}
		if got != version {
			t.Fatalf("expected version %#x, got %#x", version, got)
		}
	}
}

func TestSniffVersionNormalizesURLAlphabet(t *testing.T) {
	// A leading 0x01 followed by 0xFF bytes puts url-safe characters inside the
	// four-character sniff window.
	raw := []byte{versionV1, 0xFF, 0xFF, 0xFF}
	text := encodeText(versionV1, raw)
	if !strings.ContainsAny(text[:4], "-_") {
		t.Fatalf("test input does not exercise normalization: %q", text[:4])
	}

	got, err := sniffVersion(text)
	if err != nil {
		t.Fatalf("sniffVersion failed: %v", err)
	}
	if got != versionV1 {
		t.Fatalf("expected version %#x, got %#x", versionV1, got)
	}
}

func TestSniffVersionShortToken(t *testing.T) {
	for _, text := range []string{"", "a", "abc"} {
		if _, err := sniffVersion(text); !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("expected ErrInvalidMessage for %q, got %v", text, err)
		}
	}
}

func TestSniffVersionInvalidPrefix(t *testing.T) {
	if _, err := sniffVersion("!!!!rest-does-not-matter"); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}
