package engine

import (
	"testing"
	"time"

	"github.com/rushteam/matchkit/core"
)

func TestCursorRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		time.UnixMilli(0).UTC(),
		time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for _, want := range times {
		got, err := DecodeCursor(EncodeCursor(want))
		if err != nil {
			t.Fatalf("DecodeCursor(%v): %v", want, err)
		}
		if got.UnixMilli() != want.UnixMilli() {
			t.Fatalf("round trip lost precision: %v vs %v", got, want)
		}
	}
}

func TestDecodeCursorEmptyIsFirstPage(t *testing.T) {
	got, err := DecodeCursor("")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Fatalf("empty cursor must decode to zero time, got %v", got)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, s := range []string{"!!!not-base64!!!", "bm90LWEtbnVtYmVy", "LTQy"} {
		_, err := DecodeCursor(s)
		if err == nil {
			t.Fatalf("DecodeCursor(%q) accepted garbage", s)
		}
		if !core.IsInvalidInput(err) {
			t.Fatalf("DecodeCursor(%q): want INVALID_INPUT, got %v", s, err)
		}
	}
}
