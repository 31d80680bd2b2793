package pagination

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2024, 1, 15, 12, 30, 0, 500, time.UTC), Key: "ORD202401150007"}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.Key != in.Key {
		t.Fatalf("expected %+v got %+v", in, out)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); c != nil || err != nil {
		t.Fatalf("expected nil cursor for empty input")
	}
	if _, err := ParseCursor("%%%"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: time.Now()})); err == nil {
		t.Fatalf("expected error for cursor without key")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(500) != MaxLimit || NormalizeLimit(10) != 10 {
		t.Fatalf("unexpected limit normalization")
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatalf("expected buffer of one")
	}
}

func TestTrimBuildsNextCursor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []int{5, 4, 3}
	cursorOf := func(v int) Cursor { return Cursor{CreatedAt: base.Add(time.Duration(v) * time.Hour), Key: "k"} }

	page := Trim(rows, 2, cursorOf)
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("expected two items and a cursor, got %+v", page)
	}
	c, err := ParseCursor(page.NextCursor)
	if err != nil || !c.CreatedAt.Equal(base.Add(4*time.Hour)) {
		t.Fatalf("cursor should point at last returned row, got %+v (%v)", c, err)
	}

	last := Trim(rows, 5, cursorOf)
	if len(last.Items) != 3 || last.NextCursor != "" {
		t.Fatalf("expected final page without cursor, got %+v", last)
	}
}
