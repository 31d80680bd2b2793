package instance

import "testing"

func TestIDPrefersExplicitValue(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("DELIZZIA_INSTANCE_ID", "api-7")
	if got := ID(); got != "api-7" {
		t.Fatalf("expected api-7 got %q", got)
	}

	t.Setenv("DELIZZIA_INSTANCE_ID", "")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected dyno name got %q", got)
	}

	t.Setenv("DYNO", "")
	if got := ID(); got == "" {
		t.Fatalf("expected hostname fallback")
	}
}
