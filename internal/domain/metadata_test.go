package domain

import "testing"

func TestMetadataFirstWriteWins(t *testing.T) {
	t.Parallel()

	var md Metadata
	if !md.AddIfAbsent("Type", "html") {
		t.Fatalf("first add should succeed")
	}
	if md.AddIfAbsent("Type", "xml") {
		t.Fatalf("second add should be dropped")
	}
	if v, _ := md.Get("Type"); v != "html" {
		t.Fatalf("expected html, got %q", v)
	}

	md.Set("Type", "json")
	if v, _ := md.Get("Type"); v != "json" {
		t.Fatalf("Set should overwrite, got %q", v)
	}
	if md.Len() != 1 {
		t.Fatalf("overwrite must not duplicate keys: %v", md.Keys())
	}
}

func TestMetadataKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	md := NewMetadata()
	for _, k := range []string{"b", "a", "c"} {
		md.Set(k, k)
	}
	keys := md.Keys()
	if len(keys) != 3 || keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected order: %v", keys)
	}

	// keys are exact, not case-folded
	md.AddIfAbsent("B", "upper")
	if md.Len() != 4 {
		t.Fatalf("expected case-sensitive keys, got %v", md.Keys())
	}
}

func TestReasonFromStatus(t *testing.T) {
	t.Parallel()

	if got := ReasonFromStatus(404, "404 Not Found"); got != "Not Found" {
		t.Fatalf("unexpected reason %q", got)
	}
	if got := ReasonFromStatus(200, "200"); got != "" {
		t.Fatalf("unexpected reason %q", got)
	}
}
