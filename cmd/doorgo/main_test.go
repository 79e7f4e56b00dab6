package main

import (
	"testing"
)

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyUsesDefault(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\"): %v", err)
	}
	if w.port() != 8080 {
		t.Errorf("port = %d, want 8080", w.port())
	}
}

func TestWebPortFlag_CustomPort(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set("8980"); err != nil {
		t.Fatalf("Set(\"8980\"): %v", err)
	}
	if w.port() != 8980 {
		t.Errorf("port = %d, want 8980", w.port())
	}
}

func TestWebPortFlag_Invalid(t *testing.T) {
	cases := []string{"abc", "-1", "0", "65536", "8080.5"}
	for _, s := range cases {
		w := &webPortFlag{defaultPort: 8080}
		if err := w.Set(s); err == nil {
			t.Errorf("Set(%q) should fail", s)
		}
	}
}

func TestWebPortFlag_DisabledByDefault(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if w.port() != 0 {
		t.Errorf("unset flag should report port 0, got %d", w.port())
	}
	if w.String() != "0" {
		t.Errorf("String = %q, want \"0\"", w.String())
	}
}
