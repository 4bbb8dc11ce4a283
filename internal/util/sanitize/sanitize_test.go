package sanitize

import "testing"

func TestPathComponent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Test", "Test"},
		{"keeps underscores and hyphens", "weekly_check-42", "weekly_check-42"},
		{"keeps spaces", "Reservoir inlet", "Reservoir inlet"},
		{"drops path separators", "a/b\\c", "abc"},
		{"drops colons and dots", "12:30:00 v1.2", "123000 v12"},
		{"drops parentheses", "Sample (repeat)", "Sample repeat"},
		{"collapses whitespace", "a \t b\n c", "a b c"},
		{"trims", "  padded  ", "padded"},
		{"unicode letters survive", "Zürich Süd", "Zürich Süd"},
		{"zero-width characters dropped", "Te​st", "Test"},
		{"empty becomes fallback", "", FallbackName},
		{"only unsafe becomes fallback", "/\\:*?\"<>|", FallbackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathComponent(tt.input); got != tt.want {
				t.Errorf("PathComponent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathComponentIdempotent(t *testing.T) {
	inputs := []string{"Test", "a/b c", "  x  y  ", "", "Zürich"}
	for _, in := range inputs {
		once := PathComponent(in)
		twice := PathComponent(once)
		if once != twice {
			t.Errorf("PathComponent not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
