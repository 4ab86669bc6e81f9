package slug

import "testing"

// TestGenerate covers the inputs category names actually produce: plain
// titles, punctuation, stray whitespace and hyphens, and degenerate input.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple category name",
			input: "Getting Started",
			want:  "getting-started",
		},
		{
			name:  "name with number",
			input: "Releases 2026",
			want:  "releases-2026",
		},
		{
			name:  "punctuation stripped",
			input: "Tips & Tricks, Explained!",
			want:  "tips-tricks-explained",
		},
		{
			name:  "parentheses stripped",
			input: "Guides (Advanced)",
			want:  "guides-advanced",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  News  ",
			want:  "news",
		},
		{
			name:  "consecutive spaces collapsed",
			input: "How   To",
			want:  "how-to",
		},
		{
			name:  "hyphen runs collapsed",
			input: "--Site -- Updates--",
			want:  "site-updates",
		},
		{
			name:  "existing hyphen preserved",
			input: "Long-Form Articles",
			want:  "long-form-articles",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerateIdempotent verifies that a valid slug passes through unchanged.
func TestGenerateIdempotent(t *testing.T) {
	for _, s := range []string{"getting-started", "releases-2026", "a"} {
		if got := Generate(s); got != s {
			t.Errorf("Generate(%q) = %q, want it unchanged", s, got)
		}
	}
}

// TestGenerateWithFallback verifies the fallback kicks in only when the
// input slugifies to nothing.
func TestGenerateWithFallback(t *testing.T) {
	if got := GenerateWithFallback("Hello World", "fallback"); got != "hello-world" {
		t.Errorf("GenerateWithFallback = %q, want %q", got, "hello-world")
	}
	if got := GenerateWithFallback("!@#$", "fallback"); got != "fallback" {
		t.Errorf("GenerateWithFallback = %q, want %q", got, "fallback")
	}
}
