package correct

import "testing"

func TestApplyRewrites(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ocr word fusion", "supplyyote optimization", "supply chain optimization"},
		{"fusion ignores case", "SupplyYote", "supply chain"},
		{"missing letter", "inteligent systems", "intelligent systems"},
		{"lowercase l read as I", "ROl improvement", "ROI improvement"},
		{"digit 1 read as I", "RO1 improvement", "ROI improvement"},
		{"ROl needs word boundary", "ROles", "ROles"},
		{"standalone l before percent", "growth l%", "growth I%"},
		{"l inside number untouched", "15-25l%", "15-25l%"},
		{"icon misread removed", "alpha i\nS beta", "alpha  beta"},
		{"arrow zero removed", "flow→0 done", "flow done"},
		{"bare arrow line removed", "↑12", ""},
		{"indent after break", "line one\n   line two", "line one\nline two"},
		{"trailing space before break", "line one   \nline two", "line one\nline two"},
		{"both sides of break", "a\n  b  \nc", "a\nb\nc"},
		{"misspelled forecast", "revenue forecsat", "revenue forecast"},
		{"misspelling ignores case", "Inventroy Managment", "inventory management"},
		{"misspelled analysis", "data analsis", "data analysis"},
		{"misspelled optimization", "route optimzation", "route optimization"},
		{"misspelled efficient", "efficeint automtic operatinal", "efficient automatic operational"},
		{"clean text untouched", "Quarterly Revenue Review", "Quarterly Revenue Review"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ApplyRewrites(tt.input)
			if got != tt.want {
				t.Errorf("ApplyRewrites(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, tt := range tests {
			once, _ := ApplyRewrites(tt.input)
			twice, _ := ApplyRewrites(once)
			if twice != once {
				t.Errorf("ApplyRewrites(%q): second pass changed %q to %q", tt.input, once, twice)
			}
		}
	})

	t.Run("reports applied rules", func(t *testing.T) {
		_, applied := ApplyRewrites("inteligent forecsat")
		if len(applied) != 2 {
			t.Errorf("got %d applied rules, want 2: %v", len(applied), applied)
		}

		_, applied = ApplyRewrites("nothing wrong here")
		if len(applied) != 0 {
			t.Errorf("got %d applied rules for clean text, want 0: %v", len(applied), applied)
		}
	})
}

func TestIsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"icon misread", "i\nS", true},
		{"icon misread padded", "  i\nS  ", true},
		{"bare arrow", "→", true},
		{"arrow with number", "→12", true},
		{"single symbol", "•", true},
		{"three symbols", "***", true},
		{"four symbols", "****", false},
		{"arrow with space", "→ 5", false},
		{"capital I variant kept", "I\nS", false},
		{"real word", "Revenue", false},
		{"short real word", "Q3", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGarbage(tt.input); got != tt.want {
				t.Errorf("IsGarbage(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
