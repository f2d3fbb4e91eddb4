package domain

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want InputType
	}{
		{"single word", "run", InputWord},
		{"word with surrounding spaces", "  run  ", InputWord},
		{"hyphenated word", "well-known", InputWord},
		{"two tokens", "give up", InputPhrase},
		{"three tokens", "multi word phrase", InputPhrase},
		{"tabs separate tokens", "give\tup", InputPhrase},
		{"chinese", "你好", InputChinese},
		{"chinese with punctuation", "你好。", InputChinese},
		{"mixed chinese and latin", "hello 世界", InputChinese},
		{"single han codepoint in a phrase", "a 好 c", InputChinese},
		{"empty string", "", InputWord},
		{"whitespace only", "   ", InputWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for range 10 {
		if got := Classify("你好 world"); got != InputChinese {
			t.Fatalf("Classify not deterministic: got %q", got)
		}
	}
}
