package model

import "testing"

func TestTrimText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"半角スペース", "  hello  ", "hello"},
		{"改行とタブ", "\n\thello\r\n", "hello"},
		{"全角スペース", "\u3000こんにちは\u3000", "こんにちは"},
		{"ノーブレークスペース", "\u00a0hi\u00a0", "hi"},
		{"BOMのみ", "\ufeff", ""},
		{"BOMと空白", "\ufeff \ufeff", ""},
		{"内側の空白は保持", " a b ", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimText(tt.in); got != tt.want {
				t.Errorf("TrimText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
