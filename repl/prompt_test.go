package repl

import (
	"slices"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "simple path",
			input: "games/pong.zds",
			want:  []string{"games/pong.zds"},
		},
		{
			name:  "command with argument",
			input: "help  sqrt",
			want:  []string{"help", "sqrt"},
		},
		{
			name:  "double quoted path",
			input: `"my game.zds"`,
			want:  []string{"my game.zds"},
		},
		{
			name:  "single quoted keeps backslash",
			input: `'a\b c'`,
			want:  []string{`a\b c`},
		},
		{
			name:  "escaped space outside quotes",
			input: `my\ game.zds`,
			want:  []string{"my game.zds"},
		},
		{
			name:  "escaped quote in double quotes",
			input: `"say \"hi\""`,
			want:  []string{`say "hi"`},
		},
		{
			name:  "empty quoted word",
			input: `help ""`,
			want:  []string{"help", ""},
		},
		{
			name:  "blank",
			input: " \t ",
			want:  nil,
		},
		{
			name:    "unclosed quote",
			input:   `"abc`,
			wantErr: true,
		},
		{
			name:    "trailing backslash",
			input:   `abc\`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitLine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
