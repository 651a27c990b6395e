package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type span struct {
	text  string
	class Class
}

func spans(text string) []span {
	var out []span
	segment([]byte(text), func(start, end int, class Class) {
		out = append(out, span{text[start:end], class})
	})
	return out
}

func TestSegment(t *testing.T) {
	tcs := []struct {
		name string
		in   string
		want []span
	}{
		{
			name: "scripts",
			in:   "東京へ行きました。",
			want: []span{{"東京", ClassHan}, {"へ", ClassHiragana}, {"行", ClassHan}, {"きました", ClassHiragana}, {"。", ClassPunct}},
		},
		{
			name: "katakana with long vowel",
			in:   "コーヒーを飲む",
			want: []span{{"コーヒー", ClassKatakana}, {"を", ClassHiragana}, {"飲", ClassHan}, {"む", ClassHiragana}},
		},
		{
			name: "latin digits and spaces",
			in:   "go 1.5 倍",
			want: []span{{"go", ClassLatin}, {"1.5", ClassDigit}, {"倍", ClassHan}},
		},
		{
			name: "punctuation runes stand alone",
			in:   "!!?",
			want: []span{{"!", ClassPunct}, {"!", ClassPunct}, {"?", ClassPunct}},
		},
		{
			name: "sentence final period",
			in:   "end.",
			want: []span{{"end", ClassLatin}, {".", ClassPunct}},
		},
		{
			name: "only spaces",
			in:   "  \t ",
			want: nil,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, spans(tc.in))
		})
	}
}
