package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// Class is the script class of a token.
type Class int32

const (
	ClassOther Class = iota
	ClassHan
	ClassHiragana
	ClassKatakana
	ClassLatin
	ClassDigit
	ClassPunct
	classSpace
)

func (c Class) String() string {
	switch c {
	case ClassHan:
		return "han"
	case ClassHiragana:
		return "hiragana"
	case ClassKatakana:
		return "katakana"
	case ClassLatin:
		return "latin"
	case ClassDigit:
		return "digit"
	case ClassPunct:
		return "punct"
	case classSpace:
		return "space"
	default:
		return "other"
	}
}

func classOf(r rune) Class {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.Is(unicode.Han, r):
		return ClassHan
	case unicode.Is(unicode.Hiragana, r):
		return ClassHiragana
	case unicode.Is(unicode.Katakana, r), r == 'ー':
		return ClassKatakana
	case unicode.IsDigit(r), r == '.':
		return ClassDigit
	case unicode.IsLetter(r):
		return ClassLatin
	case unicode.IsPunct(r), unicode.IsSymbol(r):
		return ClassPunct
	default:
		return ClassOther
	}
}

// segment calls fn for every token of text: maximal runs of one script
// class, with each punctuation rune on its own and whitespace dropped.
// text must be valid UTF-8.
func segment(text []byte, fn func(start, end int, class Class)) {
	start, current := 0, Class(-1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRune(text[i:])
		class := classOf(r)
		if class == ClassDigit && r == '.' && current != ClassDigit {
			class = ClassPunct
		}
		if class != current || class == ClassPunct {
			if current >= 0 && current != classSpace {
				fn(start, i, current)
			}
			start, current = i, class
		}
		i += size
	}
	if current >= 0 && current != classSpace {
		fn(start, len(text), current)
	}
}
