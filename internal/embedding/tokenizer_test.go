package embedding

import (
	"reflect"
	"testing"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single word", "hello", []string{"hello"}},
		{"multiple words", "hello world foo", []string{"hello", "world", "foo"}},
		{"extra spaces", "  hello   world  ", []string{"hello", "world"}},
		{"tabs and newlines", "a\tb\nc\r\nd", []string{"a", "b", "c", "d"}},
		{"only whitespace", " \t\n ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitWords(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitWords(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashStringDeterministic(t *testing.T) {
	if HashString("semdex") != HashString("semdex") {
		t.Error("same input must hash to same value")
	}
	if HashString("alpha") == HashString("beta") {
		t.Error("distinct short words should not collide")
	}
}

func TestHashStringNonNegative(t *testing.T) {
	// Long strings overflow int; the result must still be non-negative.
	inputs := []string{"", "a", "zzzzzzzzzzzzzzzzzzzzzzzz", "日本語のテキスト", "0123456789abcdef0123456789abcdef"}
	for _, s := range inputs {
		if h := HashString(s); h < 0 {
			t.Errorf("HashString(%q) = %d, want non-negative", s, h)
		}
	}
}

func TestSimpleTokenizerMarkers(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, types := tok.Tokenize("hello world", 8)

	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths = %d/%d/%d, want 8", len(ids), len(mask), len(types))
	}
	if ids[0] != 101 {
		t.Errorf("ids[0] = %d, want [CLS] 101", ids[0])
	}
	if ids[3] != 102 {
		t.Errorf("ids[3] = %d, want [SEP] 102 after two words", ids[3])
	}

	var attended int
	for _, m := range mask {
		attended += int(m)
	}
	if attended != 4 { // CLS + 2 words + SEP
		t.Errorf("attention covers %d positions, want 4", attended)
	}
	for i, ty := range types {
		if ty != 0 {
			t.Errorf("types[%d] = %d, want 0 for single-segment input", i, ty)
		}
	}
}

func TestSimpleTokenizerTruncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, _ := tok.Tokenize("one two three four five six seven eight", 4)

	if len(ids) != 4 {
		t.Fatalf("len(ids) = %d, want 4", len(ids))
	}
	// CLS + 2 words fill positions 0..2; position 3 stays for SEP.
	if ids[3] != 102 {
		t.Errorf("ids[3] = %d, want [SEP] at last slot", ids[3])
	}
	for i := 0; i < 4; i++ {
		if mask[i] != 1 {
			t.Errorf("mask[%d] = %d, want all positions attended when full", i, mask[i])
		}
	}
}

func TestSimpleTokenizerDefaultLength(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, _, _ := tok.Tokenize("word", 0)
	if len(ids) != 256 {
		t.Errorf("len(ids) = %d, want default 256", len(ids))
	}
}
