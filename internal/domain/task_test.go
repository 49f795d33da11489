package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLetter(t *testing.T) {
	tests := []struct {
		name string
		prev string
		want string
	}{
		{name: "empty starts at a", prev: "", want: "a"},
		{name: "a to b", prev: "a", want: "b"},
		{name: "b to c", prev: "b", want: "c"},
		{name: "y to z", prev: "y", want: "z"},
		{name: "z rolls over to aa", prev: "z", want: "aa"},
		{name: "aa to ab", prev: "aa", want: "ab"},
		{name: "az to ba", prev: "az", want: "ba"},
		{name: "zz rolls over to aaa", prev: "zz", want: "aaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextLetter(tt.prev))
		})
	}
}

func TestNextLetter_SequenceIsStrictlyIncreasing(t *testing.T) {
	// Walk well past the single-letter range and check ordering holds
	// across the z -> aa boundary.
	letter := ""
	var prev string
	for i := 0; i < 60; i++ {
		letter = NextLetter(letter)
		if prev != "" {
			assert.True(t, LetterLess(prev, letter),
				"expected %q < %q", prev, letter)
		}
		prev = letter
	}
}

func TestLetterLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "a before b", a: "a", b: "b", want: true},
		{name: "b not before a", a: "b", b: "a", want: false},
		{name: "z before aa despite lex order", a: "z", b: "aa", want: true},
		{name: "aa not before z", a: "aa", b: "z", want: false},
		{name: "equal letters", a: "c", b: "c", want: false},
		{name: "same length lexicographic", a: "ab", b: "ba", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LetterLess(tt.a, tt.b))
		})
	}
}
