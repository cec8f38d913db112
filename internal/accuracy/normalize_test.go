package accuracy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "already normalized", input: "hello world", expected: "hello world"},
		{name: "whitespace runs", input: "  hello \t\n  world  ", expected: "hello world"},
		{name: "punctuation stripped", input: "Hello, World!", expected: "hello world"},
		{name: "interior punctuation token", input: "a - b", expected: "a b"},
		{name: "lower casing", input: "HeLLo", expected: "hello"},
		{name: "digits and underscore kept", input: "page_1: done.", expected: "page_1 done"},
		{name: "only punctuation", input: "?!...,;", expected: ""},
		{name: "urdu text untouched", input: "یہ ایک امتحان ہے", expected: "یہ ایک امتحان ہے"},
		{name: "urdu with punctuation", input: "یہ، ایک امتحان ہے۔", expected: "یہ ایک امتحان ہے"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"  Hello,\tWorld!  ",
		"a - b - c",
		"یہ، ایک  امتحان ہے۔",
		"Mixed اردو and English; with (punctuation) everywhere...",
	}

	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "normalization must be idempotent for %q", s)
	}
}
