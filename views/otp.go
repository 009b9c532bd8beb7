package views

import (
	"strings"
	"unicode/utf8"
)

// OTPLength is the number of single-character code fields.
const OTPLength = 4

// OTPForm tracks the code fields of the verification screen and which one
// holds focus.
type OTPForm struct {
	Fields [OTPLength]string
	Focus  int
}

// Input records value in field i and returns the field that should take
// focus: the next one when exactly one character was typed, otherwise i.
func (f *OTPForm) Input(i int, value string) int {
	if i < 0 || i >= OTPLength {
		return f.Focus
	}
	f.Fields[i] = value
	f.Focus = i
	if utf8.RuneCountInString(value) == 1 && i < OTPLength-1 {
		f.Focus = i + 1
	}
	return f.Focus
}

// KeyDown handles a key press in field i. Backspace in an empty field moves
// focus to the previous one.
func (f *OTPForm) KeyDown(i int, key string) int {
	if i < 0 || i >= OTPLength {
		return f.Focus
	}
	f.Focus = i
	if key == "Backspace" && f.Fields[i] == "" && i > 0 {
		f.Focus = i - 1
	}
	return f.Focus
}

// Fill types values into the fields in order, as submitted by the form.
// Focus ends on the first empty field, or the last one when all are set.
func (f *OTPForm) Fill(values []string) {
	for i, v := range values {
		if i >= OTPLength {
			break
		}
		f.Input(i, strings.TrimSpace(v))
	}
	for i, v := range f.Fields {
		if v == "" {
			f.Focus = i
			return
		}
	}
}

// Code joins the fields.
func (f *OTPForm) Code() string {
	return strings.Join(f.Fields[:], "")
}

// Complete reports whether every field holds one character.
func (f *OTPForm) Complete() bool {
	for _, v := range f.Fields {
		if utf8.RuneCountInString(v) != 1 {
			return false
		}
	}
	return true
}

// Indexes ranges over the field positions in templates.
func (f *OTPForm) Indexes() []int {
	idx := make([]int, OTPLength)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
