package views

import (
	"errors"
	"testing"
)

func TestParseView(t *testing.T) {
	t.Parallel()

	for i, name := range Names() {
		v, err := ParseView(name)
		if err != nil {
			t.Fatalf("ParseView(%q) error = %v", name, err)
		}
		if int(v) != i || v.String() != name {
			t.Errorf("ParseView(%q) = %v", name, v)
		}
	}

	if _, err := ParseView("Login"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("names are case sensitive, got %v", err)
	}
	if got := View(42).String(); got != "View(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestOTPFormInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field int
		value string
		want  int
	}{
		{name: "advances from first", field: 0, value: "1", want: 1},
		{name: "advances from third", field: 2, value: "7", want: 3},
		{name: "stays on last", field: OTPLength - 1, value: "9", want: OTPLength - 1},
		{name: "empty value stays", field: 1, value: "", want: 1},
		{name: "multi rune stays", field: 1, value: "12", want: 1},
		{name: "single rune non ascii advances", field: 0, value: "٣", want: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var f OTPForm
			if got := f.Input(tt.field, tt.value); got != tt.want {
				t.Errorf("Input(%d, %q) = %d, want %d", tt.field, tt.value, got, tt.want)
			}
			if f.Fields[tt.field] != tt.value {
				t.Errorf("field %d = %q", tt.field, f.Fields[tt.field])
			}
		})
	}
}

func TestOTPFormKeyDown(t *testing.T) {
	t.Parallel()

	t.Run("backspace on empty moves back", func(t *testing.T) {
		t.Parallel()
		var f OTPForm
		if got := f.KeyDown(2, "Backspace"); got != 1 {
			t.Errorf("KeyDown = %d, want 1", got)
		}
	})

	t.Run("backspace on first stays", func(t *testing.T) {
		t.Parallel()
		var f OTPForm
		if got := f.KeyDown(0, "Backspace"); got != 0 {
			t.Errorf("KeyDown = %d, want 0", got)
		}
	})

	t.Run("backspace on filled stays", func(t *testing.T) {
		t.Parallel()
		var f OTPForm
		f.Input(2, "5")
		if got := f.KeyDown(2, "Backspace"); got != 2 {
			t.Errorf("KeyDown = %d, want 2", got)
		}
	})

	t.Run("other keys stay", func(t *testing.T) {
		t.Parallel()
		var f OTPForm
		if got := f.KeyDown(3, "Delete"); got != 3 {
			t.Errorf("KeyDown = %d, want 3", got)
		}
	})

	t.Run("out of range ignored", func(t *testing.T) {
		t.Parallel()
		f := OTPForm{Focus: 2}
		if got := f.KeyDown(OTPLength, "Backspace"); got != 2 {
			t.Errorf("KeyDown = %d, want 2", got)
		}
		if got := f.Input(-1, "1"); got != 2 {
			t.Errorf("Input = %d, want 2", got)
		}
	})
}

func TestOTPFormTypingSequence(t *testing.T) {
	t.Parallel()

	var f OTPForm
	focus := 0
	for _, d := range []string{"4", "2", "0", "7"} {
		focus = f.Input(focus, d)
	}
	if !f.Complete() || f.Code() != "4207" {
		t.Fatalf("Code() = %q, Complete() = %v", f.Code(), f.Complete())
	}
	if focus != OTPLength-1 {
		t.Errorf("focus = %d, want last field", focus)
	}

	f.Input(3, "")
	if f.Complete() {
		t.Error("cleared field should make the form incomplete")
	}
	if got := f.KeyDown(3, "Backspace"); got != 2 {
		t.Errorf("KeyDown = %d, want 2", got)
	}
}

func TestOTPFormFill(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		values    []string
		wantCode  string
		wantFocus int
		complete  bool
	}{
		{name: "all fields", values: []string{"1", "2", "3", "4"}, wantCode: "1234", wantFocus: 3, complete: true},
		{name: "gap", values: []string{"1", "", "3", "4"}, wantCode: "134", wantFocus: 1},
		{name: "short", values: []string{"9"}, wantCode: "9", wantFocus: 1},
		{name: "extra values ignored", values: []string{"1", "2", "3", "4", "5"}, wantCode: "1234", wantFocus: 3, complete: true},
		{name: "spaces trimmed", values: []string{" 1", "2 ", "3", "4"}, wantCode: "1234", wantFocus: 3, complete: true},
		{name: "none", wantFocus: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var f OTPForm
			f.Fill(tt.values)
			if f.Code() != tt.wantCode || f.Focus != tt.wantFocus || f.Complete() != tt.complete {
				t.Errorf("Code() = %q, Focus = %d, Complete() = %v; want %q, %d, %v",
					f.Code(), f.Focus, f.Complete(), tt.wantCode, tt.wantFocus, tt.complete)
			}
		})
	}
}
