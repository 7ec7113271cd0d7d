package conditions

import "testing"

func TestEvaluate(t *testing.T) {
	flags := map[string]any{
		"a":       true,
		"b":       false,
		"c":       float64(3),
		"name":    "mira",
		"zero":    float64(0),
		"empty":   "",
		"visited": true,
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty expression is true", "", true},
		{"whitespace expression is true", "   ", true},
		{"true flag", "a", true},
		{"false flag", "b", false},
		{"missing flag", "nope", false},
		{"negated false flag", "!b", true},
		{"negated true flag", "!a", false},
		{"negated missing flag", "!nope", true},
		{"zero number is falsy", "zero", false},
		{"empty string is falsy", "empty", false},
		{"number equality", "c===3", true},
		{"number inequality", "c===4", false},
		{"string equality", "name===mira", true},
		{"quoted literal", `name==="mira"`, true},
		{"single quoted literal", "name==='mira'", true},
		{"bool equality", "a===true", true},
		{"conjunction all true", "a && !b && c===3", true},
		{"conjunction one false", "a && b && c===3", false},
		{"conjunction with spaces", "  a   &&   visited  ", true},
		{"negated equality clause", "!nope && name===mira", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.expr, flags); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateNilFlags(t *testing.T) {
	if !Evaluate("", nil) {
		t.Error("empty expression should be true with nil flags")
	}
	if Evaluate("anything", nil) {
		t.Error("flag lookup should fail closed with nil flags")
	}
	if !Evaluate("!anything", nil) {
		t.Error("negated missing flag should be true with nil flags")
	}
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, float64(0), int(0), ""}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true, want false", v)
		}
	}

	truthy := []any{true, float64(1), int(-2), "x", []string{}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false, want true", v)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{true, "true"},
		{false, "false"},
		{float64(3), "3"},
		{float64(2.5), "2.5"},
		{int(7), "7"},
		{"hello", "hello"},
	}

	for _, tt := range tests {
		if got := Coerce(tt.in); got != tt.want {
			t.Errorf("Coerce(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
