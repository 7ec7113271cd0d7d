// Package conditions evaluates the small boolean expression language used to
// gate dialog choices. Expressions are conjunctions only: clauses joined by
// "&&", each clause a bare flag name (truthiness), a negation ("!name"), or a
// string-coerced equality ("name === value"). There is no OR, no parentheses
// and no precedence; authors needing disjunction write separate choices.
package conditions

import (
	"strconv"
	"strings"
)

const (
	andToken = "&&"
	eqToken  = "==="
)

// Evaluate reports whether every clause of expr holds against flags.
// An empty expression is no gate and always holds. Evaluation is pure and
// short-circuits left to right on the first false clause.
func Evaluate(expr string, flags map[string]any) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}
	for _, clause := range strings.Split(expr, andToken) {
		if !evaluateClause(strings.TrimSpace(clause), flags) {
			return false
		}
	}
	return true
}

func evaluateClause(clause string, flags map[string]any) bool {
	if clause == "" {
		return true
	}

	if name, ok := strings.CutPrefix(clause, "!"); ok {
		return !Truthy(flags[strings.TrimSpace(name)])
	}

	if name, literal, ok := strings.Cut(clause, eqToken); ok {
		name = strings.TrimSpace(name)
		literal = strings.Trim(strings.TrimSpace(literal), `"'`)
		return Coerce(flags[name]) == literal
	}

	return Truthy(flags[clause])
}

// Truthy mirrors the content language's falsy set: absent values, false,
// numeric zero and the empty string are falsy; everything else is truthy.
// Absent and false are deliberately indistinguishable.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case float32:
		return x != 0
	default:
		return true
	}
}

// Coerce renders a flag value as a string for equality comparison, so a
// numeric flag 3 equals the written literal "3".
func Coerce(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return ""
	}
}
