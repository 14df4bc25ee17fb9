package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/caseflow/caseflow/internal/model"
)

// Condition is the parsed {value, operation, except_value, desc} object
// consumed by IF steps and CONDITION loops.
type Condition struct {
	Value       model.Value `json:"value"`
	Operation   string      `json:"operation"`
	ExceptValue model.Value `json:"except_value"`
	Desc        string      `json:"desc,omitempty"`
}

// rePythonLiteral rewrites the bare Python tokens None/True/False to their
// JSON equivalents so the raw conditions string parses as JSON. Only
// matches the tokens as whole words, so substrings like "Nonexyz" are left
// untouched; a token inside a quoted JSON string ("\"None\"") is rewritten
// as well.
var rePythonLiteral = regexp.MustCompile(`\b(None|True|False)\b`)

// parseConditions decodes a step's raw conditions string, tolerating the
// Python-style None/True/False tokens the original source emits.
func parseConditions(raw string) (Condition, error) {
	if strings.TrimSpace(raw) == "" {
		return Condition{}, fmt.Errorf("conditions: empty")
	}
	normalized := rePythonLiteral.ReplaceAllStringFunc(raw, func(tok string) string {
		switch tok {
		case "None":
			return "null"
		case "True":
			return "true"
		case "False":
			return "false"
		}
		return tok
	})
	var raw2 struct {
		Value       json.RawMessage `json:"value"`
		Operation   string          `json:"operation"`
		ExceptValue json.RawMessage `json:"except_value"`
		Desc        string          `json:"desc"`
	}
	if err := json.Unmarshal([]byte(normalized), &raw2); err != nil {
		return Condition{}, fmt.Errorf("conditions: invalid JSON: %w", err)
	}
	var value, except any
	if len(raw2.Value) > 0 {
		if err := json.Unmarshal(raw2.Value, &value); err != nil {
			return Condition{}, fmt.Errorf("conditions: invalid value: %w", err)
		}
	}
	if len(raw2.ExceptValue) > 0 {
		if err := json.Unmarshal(raw2.ExceptValue, &except); err != nil {
			return Condition{}, fmt.Errorf("conditions: invalid except_value: %w", err)
		}
	}
	return Condition{
		Value:       model.FromAny(value),
		Operation:   raw2.Operation,
		ExceptValue: model.FromAny(except),
		Desc:        raw2.Desc,
	}, nil
}

// normalize applies normalization rule ahead of a compare:
// digit/signed-digit strings become int, decimal strings become float,
// "true"/"false" strings become bool. Non-string values pass through.
func normalize(v model.Value) model.Value {
	if v.Kind() != model.KindString {
		return v
	}
	s := strings.TrimSpace(v.AsString())
	if s == "" {
		return v
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return model.Float(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return model.Bool(b)
	}
	return v
}

// compare evaluates the fixed operator table against a
// normalized actual/expected pair.
func compare(operation string, actual, expected model.Value) (bool, error) {
	a, e := normalize(actual), normalize(expected)
	switch operation {
	case "等于", "equals":
		return valuesEqual(a, e), nil
	case "不等于", "not-equals":
		return !valuesEqual(a, e), nil
	case "大于", "大于等于", "小于", "小于等于":
		af, aok := a.AsFloat()
		ef, eok := e.AsFloat()
		if aok && eok {
			switch operation {
			case "大于":
				return af > ef, nil
			case "大于等于":
				return af >= ef, nil
			case "小于":
				return af < ef, nil
			default:
				return af <= ef, nil
			}
		}
		as, es := a.AsString(), e.AsString()
		switch operation {
		case "大于":
			return as > es, nil
		case "大于等于":
			return as >= es, nil
		case "小于":
			return as < es, nil
		default:
			return as <= es, nil
		}
	case "长度等于":
		n, err := strconv.Atoi(strings.TrimSpace(e.AsString()))
		if err != nil {
			return false, fmt.Errorf("长度等于: except_value not an integer: %w", err)
		}
		return len([]rune(a.AsString())) == n, nil
	case "包含":
		return strings.Contains(a.AsString(), e.AsString()), nil
	case "不包含":
		return !strings.Contains(a.AsString(), e.AsString()), nil
	case "以...开始":
		return strings.HasPrefix(a.AsString(), e.AsString()), nil
	case "以...结束":
		return strings.HasSuffix(a.AsString(), e.AsString()), nil
	case "非空":
		return !a.IsNull() && a.AsString() != "", nil
	case "为空":
		return a.IsNull() || a.AsString() == "", nil
	default:
		return false, fmt.Errorf("unknown operation: %s", operation)
	}
}

func valuesEqual(a, e model.Value) bool {
	if a.Kind() == model.KindString && e.Kind() == model.KindString {
		return a.AsString() == e.AsString()
	}
	af, aok := a.AsFloat()
	ef, eok := e.AsFloat()
	if aok && eok {
		return af == ef
	}
	return a.AsString() == e.AsString()
}

// evaluateCondition compares a Condition's value, whose placeholders the
// caller has already resolved, against except_value via the operator
// table.
func evaluateCondition(c Condition) (bool, error) {
	return compare(c.Operation, c.Value, c.ExceptValue)
}
