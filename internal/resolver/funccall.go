package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caseflow/caseflow/internal/model"
)

// parseFuncCall parses a placeholder body shaped like "funcname(k=v, ...)"
// into a function name and a kwargs map.1: arguments are
// parsed by split(',') then split('='), evaluating the RHS as a scalar
// literal (int, float, bool, or bare string).
func parseFuncCall(content string) (string, map[string]model.Value, error) {
	open := strings.Index(content, "(")
	close := strings.LastIndex(content, ")")
	if open < 0 || close < open {
		return "", nil, fmt.Errorf("not a function call form: %q", content)
	}
	name := strings.TrimSpace(content[:open])
	if name == "" {
		return "", nil, fmt.Errorf("missing function name in %q", content)
	}
	body := strings.TrimSpace(content[open+1 : close])
	args := map[string]model.Value{}
	if body == "" {
		return name, args, nil
	}
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return "", nil, fmt.Errorf("malformed argument %q in call %q", part, content)
		}
		key := strings.TrimSpace(kv[0])
		args[key] = parseScalarLiteral(strings.TrimSpace(kv[1]))
	}
	return name, args, nil
}

// parseScalarLiteral evaluates the RHS of a k=v function argument as a
// scalar literal: quoted strings, booleans, integers, floats, else a bare
// string.
func parseScalarLiteral(raw string) model.Value {
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return model.String(raw[1 : len(raw)-1])
		}
	}
	if raw == "true" || raw == "True" {
		return model.Bool(true)
	}
	if raw == "false" || raw == "False" {
		return model.Bool(false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return model.Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return model.Float(f)
	}
	return model.String(raw)
}
