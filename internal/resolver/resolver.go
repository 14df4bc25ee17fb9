// Package resolver implements a three-pass placeholder and function
// substitution scheme: a quoted-literal pass used for embedding values
// into scripted code, a quoted-concatenation pass run to a fixed point,
// and a bare placeholder pass that dispatches either to the variable
// pool or to the generator catalog.
package resolver

import (
	"regexp"
	"strings"

	"github.com/caseflow/caseflow/internal/model"
)

// Go's regexp (RE2) has no backreference support, unlike the Python
// implementation's single `(['"])...\1` pattern, so the quote-aware
// passes below run once per quote character instead of matching either
// quote with one expression.
var (
	rePlaceholder = regexp.MustCompile(`\$\{([^}]+)\}`)

	reQuotedLiteralDouble = regexp.MustCompile(`"\$\{([^}]+)\}"`)
	reQuotedLiteralSingle = regexp.MustCompile(`'\$\{([^}]+)\}'`)

	reQuotedConcatDouble = regexp.MustCompile(`"([^"]*?)\$\{([^}]+)\}([^"]*?)"`)
	reQuotedConcatSingle = regexp.MustCompile(`'([^']*?)\$\{([^}]+)\}([^']*?)'`)
)

// VariableLookup resolves a bare variable name to its Value, reporting a
// miss instead of erroring so the caller can decide whether to log it.
type VariableLookup func(name string) (model.Value, bool)

// Logger receives one line per resolution attempt (hit, miss, or
// function failure). A nil Logger silently discards them.
type Logger func(message string)

// Resolver resolves ${var} and ${func(args)} placeholders against a
// variable lookup and a function catalog.
type Resolver struct {
	Lookup  VariableLookup
	Catalog *Catalog
	Log     Logger
}

func New(lookup VariableLookup, catalog *Catalog, log Logger) *Resolver {
	return &Resolver{Lookup: lookup, Catalog: catalog, Log: log}
}

func (r *Resolver) log(msg string) {
	if r.Log != nil {
		r.Log(msg)
	}
}

// Resolve recursively substitutes placeholders inside strings, lists, and
// maps, leaving any other value untouched. For {key,value,desc}-shaped
// list items only the "value" field is resolved.
func (r *Resolver) Resolve(value model.Value) model.Value {
	switch value.Kind() {
	case model.KindString:
		return model.String(r.ResolveString(value.AsString()))
	case model.KindList:
		items, _ := value.AsList()
		out := make([]model.Value, len(items))
		for i, item := range items {
			out[i] = r.resolveListItem(item)
		}
		return model.List(out)
	case model.KindMap:
		m, _ := value.AsMap()
		out := make(map[string]model.Value, len(m))
		for k, v := range m {
			out[k] = r.Resolve(v)
		}
		return model.Map(out)
	default:
		return value
	}
}

func (r *Resolver) resolveListItem(item model.Value) model.Value {
	m, ok := item.AsMap()
	if !ok {
		return r.Resolve(item)
	}
	if _, hasKey := m["key"]; hasKey {
		if v, hasValue := m["value"]; hasValue {
			out := make(map[string]model.Value, len(m))
			for k, val := range m {
				out[k] = val
			}
			out["value"] = r.Resolve(v)
			return model.Map(out)
		}
	}
	return r.Resolve(item)
}

// ResolveVariableList resolves only the Value field of each entry,
// leaving Key/Desc untouched — the concrete Go shape of the {key,value,desc}
// list-item rule above, used directly by step executors that already work
// with model.VariableList rather than a generic model.Value tree.
func (r *Resolver) ResolveVariableList(list model.VariableList) model.VariableList {
	out := make(model.VariableList, len(list))
	for i, e := range list {
		out[i] = model.VariableEntry{
			Key:   e.Key,
			Value: r.Resolve(e.Value),
			Desc:  e.Desc,
		}
	}
	return out
}

// ResolveString applies the bare-placeholder pass (pass 3) to a plain
// string: a miss keeps the literal placeholder and logs a resolution
// failure; a hit or function call substitutes the string form of the
// result. Re-applying ResolveString to output with no live variables is
// idempotent, since unresolved placeholders stay literal.
func (r *Resolver) ResolveString(s string) string {
	return rePlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		content := strings.TrimSpace(rePlaceholder.FindStringSubmatch(match)[1])
		if content == "" {
			r.log("placeholder resolution failed: blank reference kept literal")
			return match
		}
		if strings.Contains(content, "(") && strings.Contains(content, ")") {
			result, err := r.callFunction(content)
			if err != nil {
				r.log("placeholder function call failed, keeping literal: " + err.Error())
				return match
			}
			r.log("placeholder function resolved: ${" + content + "} => " + result.AsString())
			return result.AsString()
		}
		v, ok := r.lookupVar(content)
		if !ok {
			r.log("placeholder resolution failed: variable not defined: " + content)
			return match
		}
		r.log("placeholder resolved: ${" + content + "} => " + v.AsString())
		return v.AsString()
	})
}

func (r *Resolver) lookupVar(name string) (model.Value, bool) {
	if r.Lookup == nil {
		return model.Value{}, false
	}
	return r.Lookup(name)
}

func (r *Resolver) callFunction(content string) (model.Value, error) {
	name, args, err := parseFuncCall(content)
	if err != nil {
		return model.Value{}, err
	}
	if r.Catalog == nil {
		return model.Value{}, &unknownFunctionError{name: name}
	}
	return r.Catalog.Call(name, args)
}

// ResolveCode applies the code-literal-aware substitution sequence:
// quoted-literal placeholders become language literals, quoted-concatenation
// placeholders splice string values to a fixed point, and remaining bare
// placeholders in code expressions become language literals too (never
// free identifiers).
func (r *Resolver) ResolveCode(code string) string {
	if code == "" {
		return code
	}
	code = r.replaceQuotedLiteral(code, reQuotedLiteralDouble, `"`)
	code = r.replaceQuotedLiteral(code, reQuotedLiteralSingle, `'`)

	for {
		next := r.replaceQuotedConcat(code, reQuotedConcatDouble, `"`)
		next = r.replaceQuotedConcat(next, reQuotedConcatSingle, `'`)
		if next == code {
			break
		}
		code = next
	}

	return rePlaceholder.ReplaceAllStringFunc(code, func(match string) string {
		name := strings.TrimSpace(rePlaceholder.FindStringSubmatch(match)[1])
		if name == "" {
			r.log("code placeholder resolution failed: blank reference kept literal")
			return match
		}
		v, ok := r.lookupVar(name)
		if !ok {
			r.log("code placeholder resolution failed: variable not defined: " + name)
			return match
		}
		return v.Literal()
	})
}

func (r *Resolver) replaceQuotedLiteral(code string, re *regexp.Regexp, quote string) string {
	return re.ReplaceAllStringFunc(code, func(match string) string {
		name := strings.TrimSpace(re.FindStringSubmatch(match)[1])
		if name == "" {
			r.log("code placeholder resolution failed: blank reference kept literal")
			return match
		}
		v, ok := r.lookupVar(name)
		if !ok {
			r.log("code placeholder resolution failed: variable not defined: " + name)
			return match
		}
		lit := v.Literal()
		if quote == `'` && v.Kind() == model.KindString {
			inner := strings.ReplaceAll(lit[1:len(lit)-1], `\"`, `"`)
			lit = `'` + strings.ReplaceAll(inner, `'`, `\'`) + `'`
		}
		return lit
	})
}

func (r *Resolver) replaceQuotedConcat(code string, re *regexp.Regexp, quote string) string {
	return re.ReplaceAllStringFunc(code, func(match string) string {
		sub := re.FindStringSubmatch(match)
		prefix, name, suffix := sub[1], sub[2], sub[3]
		if strings.TrimSpace(name) == "" {
			r.log("code placeholder resolution failed: blank reference kept literal")
			return match
		}
		v, ok := r.lookupVar(name)
		if !ok {
			r.log("code placeholder resolution failed: variable not defined: " + name)
			return match
		}
		return quote + prefix + v.AsString() + suffix + quote
	})
}

type unknownFunctionError struct{ name string }

func (e *unknownFunctionError) Error() string {
	return "unknown generator function: " + e.name
}
