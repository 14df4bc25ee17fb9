package engine

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/caseflow/caseflow/internal/model"
)

// extractSource is the fixed taxonomy an ExtractVariable/AssertValidator
// entry's "source" field draws from.
const (
	sourceResponseJSON   = "response json"
	sourceResponseXML    = "response xml"
	sourceResponseText   = "response text"
	sourceResponseHeader = "response header"
	sourceResponseCookie = "response cookie"
	sourceSessionVars    = "session_variables"
)

const (
	rangeAll  = "ALL"
	rangeSome = "SOME"
)

// extractContext bundles the response echo and variable pool an
// extraction entry may read from.
type extractContext struct {
	resp *HTTPResponse
	vars model.VariableList
}

// runExtract evaluates one extract_variables entry against the given
// response/variable context, dispatching on its source/range pair.
// A failure is captured on the entry (success=false) without returning an
// error, since one failing extraction does not by itself fail the step.
func runExtract(ec extractContext, entry model.ExtractVariable) ExtractResult {
	res := ExtractResult{
		Name:   entry.Name,
		Source: entry.Source,
		Range:  entry.Range,
		Expr:   entry.Expr,
		Index:  entry.Index,
	}
	value, err := extractValue(ec, entry.Source, entry.Range, entry.Expr, entry.Index)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.ExtractValue = value
	return res
}

func extractValue(ec extractContext, source, rng, expr string, index *int) (model.Value, error) {
	switch source {
	case sourceResponseJSON:
		if ec.resp == nil {
			return model.Value{}, fmt.Errorf("no response available")
		}
		if rng == rangeAll || rng == "" {
			return ec.resp.JSON, nil
		}
		if ec.resp.JSON.IsNull() {
			return model.Value{}, fmt.Errorf("response not JSON")
		}
		result, err := jsonpath.Get(expr, ec.resp.JSON.Raw())
		if err != nil {
			return model.Value{}, fmt.Errorf("jsonpath %q: %w", expr, err)
		}
		if list, ok := result.([]any); ok && index != nil {
			if *index < 0 || *index >= len(list) {
				return model.Value{}, fmt.Errorf("jsonpath index %d out of range (len=%d)", *index, len(list))
			}
			return model.FromAny(list[*index]), nil
		}
		return model.FromAny(result), nil

	case sourceResponseXML:
		if ec.resp == nil {
			return model.Value{}, fmt.Errorf("no response available")
		}
		if rng == rangeAll || rng == "" {
			return model.String(ec.resp.Text), nil
		}
		matches, err := xmlFindAll(ec.resp.Text, expr)
		if err != nil {
			return model.Value{}, err
		}
		if len(matches) == 0 {
			return model.Value{}, fmt.Errorf("xpath %q: no match", expr)
		}
		if index != nil {
			if *index < 0 || *index >= len(matches) {
				return model.Value{}, fmt.Errorf("xpath index %d out of range (len=%d)", *index, len(matches))
			}
			return model.String(matches[*index]), nil
		}
		return model.String(matches[len(matches)-1]), nil

	case sourceResponseText:
		if ec.resp == nil {
			return model.Value{}, fmt.Errorf("no response available")
		}
		if rng == rangeAll || rng == "" {
			return model.String(ec.resp.Text), nil
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return model.Value{}, fmt.Errorf("regex %q: %w", expr, err)
		}
		m := re.FindStringSubmatch(ec.resp.Text)
		if m == nil {
			return model.Value{}, fmt.Errorf("regex %q: no match", expr)
		}
		if len(m) > 1 {
			return model.String(m[1]), nil
		}
		return model.String(m[0]), nil

	case sourceResponseHeader:
		if ec.resp == nil {
			return model.Value{}, fmt.Errorf("no response available")
		}
		if rng == rangeAll || rng == "" {
			m := make(map[string]model.Value, len(ec.resp.Headers))
			for k, v := range ec.resp.Headers {
				m[k] = model.String(v)
			}
			return model.Map(m), nil
		}
		v, ok := ec.resp.Headers[expr]
		if !ok {
			return model.Value{}, fmt.Errorf("header %q not present", expr)
		}
		return model.String(v), nil

	case sourceResponseCookie:
		if ec.resp == nil {
			return model.Value{}, fmt.Errorf("no response available")
		}
		if rng == rangeAll || rng == "" {
			m := make(map[string]model.Value, len(ec.resp.Cookies))
			for k, v := range ec.resp.Cookies {
				m[k] = model.String(v)
			}
			return model.Map(m), nil
		}
		v, ok := ec.resp.Cookies[expr]
		if !ok {
			return model.Value{}, fmt.Errorf("cookie %q not present", expr)
		}
		return model.String(v), nil

	case sourceSessionVars:
		v, ok := ec.vars.Get(expr)
		if !ok {
			return model.Value{}, fmt.Errorf("session variable %q not defined", expr)
		}
		return v, nil

	default:
		return model.Value{}, fmt.Errorf("unknown extract source: %s", source)
	}
}

// xmlFindAll is a restricted XPath-like walker over encoding/xml: expr is
// a simple "/"-separated tag path, matching element text content. Without
// a leading "//" the path must equal the innermost open elements, so it is
// not anchored at the document root; with a leading "//" only the last
// path segment is compared. There is no general
// XPath axis/predicate support — see DESIGN.md for why no ecosystem
// library covers this.
func xmlFindAll(body, expr string) ([]string, error) {
	path := strings.Split(strings.TrimPrefix(strings.TrimPrefix(expr, "//"), "/"), "/")
	anywhere := strings.HasPrefix(expr, "//")

	dec := xml.NewDecoder(strings.NewReader(body))
	var results []string
	var stack []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if anywhere && stack[len(stack)-1] == path[len(path)-1] || (!anywhere && matchesTail(stack, path)) {
				var text string
				if err := dec.DecodeElement(&struct {
					Text *string `xml:",chardata"`
				}{&text}, &t); err == nil {
					results = append(results, strings.TrimSpace(text))
				}
				stack = stack[:len(stack)-1]
				continue
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return results, nil
}

func matchesTail(stack, path []string) bool {
	if len(stack) < len(path) {
		return false
	}
	offset := len(stack) - len(path)
	for i, p := range path {
		if stack[offset+i] != p {
			return false
		}
	}
	return true
}

// runAssert evaluates one assert_validators entry: extract the actual
// value (always range=SOME), then compare via the fixed operator table.
func runAssert(ec extractContext, v model.AssertValidator) AssertResult {
	res := AssertResult{
		Name:        v.Name,
		Operation:   v.Operation,
		ExceptValue: v.ExceptValue,
	}
	actual, err := extractValue(ec, v.Source, rangeSome, v.Expr, nil)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		return res
	}
	res.ActualValue = actual
	ok, err := compare(v.Operation, actual, v.ExceptValue)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		return res
	}
	res.Success = ok
	return res
}
