package resolver

import (
	"testing"

	"github.com/caseflow/caseflow/internal/model"
)

func lookupFrom(vars map[string]model.Value) VariableLookup {
	return func(name string) (model.Value, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestResolveStringBareHit(t *testing.T) {
	r := New(lookupFrom(map[string]model.Value{"name": model.String("邵刚")}), nil, nil)
	got := r.ResolveString("hello ${name}")
	if want := "hello 邵刚"; got != want {
		t.Fatalf("ResolveString() = %q, want %q", got, want)
	}
}

func TestResolveStringBareMissKeepsLiteral(t *testing.T) {
	r := New(lookupFrom(nil), nil, nil)
	got := r.ResolveString("hello ${missing}")
	if want := "hello ${missing}"; got != want {
		t.Fatalf("ResolveString() = %q, want %q", got, want)
	}
}

func TestResolveStringIdempotentOnMiss(t *testing.T) {
	r := New(lookupFrom(nil), nil, nil)
	once := r.ResolveString("x=${missing}")
	twice := r.ResolveString(once)
	if once != twice {
		t.Fatalf("ResolveString not idempotent on miss: %q vs %q", once, twice)
	}
}

func TestResolveCodeQuotedLiteral(t *testing.T) {
	r := New(lookupFrom(map[string]model.Value{"name": model.String("邵刚")}), nil, nil)
	got := r.ResolveCode(`dic["k"] = "${name}"`)
	if want := `dic["k"] = "邵刚"`; got != want {
		t.Fatalf("ResolveCode() = %q, want %q", got, want)
	}
}

func TestResolveCodeQuotedLiteralSingle(t *testing.T) {
	r := New(lookupFrom(map[string]model.Value{"name": model.String("邵刚")}), nil, nil)
	got := r.ResolveCode(`dic['k'] = '${name}'`)
	if want := `dic['k'] = '邵刚'`; got != want {
		t.Fatalf("ResolveCode() = %q, want %q", got, want)
	}
}

func TestResolveCodeQuotedConcatFixedPoint(t *testing.T) {
	r := New(lookupFrom(map[string]model.Value{
		"x": model.String("1"),
		"y": model.String("2"),
	}), nil, nil)
	got := r.ResolveCode(`v = "a_${x}_${y}"`)
	if want := `v = "a_1_2"`; got != want {
		t.Fatalf("ResolveCode() = %q, want %q", got, want)
	}
}

func TestResolveCodeBarePlaceholderBecomesLiteral(t *testing.T) {
	r := New(lookupFrom(map[string]model.Value{"n": model.Int(3)}), nil, nil)
	got := r.ResolveCode(`v = ${n} + 1`)
	if want := `v = 3 + 1`; got != want {
		t.Fatalf("ResolveCode() = %q, want %q", got, want)
	}
}

func TestResolveFunctionCallDispatch(t *testing.T) {
	r := New(lookupFrom(nil), NewCatalog(), nil)
	got := r.ResolveString("id=${uuid()}")
	if len(got) <= len("id=") {
		t.Fatalf("expected uuid substitution, got %q", got)
	}
}

func TestResolveVariableListOnlyValueField(t *testing.T) {
	r := New(lookupFrom(map[string]model.Value{"v": model.String("ok")}), nil, nil)
	list := model.VariableList{{Key: "${v}", Value: model.String("${v}"), Desc: "${v}"}}
	out := r.ResolveVariableList(list)
	if out[0].Key != "${v}" || out[0].Desc != "${v}" {
		t.Fatalf("expected Key/Desc untouched, got %+v", out[0])
	}
	if out[0].Value.AsString() != "ok" {
		t.Fatalf("expected Value resolved, got %+v", out[0].Value)
	}
}
