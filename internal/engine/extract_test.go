package engine

import (
	"testing"

	"github.com/caseflow/caseflow/internal/model"
)

func TestExtractJSONPathWithIndex(t *testing.T) {
	resp := &HTTPResponse{JSON: model.FromAny(map[string]any{
		"items": []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}},
	})}
	idx := 1
	entry := model.ExtractVariable{Name: "second", Source: sourceResponseJSON, Range: rangeSome, Expr: "$.items", Index: &idx}
	res := runExtract(extractContext{resp: resp}, entry)
	if !res.Success {
		t.Fatalf("extract failed: %s", res.Error)
	}
	m, ok := res.ExtractValue.AsMap()
	if !ok {
		t.Fatalf("expected map, got %+v", res.ExtractValue)
	}
	id, _ := m["id"].AsFloat()
	if id != 2 {
		t.Fatalf("id = %v, want 2", id)
	}
}

func TestExtractResponseTextRegex(t *testing.T) {
	resp := &HTTPResponse{Text: "order-id: 582931"}
	entry := model.ExtractVariable{Name: "oid", Source: sourceResponseText, Range: rangeSome, Expr: `order-id: (\d+)`}
	res := runExtract(extractContext{resp: resp}, entry)
	if !res.Success || res.ExtractValue.AsString() != "582931" {
		t.Fatalf("got %+v", res)
	}
}

func TestExtractFailurePerEntry(t *testing.T) {
	resp := &HTTPResponse{Text: "no json here", JSON: model.Null()}
	entry := model.ExtractVariable{Name: "x", Source: sourceResponseJSON, Range: rangeSome, Expr: "$.x"}
	res := runExtract(extractContext{resp: resp}, entry)
	if res.Success {
		t.Fatal("expected failure for non-JSON response")
	}
	if res.Error == "" {
		t.Fatal("expected error message recorded")
	}
}

func TestAssertOperatorTable(t *testing.T) {
	cases := []struct {
		op       string
		actual   model.Value
		expected model.Value
		want     bool
	}{
		{"等于", model.String("3"), model.Int(3), true},
		{"不等于", model.Int(3), model.Int(4), true},
		{"大于", model.Int(5), model.Int(3), true},
		{"大于等于", model.Int(3), model.Int(3), true},
		{"小于", model.Int(2), model.Int(3), true},
		{"小于等于", model.Int(3), model.Int(3), true},
		{"长度等于", model.String("hello"), model.Int(5), true},
		{"包含", model.String("hello world"), model.String("world"), true},
		{"不包含", model.String("hello"), model.String("zzz"), true},
		{"以...开始", model.String("hello"), model.String("he"), true},
		{"以...结束", model.String("hello"), model.String("lo"), true},
		{"非空", model.String("x"), model.Null(), true},
		{"为空", model.String(""), model.Null(), true},
	}
	for _, c := range cases {
		got, err := compare(c.op, c.actual, c.expected)
		if err != nil {
			t.Fatalf("%s: %v", c.op, err)
		}
		if got != c.want {
			t.Errorf("%s: got %v, want %v", c.op, got, c.want)
		}
	}
}
