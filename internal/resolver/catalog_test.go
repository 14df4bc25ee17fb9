package resolver

import (
	"testing"

	"github.com/caseflow/caseflow/internal/model"
)

func TestCatalogDescribeEnumerable(t *testing.T) {
	c := NewCatalog()
	infos := c.Describe()
	names := map[string]bool{}
	for _, fi := range infos {
		names[fi.Name] = true
	}
	for _, want := range []string{"uuid", "random_string", "now", "random_int", "random_bool", "serial_number", "email", "phone_cn"} {
		if !names[want] {
			t.Errorf("catalog missing function %q", want)
		}
	}
}

func TestCatalogUnknownFunction(t *testing.T) {
	c := NewCatalog()
	if _, err := c.Call("nope", nil); err == nil {
		t.Fatal("expected error for unknown function")
	}
}

func TestCatalogRandomStringLength(t *testing.T) {
	c := NewCatalog()
	v, err := c.Call("random_string", map[string]model.Value{"length": model.Int(12)})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(v.AsString()); got != 12 {
		t.Fatalf("random_string length = %d, want 12", got)
	}
}

func TestCatalogRandomIntRange(t *testing.T) {
	c := NewCatalog()
	for i := 0; i < 20; i++ {
		v, err := c.Call("random_int", map[string]model.Value{"min": model.Int(5), "max": model.Int(5)})
		if err != nil {
			t.Fatal(err)
		}
		f, _ := v.AsFloat()
		if f != 5 {
			t.Fatalf("random_int(5,5) = %v, want 5", f)
		}
	}
}

func TestCatalogSerialNumberMonotonic(t *testing.T) {
	c := NewCatalog()
	a, _ := c.Call("serial_number", nil)
	b, _ := c.Call("serial_number", nil)
	if a.AsString() == b.AsString() {
		t.Fatalf("expected distinct serial numbers, got %q twice", a.AsString())
	}
}

func TestParseFuncCallArgs(t *testing.T) {
	name, args, err := parseFuncCall(`random_string(length=8)`)
	if err != nil {
		t.Fatal(err)
	}
	if name != "random_string" {
		t.Fatalf("name = %q, want random_string", name)
	}
	f, ok := args["length"].AsFloat()
	if !ok || f != 8 {
		t.Fatalf("length arg = %v, %v, want 8, true", f, ok)
	}
}

func TestParseFuncCallNoArgs(t *testing.T) {
	name, args, err := parseFuncCall(`uuid()`)
	if err != nil {
		t.Fatal(err)
	}
	if name != "uuid" || len(args) != 0 {
		t.Fatalf("got name=%q args=%v", name, args)
	}
}
