package resolver

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/model"
)

// GeneratorFunc produces a Value from resolved keyword arguments. Argument
// values arrive already scalar-typed by parseScalarLiteral; a function that
// needs a default simply checks for the key's absence.
type GeneratorFunc func(args map[string]model.Value) (model.Value, error)

// FunctionInfo describes one catalog entry for introspection endpoints.
type FunctionInfo struct {
	Name        string
	Description string
}

// Catalog is the generator-function registry: placeholders shaped like
// ${func(k=v)} call into here instead of the variable pool.
type Catalog struct {
	funcs map[string]GeneratorFunc
	infos []FunctionInfo

	serial atomic.Int64
}

// NewCatalog builds the standard generator catalog.
func NewCatalog() *Catalog {
	c := &Catalog{funcs: map[string]GeneratorFunc{}}
	c.register("uuid", "a random v4 UUID string", genUUID)
	c.register("random_string", "a random alphanumeric string, length=8 by default", genRandomString)
	c.register("now", "the current time in RFC3339, offset_seconds=0 by default", genNow)
	c.register("random_int", "a random integer in [min,max], 0..100 by default", genRandomInt)
	c.register("random_bool", "a random boolean", genRandomBool)
	c.register("serial_number", "a process-local monotonic counter, zero-padded to 6 digits", c.genSerialNumber)
	c.register("email", "a random-looking example.com email address", genEmail)
	c.register("phone_cn", "a random Chinese mainland mobile number", genPhoneCN)
	return c
}

func (c *Catalog) register(name, desc string, fn GeneratorFunc) {
	c.funcs[name] = fn
	c.infos = append(c.infos, FunctionInfo{Name: name, Description: desc})
}

// Describe lists the catalog's functions for introspection/debugging
// surfaces, in registration order.
func (c *Catalog) Describe() []FunctionInfo {
	out := make([]FunctionInfo, len(c.infos))
	copy(out, c.infos)
	return out
}

// Call invokes a registered generator by name.
func (c *Catalog) Call(name string, args map[string]model.Value) (model.Value, error) {
	fn, ok := c.funcs[name]
	if !ok {
		return model.Value{}, &unknownFunctionError{name: name}
	}
	return fn(args)
}

func argInt(args map[string]model.Value, key string, def int64) int64 {
	v, ok := args[key]
	if !ok {
		return def
	}
	f, ok := v.AsFloat()
	if !ok {
		return def
	}
	return int64(f)
}

func genUUID(map[string]model.Value) (model.Value, error) {
	return model.String(uuid.NewString()), nil
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func genRandomString(args map[string]model.Value) (model.Value, error) {
	length := argInt(args, "length", 8)
	if length <= 0 {
		return model.Value{}, fmt.Errorf("random_string: length must be positive, got %d", length)
	}
	buf := make([]byte, length)
	idx := make([]byte, length)
	if _, err := rand.Read(idx); err != nil {
		return model.Value{}, fmt.Errorf("random_string: %w", err)
	}
	for i, b := range idx {
		buf[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return model.String(string(buf)), nil
}

func genNow(args map[string]model.Value) (model.Value, error) {
	offset := argInt(args, "offset_seconds", 0)
	return model.String(time.Now().Add(time.Duration(offset) * time.Second).Format(time.RFC3339)), nil
}

func genRandomInt(args map[string]model.Value) (model.Value, error) {
	min := argInt(args, "min", 0)
	max := argInt(args, "max", 100)
	if max < min {
		return model.Value{}, fmt.Errorf("random_int: max (%d) below min (%d)", max, min)
	}
	span := max - min + 1
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return model.Value{}, fmt.Errorf("random_int: %w", err)
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return model.Int(min + int64(n%uint64(span))), nil
}

func genRandomBool(map[string]model.Value) (model.Value, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return model.Value{}, fmt.Errorf("random_bool: %w", err)
	}
	return model.Bool(b[0]%2 == 0), nil
}

func (c *Catalog) genSerialNumber(map[string]model.Value) (model.Value, error) {
	n := c.serial.Add(1)
	return model.String(fmt.Sprintf("%06d", n)), nil
}

func genEmail(map[string]model.Value) (model.Value, error) {
	local, err := genRandomString(map[string]model.Value{"length": model.Int(10)})
	if err != nil {
		return model.Value{}, err
	}
	return model.String(strings.ToLower(local.AsString()) + "@example.com"), nil
}

var phoneCNPrefixes = []string{"130", "131", "132", "155", "156", "157", "188", "189"}

func genPhoneCN(map[string]model.Value) (model.Value, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return model.Value{}, fmt.Errorf("phone_cn: %w", err)
	}
	prefix := phoneCNPrefixes[int(b[0])%len(phoneCNPrefixes)]
	suffix, err := genRandomDigits(8)
	if err != nil {
		return model.Value{}, err
	}
	return model.String(prefix + suffix), nil
}

func genRandomDigits(n int) (string, error) {
	buf := make([]byte, n)
	idx := make([]byte, n)
	if _, err := rand.Read(idx); err != nil {
		return "", fmt.Errorf("random digits: %w", err)
	}
	for i, c := range idx {
		buf[i] = "0123456789"[int(c)%10]
	}
	return string(buf), nil
}
