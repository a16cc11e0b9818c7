package memo

import (
	"crypto/sha256"
	"encoding"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a derived key.
const MaxKeyLength = 512

// Keyer derives deterministic string keys from computation inputs.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives a key from the computation name and its input.
	Key(name string, input any) (string, error)
}

// DefaultKeyer derives SHA-256 based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key derives a deterministic key.
// Format: memo:<name>:<hash>
// where hash is the first 16 hex characters of SHA-256(canonical JSON(input)).
//
// JSON ignores unexported struct fields, so inputs holding a struct with an
// unexported field are rejected with ErrInvalidKey rather than collapsed
// onto one key. Types that marshal themselves are trusted. Use a custom
// Keyer for anything else.
func (k *DefaultKeyer) Key(name string, input any) (string, error) {
	if err := checkExported(reflect.ValueOf(input), make(map[uintptr]bool)); err != nil {
		return "", err
	}
	canonical, err := canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("memo: canonicalize input: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("memo:%s:%s", name, hex.EncodeToString(sum[:8])), nil
}

// ValidateKey checks that a derived key is usable.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// canonicalize produces JSON with map keys sorted at every depth.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// encoding/json already sorts keys of typed maps.
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')

		vb, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	out := []byte{'['}
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		vb, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, ']'), nil
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

func marshalsItself(t reflect.Type) bool {
	for _, m := range []reflect.Type{jsonMarshalerType, textMarshalerType} {
		if t.Implements(m) || reflect.PointerTo(t).Implements(m) {
			return true
		}
	}
	return false
}

// promoted reports whether JSON flattens the fields of an unexported
// embedded struct into its parent.
func promoted(f reflect.StructField) bool {
	if !f.Anonymous {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// checkExported fails if v holds a struct whose unexported fields JSON
// would silently drop.
func checkExported(v reflect.Value, seen map[uintptr]bool) error {
	if !v.IsValid() || marshalsItself(v.Type()) {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || seen[v.Pointer()] {
			return nil
		}
		seen[v.Pointer()] = true
		return checkExported(v.Elem(), seen)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkExported(v.Elem(), seen)
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() && !promoted(f) {
				return fmt.Errorf("%w: %s has unexported field %s", ErrInvalidKey, t, f.Name)
			}
			if err := checkExported(v.Field(i), seen); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := checkExported(v.Index(i), seen); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkExported(iter.Key(), seen); err != nil {
				return err
			}
			if err := checkExported(iter.Value(), seen); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ Keyer = (*DefaultKeyer)(nil)
