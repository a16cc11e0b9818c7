package memo

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestKeyer_DeterministicForMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	inputs := []map[string]any{
		{"b": 2, "a": 1, "c": 3},
		{"a": 1, "c": 3, "b": 2},
		{"c": 3, "b": 2, "a": 1},
	}

	var first string
	for i, in := range inputs {
		key, err := keyer.Key("sum", in)
		if err != nil {
			t.Fatalf("Key() #%d error = %v", i, err)
		}
		if i == 0 {
			first = key
			continue
		}
		if key != first {
			t.Errorf("Key() #%d = %s, want %s", i, key, first)
		}
	}
}

func TestKeyer_NestedMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	nested1 := map[string]any{
		"outer": map[string]any{"z": 26, "a": 1, "m": 13},
		"other": "value",
	}
	nested2 := map[string]any{
		"other": "value",
		"outer": map[string]any{"a": 1, "m": 13, "z": 26},
	}

	key1, _ := keyer.Key("nested", nested1)
	key2, _ := keyer.Key("nested", nested2)
	if key1 != key2 {
		t.Errorf("nested maps with same content: %s != %s", key1, key2)
	}
}

func TestKeyer_SliceOrderPreserved(t *testing.T) {
	keyer := NewDefaultKeyer()

	key1, _ := keyer.Key("items", map[string]any{"items": []any{1, 2, 3}})
	key2, _ := keyer.Key("items", map[string]any{"items": []any{3, 2, 1}})
	if key1 == key2 {
		t.Errorf("different slice order should give different keys: %s", key1)
	}
}

func TestKeyer_NamesSeparateKeys(t *testing.T) {
	keyer := NewDefaultKeyer()
	in := map[string]any{"q": "x"}

	key1, _ := keyer.Key("left", in)
	key2, _ := keyer.Key("right", in)
	if key1 == key2 {
		t.Errorf("different names should give different keys: %s", key1)
	}
}

func TestKeyer_KeyFormat(t *testing.T) {
	keyer := NewDefaultKeyer()

	key, err := keyer.Key("fib", 10)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	prefix := "memo:fib:"
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("Key() = %q, want prefix %q", key, prefix)
	}
	hash := strings.TrimPrefix(key, prefix)
	if len(hash) != 16 {
		t.Errorf("hash length = %d, want 16: %q", len(hash), hash)
	}
	for _, c := range hash {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			t.Errorf("hash should be lowercase hex, got %q", hash)
			break
		}
	}
}

func TestKeyer_NilVersusEmpty(t *testing.T) {
	keyer := NewDefaultKeyer()

	keyNil, err := keyer.Key("k", nil)
	if err != nil {
		t.Fatalf("Key(nil) error = %v", err)
	}
	keyEmpty, err := keyer.Key("k", map[string]any{})
	if err != nil {
		t.Fatalf("Key(empty) error = %v", err)
	}
	if keyNil == keyEmpty {
		t.Errorf("nil and empty map should differ: %s", keyNil)
	}
}

func TestKeyer_UnsupportedInput(t *testing.T) {
	keyer := NewDefaultKeyer()

	_, err := keyer.Key("k", map[string]any{"ch": make(chan int)})
	if err == nil {
		t.Fatal("Key() should fail for a channel value")
	}
}

func TestKeyer_UnexportedFields(t *testing.T) {
	type inner struct{ secret string }
	type Embedded struct{ A int }
	type withEmbedded struct {
		Embedded
		B int
	}
	type embeddedScalar int
	type withScalar struct {
		embeddedScalar
	}

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{"exported fields", struct{ A, B int }{1, 2}, false},
		{"unexported field", inner{"x"}, true},
		{"pointer to unexported", &inner{"x"}, true},
		{"nested in map", map[string]any{"in": inner{"x"}}, true},
		{"nested in slice", []inner{{"x"}}, true},
		{"embedded struct promoted", withEmbedded{Embedded{1}, 2}, false},
		{"embedded scalar dropped", withScalar{1}, true},
		{"marshaler trusted", time.Unix(0, 0).UTC(), false},
		{"empty struct", struct{}{}, false},
	}

	keyer := NewDefaultKeyer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keyer.Key("k", tt.input)
			if tt.wantErr && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Key() error = %v, want %v", err, ErrInvalidKey)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Key() error = %v, want nil", err)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", ErrInvalidKey},
		{"valid key", "memo:fib:abc123", nil},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
		{"contains newline", "key\nwith\nnewlines", ErrInvalidKey},
		{"contains carriage return", "key\rwith\rreturns", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"max length exactly", strings.Repeat("x", MaxKeyLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrNilCompute", ErrNilCompute, "memo: computation is nil"},
		{"ErrInvalidKey", ErrInvalidKey, "memo: key is invalid"},
		{"ErrKeyTooLong", ErrKeyTooLong, "memo: key exceeds max length"},
		{"ErrComputePanicked", ErrComputePanicked, "memo: computation panicked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}
}
