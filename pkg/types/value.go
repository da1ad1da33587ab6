package types

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds. The zero Kind is Null.
const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindBool
	KindBlob
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBool:
		return "bool"
	case KindBlob:
		return "blob"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one scalar cell read from a table. Exactly one of the payload
// fields is meaningful, selected by kind. The zero Value is Null.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	b    bool
	blob []byte
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Integer returns an integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Real returns a floating point value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Blob returns a byte-sequence value. The slice is copied.
func Blob(p []byte) Value {
	cp := make([]byte, len(p))
	copy(cp, p)
	return Value{kind: KindBlob, blob: cp}
}

// FromDriver converts a value produced by a database/sql driver into a Value.
func FromDriver(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case int64:
		return Integer(x), nil
	case int:
		return Integer(int64(x)), nil
	case int32:
		return Integer(int64(x)), nil
	case float64:
		return Real(x), nil
	case float32:
		return Real(float64(x)), nil
	case bool:
		return Bool(x), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the string payload and whether v is a text value.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsInteger returns the integer payload and whether v is an integer value.
func (v Value) AsInteger() (int64, bool) { return v.i, v.kind == KindInteger }

// AsReal returns the float payload and whether v is a real value.
func (v Value) AsReal() (float64, bool) { return v.f, v.kind == KindReal }

// AsBool returns the bool payload and whether v is a bool value.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsBlob returns the byte payload and whether v is a blob value.
func (v Value) AsBlob() ([]byte, bool) { return v.blob, v.kind == KindBlob }

// Any returns the payload as a plain Go value (nil, string, int64, float64,
// bool or []byte).
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindBool:
		return v.b
	case KindBlob:
		return v.blob
	default:
		return nil
	}
}

// equal reports whether two values have the same kind and payload. NaN
// equals NaN.
func (v Value) equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindInteger:
		return v.i == o.i
	case KindReal:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBool:
		return v.b == o.b
	case KindBlob:
		return bytes.Equal(v.blob, o.blob)
	default:
		return true
	}
}

// MarshalJSON encodes v as a JSON scalar. Blobs become base64 strings and
// NaN or infinite reals become null. Whole reals keep a ".0" so they decode
// back as reals.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return marshalString(v.text)
	case KindInteger:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindReal:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return []byte(formatReal(v.f)), nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindBlob:
		return marshalString(base64.StdEncoding.EncodeToString(v.blob))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Numbers without a fraction or
// exponent that fit in int64 decode as integers, other numbers as reals.
// Strings always decode as text, so blobs come back as their base64 text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrUnsupportedValue)
	}
	switch data[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case '{', '[':
		return fmt.Errorf("%w: nested %s", ErrUnsupportedValue, string(data[:1]))
	default:
		return v.parseNumber(string(data))
	}
}

func (v *Value) parseNumber(s string) error {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = Integer(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: number %q", ErrUnsupportedValue, s)
	}
	*v = Real(f)
	return nil
}

// formatReal formats a finite float in the shortest form, adding ".0" when
// the result would read as an integer.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
