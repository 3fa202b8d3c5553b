package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ScalarKind identifies which variant a Scalar holds.
type ScalarKind uint8

const (
	KindNull ScalarKind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

func (k ScalarKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Scalar is a single cell value: String | Number | Bool | Null, plus Time for
// native date/time values produced by decoders.
// The zero value is Null.
type Scalar struct {
	kind ScalarKind
	str  string
	num  float64
	b    bool
	t    time.Time
}

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// String returns a string scalar.
func String(s string) Scalar { return Scalar{kind: KindString, str: s} }

// Number returns a numeric scalar.
func Number(f float64) Scalar { return Scalar{kind: KindNumber, num: f} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{kind: KindBool, b: b} }

// Time returns a date/time scalar.
func Time(t time.Time) Scalar { return Scalar{kind: KindTime, t: t} }

func (s Scalar) Kind() ScalarKind { return s.kind }
func (s Scalar) IsNull() bool     { return s.kind == KindNull }

// Text returns the string payload; empty for non-string scalars.
func (s Scalar) Text() string { return s.str }

// Float returns the numeric payload; zero for non-number scalars.
func (s Scalar) Float() float64 { return s.num }

// Truth returns the boolean payload; false for non-bool scalars.
func (s Scalar) Truth() bool { return s.b }

// Moment returns the time payload; zero for non-time scalars.
func (s Scalar) Moment() time.Time { return s.t }

// Value returns the scalar as a plain Go value suitable for database/sql arguments.
func (s Scalar) Value() any {
	switch s.kind {
	case KindString:
		return s.str
	case KindNumber:
		return s.num
	case KindBool:
		return s.b
	case KindTime:
		return s.t
	default:
		return nil
	}
}

// ScalarOf converts a value coming out of a database driver or JSON decoder.
func ScalarOf(v any) Scalar {
	switch x := v.(type) {
	case nil:
		return Null()
	case Scalar:
		return x
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return String(x.String())
		}
		return Number(f)
	case time.Time:
		return Time(x)
	default:
		return String(fmt.Sprint(x))
	}
}

// Equal reports whether two scalars hold the same variant and payload.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindString:
		return s.str == o.str
	case KindNumber:
		return s.num == o.num
	case KindBool:
		return s.b == o.b
	case KindTime:
		return s.t.Equal(o.t)
	default:
		return true
	}
}

func (s Scalar) String() string {
	switch s.kind {
	case KindString:
		return s.str
	case KindNumber:
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindTime:
		return s.t.Format(time.RFC3339)
	default:
		return "null"
	}
}

// MarshalJSON encodes the scalar as the matching JSON primitive. Times are
// RFC 3339 strings; non-finite numbers become null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindString:
		return json.Marshal(s.str)
	case KindNumber:
		if math.IsNaN(s.num) || math.IsInf(s.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(s.num)
	case KindBool:
		return json.Marshal(s.b)
	case KindTime:
		return json.Marshal(s.t.Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON primitive. Objects and arrays are rejected.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Null()
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = String(str)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*s = Bool(b)
	case '{', '[':
		return fmt.Errorf("scalar cannot hold a JSON %s", map[byte]string{'{': "object", '[': "array"}[data[0]])
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid scalar %s: %w", data, err)
		}
		*s = Number(f)
	}
	return nil
}
