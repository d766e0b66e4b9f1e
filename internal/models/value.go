package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
	KindTimestamp
	KindUUID
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	case KindUUID:
		return "uuid"
	case KindJSON:
		return "json"
	default:
		return "null"
	}
}

// Value is a single cell. The zero Value is null.
type Value struct {
	kind Kind
	text string
	num  float64
	flag bool
	ts   time.Time
	id   uuid.UUID
	doc  any

	// exact holds the decimal text of a number float64 cannot carry.
	exact string
}

func Null() Value { return Value{} }
func Text(s string) Value { return Value{kind: KindText, text: s} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, ts: t} }
func UUID(id uuid.UUID) Value { return Value{kind: KindUUID, id: id} }
func JSON(doc any) Value { return Value{kind: KindJSON, doc: doc} }

// Integer keeps i exact even past the float64 integer range.
func Integer(i int64) Value {
	v := Value{kind: KindNumber, num: float64(i)}
	if i > maxSafeInteger || i < -maxSafeInteger {
		v.exact = strconv.FormatInt(i, 10)
	}
	return v
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports null or the empty string; grids sort these to one end.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindText && v.text == "")
}

func (v Value) IsEmptyText() bool {
	return v.kind == KindText && v.text == ""
}

const maxSafeInteger = 1<<53 - 1

var decimalPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// Decimal parses s as a number, keeping its digits when float64 would round
// them.
func Decimal(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Integer(i), true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, false
	}
	v := Number(n)
	if err != nil || significantDigits(s) > 15 {
		v.exact = s
	}
	return v, true
}

// significantDigits counts the mantissa digits of a decimal literal.
func significantDigits(s string) int {
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	return len(strings.TrimLeft(whole+strings.TrimRight(frac, "0"), "0"))
}

func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Int returns the number as an exact int64 when it is integral and in range.
func (v Value) Int() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.exact != "" {
		i, err := strconv.ParseInt(v.exact, 10, 64)
		return i, err == nil
	}
	if v.num == math.Trunc(v.num) && math.Abs(v.num) <= maxSafeInteger {
		return int64(v.num), true
	}
	return 0, false
}

// NumberText is the exact decimal form of a number.
func (v Value) NumberText() string {
	if v.exact != "" {
		return v.exact
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

func (v Value) Bool() (bool, bool) {
	return v.flag, v.kind == KindBool
}

func (v Value) Time() (time.Time, bool) {
	return v.ts, v.kind == KindTimestamp
}

func (v Value) UUID() (uuid.UUID, bool) {
	return v.id, v.kind == KindUUID
}

// String renders the value for display. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.NumberText()
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindTimestamp:
		return v.ts.Format(time.RFC3339Nano)
	case KindUUID:
		return v.id.String()
	case KindJSON:
		raw, err := json.Marshal(v.doc)
		if err != nil {
			return fmt.Sprint(v.doc)
		}
		return string(raw)
	default:
		return ""
	}
}

// Any converts the value into a query argument for the store.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		if i, ok := v.Int(); ok {
			return i
		}
		if v.exact != "" {
			return v.exact
		}
		return v.num
	case KindBool:
		return v.flag
	case KindTimestamp:
		return v.ts
	case KindUUID:
		return v.id.String()
	case KindJSON:
		return v.String()
	default:
		return nil
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == other.text
	case KindNumber:
		if v.exact != "" || other.exact != "" {
			return v.NumberText() == other.NumberText()
		}
		return v.num == other.num
	case KindBool:
		return v.flag == other.flag
	case KindTimestamp:
		return v.ts.Equal(other.ts)
	case KindUUID:
		return v.id == other.id
	default:
		return v.String() == other.String()
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if v.exact != "" {
			return []byte(v.exact), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	case KindTimestamp:
		return json.Marshal(v.ts.Format(time.RFC3339Nano))
	case KindUUID:
		return json.Marshal(v.id.String())
	case KindJSON:
		return json.Marshal(v.doc)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny infers a Value from a raw driver or JSON value.
func FromAny(raw any) Value {
	switch r := raw.(type) {
	case nil:
		return Null()
	case Value:
		return r
	case string:
		return Text(r)
	case []byte:
		return Text(string(r))
	case bool:
		return Bool(r)
	case int:
		return Integer(int64(r))
	case int8:
		return Integer(int64(r))
	case int16:
		return Integer(int64(r))
	case int32:
		return Integer(int64(r))
	case int64:
		return Integer(r)
	case uint:
		return FromAny(uint64(r))
	case uint8:
		return Integer(int64(r))
	case uint16:
		return Integer(int64(r))
	case uint32:
		return Integer(int64(r))
	case uint64:
		if r <= math.MaxInt64 {
			return Integer(int64(r))
		}
		n, _ := Decimal(strconv.FormatUint(r, 10))
		return n
	case float32:
		return Number(float64(r))
	case float64:
		return Number(r)
	case json.Number:
		if n, ok := Decimal(r.String()); ok {
			return n
		}
		return Text(r.String())
	case time.Time:
		return Timestamp(r)
	case uuid.UUID:
		return UUID(r)
	case [16]byte:
		return UUID(uuid.UUID(r))
	case map[string]any, []any:
		return JSON(r)
	default:
		return Text(fmt.Sprint(r))
	}
}

// FromDB converts a raw store value using the column's declared type.
func FromDB(dataType string, raw any) Value {
	return FromAny(raw).Coerce(FamilyOf(dataType))
}

// Coerce reinterprets text into the family's kind. Values that do not parse
// and the empty string are returned unchanged.
func (v Value) Coerce(family TypeFamily) Value {
	if v.kind != KindText || v.text == "" {
		return v
	}
	s := strings.TrimSpace(v.text)

	switch family {
	case FamilyNumber:
		if n, ok := Decimal(s); ok {
			return n
		}
	case FamilyBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return Bool(b)
		}
	case FamilyTimestamp:
		if t, ok := ParseTimestamp(s); ok {
			return Timestamp(t)
		}
	case FamilyUUID:
		if id, err := uuid.Parse(s); err == nil {
			return UUID(id)
		}
	case FamilyJSON:
		var doc any
		if err := json.Unmarshal([]byte(s), &doc); err == nil {
			return JSON(doc)
		}
	}
	return v
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 and the Postgres text forms.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len("2006-01-02") {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
