package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

// Field describes one JSON-addressable struct field of a record type.
type Field struct {
	Name     string
	Index    int
	ReadOnly bool
	Required bool
}

var fieldCache sync.Map // reflect.Type -> []Field

// Fields lists the JSON fields of record type t in declaration order.
func Fields(t reflect.Type) []Field {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]Field)
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		fields = append(fields, Field{
			Name:     name,
			Index:    i,
			ReadOnly: sf.Tag.Get("form") == "readonly",
			Required: hasRule(sf.Tag.Get("validate"), "required"),
		})
	}
	fieldCache.Store(t, fields)
	return fields
}

func lookup(t reflect.Type, name string) (Field, bool) {
	for _, f := range Fields(t) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PayloadOf collects the editable fields of record v keyed by JSON name.
// Read-only fields such as id and timestamps never leave the client.
func PayloadOf(v any) resource.Payload {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	payload := resource.Payload{}
	for _, f := range Fields(rv.Type()) {
		if f.ReadOnly {
			continue
		}
		fv := rv.Field(f.Index)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			payload[f.Name] = nil
			continue
		}
		payload[f.Name] = fv.Interface()
	}
	return payload
}

// SetField assigns value to the JSON field name of the struct ptr points to.
// Strings are parsed into the field's type, so raw text input and CSV cells
// can be applied directly.
func SetField(ptr any, name string, value any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return internal.NewInternalError("form target must be a struct pointer", nil)
	}
	rv = rv.Elem()

	f, ok := lookup(rv.Type(), name)
	if !ok {
		return internal.NewValidationFieldError(name, "unknown field", internal.ErrCodeUnknownField)
	}
	if f.ReadOnly {
		return internal.NewValidationFieldError(name, "field is read-only", internal.ErrCodeReadOnlyField)
	}
	if err := assign(rv.Field(f.Index), value); err != nil {
		return internal.NewValidationFieldError(name, err.Error(), internal.ErrCodeInvalidValue)
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if s, ok := value.(string); ok {
		return assignString(dst, s)
	}

	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.Pointer && src.Type().ConvertibleTo(dst.Type().Elem()):
		elem := reflect.New(dst.Type().Elem())
		elem.Elem().Set(src.Convert(dst.Type().Elem()))
		dst.Set(elem)
	case isNumber(src.Kind()) && isNumber(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot use %T here", value)
	}
	return nil
}

// assignString stores text fields exactly as typed; surrounding space is only
// ignored when the value is parsed as a number, date or bool.
func assignString(dst reflect.Value, raw string) error {
	s := strings.TrimSpace(raw)

	if dst.Kind() == reflect.Pointer {
		if s == "" {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		elem := reflect.New(dst.Type().Elem())
		if err := assignString(elem.Elem(), raw); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if dst.Type() == timeType {
		t, err := parseTime(s)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if s == "" {
			dst.SetInt(0)
			return nil
		}
		n, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not a whole number", s)
		}
		dst.SetInt(n)
	case reflect.Float32, reflect.Float64:
		if s == "" {
			dst.SetFloat(0)
			return nil
		}
		n, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		dst.SetFloat(n)
	case reflect.Bool:
		if s == "" {
			dst.SetBool(false)
			return nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%q is not true or false", s)
		}
		dst.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", dst.Type())
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date", s)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}
