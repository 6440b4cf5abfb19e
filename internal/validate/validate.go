package validate

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"github.com/go-playground/validator/v10"
	"reflect"
	"sort"
	"strings"
)

var v = newValidator()

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	// report json field names, not Go ones
	vv.RegisterTagNameFunc(jsonName)
	return vv
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Struct validates s and returns an apperr validation error listing every
// failing field. Fields that failed "required" are also listed under
// details["missing"].
func Struct(s any) error {
	return StructWith(s, nil)
}

// StructWith is Struct plus field errors found while decoding, such as a
// value of the wrong JSON type. Those replace whatever the validator says
// about the same field.
func StructWith(s any, known map[string]string) error {
	var ves validator.ValidationErrors
	if err := v.Struct(s); err != nil && !errors.As(err, &ves) {
		return apperr.Internal("validation setup", err)
	}

	fields := make(map[string]string, len(ves)+len(known))
	var missing []string
	for _, fe := range ves {
		if _, ok := known[fe.Field()]; ok {
			continue
		}
		fields[fe.Field()] = describe(fe)
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	for name, msg := range known {
		fields[name] = msg
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(missing)

	e := apperr.Validation("validation failed").WithDetails("fields", fields)
	if len(missing) > 0 {
		e = e.WithDetails("missing", missing)
		e.Message = "missing required fields"
	}
	return e
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}

// DecodeFields unmarshals each member of raw into the matching field of the
// struct dst points to. Members that fail are returned by json name with a
// message; every other field is still set.
func DecodeFields(raw map[string]json.RawMessage, dst any) map[string]string {
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()

	var bad map[string]string
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		name := jsonName(f)
		msg, ok := member(raw, name)
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, rv.Field(i).Addr().Interface()); err != nil {
			if bad == nil {
				bad = make(map[string]string)
			}
			bad[name] = DecodeMessage(err)
		}
	}
	return bad
}

// member looks name up the way encoding/json does: exact match first, then
// case-insensitive.
func member(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if m, ok := raw[name]; ok {
		return m, true
	}
	for k, m := range raw {
		if strings.EqualFold(k, name) {
			return m, true
		}
	}
	return nil, false
}

// DecodeMessage turns a json decode error for a single field into a short
// client message.
func DecodeMessage(err error) string {
	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) {
		return err.Error()
	}
	t := te.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "has the wrong type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Slice, reflect.Array:
		return "must be a list"
	default:
		return "must be an object"
	}
}
