// Package schemas holds the per-entity input schemas used before create
// and update, and the decoder that turns a JSON body into one.
package schemas

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/hrms/internal/app/system/inputval"
)

// checker is implemented by inputs with cross-field rules.
type checker interface {
	Check() inputval.Result
}

// Decode reads body into a T field by field. A field whose JSON value has
// the wrong type is reported under its own key; the tag rules then run on
// the whole input and every failure comes back in one Result. A body that
// is not a JSON object yields a single "_" error.
func Decode[T any](body []byte) (T, inputval.Result) {
	var out T
	var res inputval.Result

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		res.Add("_", "Request body must be a JSON object.")
		return out, res
	}

	rv := reflect.ValueOf(&out).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := jsonName(f)
		if name == "" {
			continue
		}
		msg, ok := raw[name]
		if !ok {
			continue
		}
		dst := reflect.New(f.Type)
		if err := json.Unmarshal(msg, dst.Interface()); err != nil {
			res.Add(name, fmt.Sprintf("%s has the wrong type.", labelOf(f)))
			continue
		}
		rv.Field(i).Set(dst.Elem())
	}

	res.Merge(inputval.Validate(&out))
	if c, ok := any(&out).(checker); ok && !res.HasErrors() {
		res.Merge(c.Check())
	}
	return out, res
}

// Fields lists the JSON field names an input type accepts.
func Fields(v any) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		if name := jsonName(t.Field(i)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func labelOf(f reflect.StructField) string {
	if l := f.Tag.Get("label"); l != "" {
		return l
	}
	return f.Name
}
