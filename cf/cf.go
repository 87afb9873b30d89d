package cf

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Load populates the exported fields of the struct pointed to by cf from data, keyed by
// the 'cf' struct tag (field name when untagged). Unknown keys are ignored; a type
// mismatch is an error.
func Load(data map[string]interface{}, cf interface{}) error {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return errors.Errorf("cf type [%s] not struct", cfV.Type())
	}
	for i := 0; i < cfV.NumField(); i++ {
		field := cfV.Field(i)
		if !field.CanInterface() || !field.CanSet() {
			continue
		}
		key := keyName(cfV.Type().Field(i))
		v, found := data[key]
		if !found {
			continue
		}
		vV := reflect.ValueOf(v)
		switch field.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			if vV.Kind() == reflect.Int || vV.Kind() == reflect.Int64 {
				field.SetInt(vV.Int())
			} else {
				return typeMismatch(key, v, field)
			}
		case reflect.Uint32, reflect.Uint64:
			if vV.Kind() == reflect.Int || vV.Kind() == reflect.Int64 {
				if vV.Int() < 0 {
					return errors.Errorf("field '%s' negative value for unsigned field", key)
				}
				field.SetUint(uint64(vV.Int()))
			} else {
				return typeMismatch(key, v, field)
			}
		case reflect.Float64:
			if vV.Kind() == reflect.Float64 {
				field.SetFloat(vV.Float())
			} else {
				return typeMismatch(key, v, field)
			}
		case reflect.Bool:
			if vV.Kind() == reflect.Bool {
				field.SetBool(vV.Bool())
			} else {
				return typeMismatch(key, v, field)
			}
		case reflect.String:
			if vV.Kind() == reflect.String {
				field.SetString(vV.String())
			} else {
				return typeMismatch(key, v, field)
			}
		default:
			return errors.Errorf("unsupported field type [%s]", field.Type())
		}
	}
	return nil
}

// Dump renders the struct's cf keys and values in a block labeled with label.
func Dump(label string, cf interface{}) string {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return ""
	}
	out := label + " {\n"
	format := fmt.Sprintf("\t%%-%ds %%v\n", maxKeyLength(cfV))
	for i := 0; i < cfV.NumField(); i++ {
		if cfV.Field(i).CanInterface() {
			out += fmt.Sprintf(format, keyName(cfV.Type().Field(i)), cfV.Field(i).Interface())
		}
	}
	out += "}\n"
	return out
}

func typeMismatch(key string, v interface{}, field reflect.Value) error {
	return errors.Errorf("field '%s' type mismatch, got [%s], expected [%s]", key, reflect.TypeOf(v), field.Type())
}

func keyName(v reflect.StructField) string {
	if tag := v.Tag.Get("cf"); tag != "" {
		return tag
	}
	return v.Name
}

func maxKeyLength(cfV reflect.Value) int {
	max := 0
	for i := 0; i < cfV.NumField(); i++ {
		if l := len(keyName(cfV.Type().Field(i))); l > max {
			max = l
		}
	}
	return max
}
