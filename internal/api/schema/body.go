package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/skybi/sunshine/internal/contract"
)

var (
	errRequestBodyInvalidJSON = func(err string) *Error {
		return &Error{
			Type:    "validation.requestBody.invalidJSON",
			Message: "Request body is not a valid JSON input.",
			Details: map[string]any{
				"error": err,
			},
		}
	}
	errRequestBodyParameterInvalidType = func(name, expectedType string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.invalidType",
			Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"expected_type": expectedType,
			},
		}
	}
	errRequestBodyParameterMissing = func(name string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.missing",
			Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
	errRequestBodyParameterNumberOutOfRange = func(name string, value, min, max int64) *Error {
		comparison := ""
		if value < min {
			comparison = fmt.Sprintf("%d [given] < %d [min]", value, min)
		} else if value > max {
			comparison = fmt.Sprintf("%d [given] > %d [max]", value, max)
		}

		return &Error{
			Type:    "validation.requestBody.parameter.number.outOfRange",
			Message: fmt.Sprintf("The request body parameter '%s' is out of the required range (%s).", name, comparison),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
	errRequestBodyParameterInvalidFormat = func(name, value, format string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.invalidFormat",
			Message: fmt.Sprintf("The request body parameter '%s' ('%s') does not match the required format (%s).", name, value, format),
			Details: map[string]any{
				"parameter": name,
				"value":     value,
				"format":    format,
			},
		}
	}
)

// UnmarshalBody parses and decodes a JSON request body and performs validations on it
func UnmarshalBody[T any](request *http.Request) (*T, []*Error, error) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, nil, err
	}

	target := new(T)
	if errs := unmarshal(body, target); errs != nil {
		return nil, errs, nil
	}

	errs, err := validateStruct("", target)
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

// UnmarshalBodyList parses and decodes a JSON request body containing either a single object or an array of
// objects and performs validations on every one of them.
// The second return value reports whether the body was an array.
func UnmarshalBodyList[T any](request *http.Request) ([]*T, bool, []*Error, error) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, false, nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		target := new(T)
		if errs := unmarshal(body, target); errs != nil {
			return nil, false, errs, nil
		}
		errs, err := validateStruct("", target)
		if err != nil {
			return nil, false, nil, err
		}
		return []*T{target}, false, errs, nil
	}

	var targets []*T
	if errs := unmarshal(body, &targets); errs != nil {
		return nil, true, errs, nil
	}
	var errs []*Error
	for i, target := range targets {
		if target == nil {
			errs = append(errs, errRequestBodyParameterMissing(fmt.Sprintf("[%d]", i)))
			continue
		}
		subErrs, err := validateStruct(fmt.Sprintf("[%d].", i), target)
		if err != nil {
			return nil, true, nil, err
		}
		errs = append(errs, subErrs...)
	}
	return targets, true, errs, nil
}

func unmarshal(body []byte, target any) []*Error {
	if err := json.Unmarshal(body, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return []*Error{errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())}
		}
		return []*Error{errRequestBodyInvalidJSON(err.Error())}
	}
	return nil
}

func validateStruct(fieldPrefix string, val any) ([]*Error, error) {
	typ := reflect.TypeOf(val)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	ref := reflect.ValueOf(val)
	if ref.Kind() == reflect.Pointer {
		ref = ref.Elem()
	}

	var errs []*Error

	for i := 0; i < typ.NumField(); i++ {
		// Retrieve the validation requirements
		fieldDef := typ.Field(i)
		required := strings.EqualFold(fieldDef.Tag.Get("required"), "true")
		format := fieldDef.Tag.Get("format")
		min, err := strconv.ParseInt(fieldDef.Tag.Get("min"), 10, 64)
		if err != nil {
			min = math.MinInt64
		}
		max, err := strconv.ParseInt(fieldDef.Tag.Get("max"), 10, 64)
		if err != nil {
			max = math.MaxInt64
		}

		fieldName := getFieldName(fieldDef)

		// Perform all validations on the field
		field := ref.Field(i)
		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				if required {
					errs = append(errs, errRequestBodyParameterMissing(fieldPrefix+fieldName))
				}
				continue
			}
			field = field.Elem()
		}

		switch {
		case field.CanUint():
			val := int64(field.Uint())
			if val < min || val > max {
				errs = append(errs, errRequestBodyParameterNumberOutOfRange(fieldPrefix+fieldName, val, min, max))
			}
		case field.CanInt():
			val := field.Int()
			if val < min || val > max {
				errs = append(errs, errRequestBodyParameterNumberOutOfRange(fieldPrefix+fieldName, val, min, max))
			}
		case field.Kind() == reflect.String && format != "":
			if !matchesFormat(field.String(), format) {
				errs = append(errs, errRequestBodyParameterInvalidFormat(fieldPrefix+fieldName, field.String(), format))
			}
		case field.Kind() == reflect.Struct:
			subErrs, err := validateStruct(fieldPrefix+fieldName+".", field.Interface())
			if err != nil {
				return nil, err
			}
			errs = append(errs, subErrs...)
		}
	}

	return errs, nil
}

// matchesFormat checks a string against one of the named formats supported by the 'format' tag
func matchesFormat(value, format string) bool {
	switch format {
	case "date":
		_, err := contract.ParseDate(value)
		return err == nil
	case "nonempty":
		return strings.TrimSpace(value) != ""
	default:
		return true
	}
}

func getFieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	return name
}
