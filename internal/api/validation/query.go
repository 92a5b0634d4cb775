// Package validation extracts and validates request parameters
package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skybi/sunshine/internal/api/schema"
	"github.com/skybi/sunshine/internal/contract"
)

var (
	errQueryParameterMissing = func(name string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.missing",
			Message: fmt.Sprintf("The query parameter '%s' is required but was not present in the request.", name),
			Details: map[string]interface{}{
				"parameter": name,
			},
		}
	}
	errQueryParameterInvalidType = func(name, value, expectedType string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.invalidType",
			Message: fmt.Sprintf("The query parameter '%s' ('%s') could no be assigned to the required type (%s).", name, value, expectedType),
			Details: map[string]interface{}{
				"parameter":     name,
				"value":         value,
				"expected_type": expectedType,
			},
		}
	}
	errQueryParameterNotAllowed = func(name, value string, allowed []string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.notAllowed",
			Message: fmt.Sprintf("The query parameter '%s' ('%s') is not one of the allowed values (%s).", name, value, strings.Join(allowed, ", ")),
			Details: map[string]interface{}{
				"parameter": name,
				"value":     value,
				"allowed":   allowed,
			},
		}
	}
	errPathParameterNumberOutOfRange = func(name string, value, min, max int64) *schema.Error {
		comparison := ""
		if value < min {
			comparison = fmt.Sprintf("%d [given] < %d [min]", value, min)
		} else if value > max {
			comparison = fmt.Sprintf("%d [given] > %d [max]", value, max)
		}

		return &schema.Error{
			Type:    "validation.path.parameter.number.outOfRange",
			Message: fmt.Sprintf("The path parameter '%s' is out of the required range (%s).", name, comparison),
			Details: map[string]interface{}{
				"parameter": name,
				"value":     value,
				"min":       min,
				"max":       max,
			},
		}
	}
	errPathParameterInvalidFormat = func(name, value, format string) *schema.Error {
		return &schema.Error{
			Type:    "validation.path.parameter.invalidFormat",
			Message: fmt.Sprintf("The path parameter '%s' ('%s') does not match the required format (%s).", name, value, format),
			Details: map[string]interface{}{
				"parameter": name,
				"value":     value,
				"format":    format,
			},
		}
	}
	errPathParameterInvalidType = func(name, value, expectedType string) *schema.Error {
		return &schema.Error{
			Type:    "validation.path.parameter.invalidType",
			Message: fmt.Sprintf("The path parameter '%s' ('%s') could no be assigned to the required type (%s).", name, value, expectedType),
			Details: map[string]interface{}{
				"parameter":     name,
				"value":         value,
				"expected_type": expectedType,
			},
		}
	}
)

// QueryString extracts a string value out of the query parameters of the given request
func QueryString(request *http.Request, key string, required bool) (string, *schema.Error) {
	value := strings.TrimSpace(request.URL.Query().Get(key))
	if value == "" && required {
		return "", errQueryParameterMissing(key)
	}
	return value, nil
}

// QueryBool extracts and validates a boolean value out of the query parameters of the given request
func QueryBool(request *http.Request, key string, def bool) (bool, *schema.Error) {
	value := request.URL.Query().Get(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, errQueryParameterInvalidType(key, value, "boolean")
	}
	return parsed, nil
}

// QueryEnum extracts a value out of the query parameters of the given request and makes sure it is one of the
// allowed ones.
// The first allowed value is the default.
func QueryEnum(request *http.Request, key string, allowed ...string) (string, *schema.Error) {
	value := strings.ToLower(strings.TrimSpace(request.URL.Query().Get(key)))
	if value == "" {
		return allowed[0], nil
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", errQueryParameterNotAllowed(key, value, allowed)
}

// QuerySort extracts and translates a sort order out of the query parameters of the given request.
// The parameter is a comma separated list of field names, each optionally prefixed with '-' for descending order.
// columns maps the accepted field names to the columns they sort by.
func QuerySort(request *http.Request, key string, columns map[string]string) (string, *schema.Error) {
	value := strings.TrimSpace(request.URL.Query().Get(key))
	if value == "" {
		return "", nil
	}

	var clauses []string
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			direction = "DESC"
		}
		column, ok := columns[field]
		if !ok {
			return "", errQueryParameterNotAllowed(key, field, sortedKeys(columns))
		}
		clauses = append(clauses, column+" "+direction)
	}
	return strings.Join(clauses, ", "), nil
}

// PathNumber extracts and validates an integer value out of the URL parameters of the given request
func PathNumber(request *http.Request, key string, min, max int64) (int64, *schema.Error) {
	value := chi.URLParam(request, key)
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errPathParameterInvalidType(key, value, "number")
	}
	if parsed < min || parsed > max {
		return 0, errPathParameterNumberOutOfRange(key, parsed, min, max)
	}
	return parsed, nil
}

func sortedKeys(columns map[string]string) []string {
	keys := make([]string, 0, len(columns))
	for key := range columns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// PathString extracts a non-empty URL parameter of the given request and unescapes it
func PathString(request *http.Request, key string) (string, *schema.Error) {
	raw := chi.URLParam(request, key)
	value, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(value) == "" {
		return "", errPathParameterInvalidFormat(key, raw, "nonempty")
	}
	return value, nil
}

// PathDate extracts a canonical date string (yyyyMMdd) out of the URL parameters of the given request
func PathDate(request *http.Request, key string) (string, *schema.Error) {
	value := chi.URLParam(request, key)
	if _, err := contract.ParseDate(value); err != nil {
		return "", errPathParameterInvalidFormat(key, value, "date")
	}
	return value, nil
}

// QueryContentURI extracts and parses a required content URI out of the query parameters of the given request
func QueryContentURI(request *http.Request, key string) (*url.URL, *schema.Error) {
	value, validationErr := QueryString(request, key, true)
	if validationErr != nil {
		return nil, validationErr
	}
	uri, err := contract.ParseURI(value)
	if err != nil {
		return nil, errQueryParameterInvalidType(key, value, "content URI")
	}
	return uri, nil
}
