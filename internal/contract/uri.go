package contract

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter distinguishing the start-date form of a weather URI from the exact-date form.
// Both share the path weather/{setting}/{date}.
const (
	ParamDateMatch = "date_match"
	DateMatchStart = "start"
	DateMatchExact = "exact"
)

var (
	// BaseURI is the root every content URI descends from
	BaseURI = &url.URL{Scheme: Scheme, Host: Authority}

	// WeatherURI addresses the weather collection
	WeatherURI = appendSegments(BaseURI, PathWeather)

	// LocationURI addresses the location collection
	LocationURI = appendSegments(BaseURI, PathLocation)
)

// BuildLocationURI returns the item URI of the location with the given identity key
func BuildLocationURI(id int64) *url.URL {
	return appendSegments(LocationURI, strconv.FormatInt(id, 10))
}

// BuildWeatherURI returns the item URI of the weather row with the given identity key
func BuildWeatherURI(id int64) *url.URL {
	return appendSegments(WeatherURI, strconv.FormatInt(id, 10))
}

// BuildWeatherLocation returns the URI addressing every weather row of a location setting
func BuildWeatherLocation(locationSetting string) *url.URL {
	return appendSegments(WeatherURI, locationSetting)
}

// BuildWeatherLocationWithStartDate returns the URI addressing the weather rows of a location setting whose
// date is the given one or later
func BuildWeatherLocationWithStartDate(locationSetting, startDate string) *url.URL {
	uri := appendSegments(WeatherURI, locationSetting, startDate)
	uri.RawQuery = url.Values{ParamDateMatch: {DateMatchStart}}.Encode()
	return uri
}

// BuildWeatherLocationWithDate returns the URI addressing the weather row of a location setting on exactly the
// given date
func BuildWeatherLocationWithDate(locationSetting, date string) *url.URL {
	return appendSegments(WeatherURI, locationSetting, date)
}

// ParseURI parses a raw content URI served by the store
func ParseURI(raw string) (*url.URL, error) {
	uri, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if uri.Scheme != Scheme || uri.Host != Authority {
		return nil, fmt.Errorf("%q is not a %s://%s URI", raw, Scheme, Authority)
	}
	return uri, nil
}

// LocationSettingFromURI extracts the location setting out of a weather URI
func LocationSettingFromURI(uri *url.URL) string {
	return segmentAt(uri, 1)
}

// DateFromURI extracts the date segment out of a weather URI, regardless of the date match mode
func DateFromURI(uri *url.URL) string {
	return segmentAt(uri, 2)
}

// StartDateFromURI extracts the start date out of a weather URI built by BuildWeatherLocationWithStartDate.
// It returns an empty string for every other URI.
func StartDateFromURI(uri *url.URL) string {
	if !IsStartDateURI(uri) {
		return ""
	}
	return DateFromURI(uri)
}

// IsStartDateURI reports whether the date segment of a weather URI is a lower bound
func IsStartDateURI(uri *url.URL) bool {
	return uri.Query().Get(ParamDateMatch) == DateMatchStart
}

// IDFromURI parses the last path segment of an item URI as an identity key
func IDFromURI(uri *url.URL) (int64, error) {
	segments := Segments(uri)
	if len(segments) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(segments[len(segments)-1], 10, 64)
}

// Segments returns the unescaped path segments of a URI
func Segments(uri *url.URL) []string {
	trimmed := strings.Trim(uri.EscapedPath(), "/")
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "/")
	segments := make([]string, 0, len(raw))
	for _, segment := range raw {
		unescaped, err := url.PathUnescape(segment)
		if err != nil {
			unescaped = segment
		}
		segments = append(segments, unescaped)
	}
	return segments
}

// Key returns the authority and escaped path of a URI without query and trailing slash.
// Two URIs addressing the same content share the same key.
func Key(uri *url.URL) string {
	path := strings.Trim(uri.EscapedPath(), "/")
	if path == "" {
		return uri.Host
	}
	return uri.Host + "/" + path
}

func segmentAt(uri *url.URL, i int) string {
	segments := Segments(uri)
	if i >= len(segments) {
		return ""
	}
	return segments[i]
}

func appendSegments(base *url.URL, segments ...string) *url.URL {
	escaped := strings.TrimSuffix(base.EscapedPath(), "/")
	for _, segment := range segments {
		escaped += "/" + url.PathEscape(segment)
	}
	path, err := url.PathUnescape(escaped)
	if err != nil {
		path = escaped
	}
	return &url.URL{
		Scheme:  base.Scheme,
		Host:    base.Host,
		Path:    path,
		RawPath: escaped,
	}
}
