package provider

import (
	"net/url"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/contract"
)

// Request represents a classified content URI.
// The set of implementations is closed: WeatherDir, WeatherForLocation, WeatherForLocationFromDate,
// WeatherForLocationOnDate, LocationDir and LocationItem.
type Request interface {
	// URI returns the URI the request was classified from
	URI() *url.URL

	// ContentType returns the MIME type of the result
	ContentType() string

	// selectQuery builds the select statement serving the request with the given projection
	selectQuery(projection []string) squirrel.SelectBuilder
}

// WeatherDir addresses the whole weather table
type WeatherDir struct {
	uri *url.URL
}

// WeatherForLocation addresses the forecast of a single location setting
type WeatherForLocation struct {
	uri             *url.URL
	LocationSetting string
}

// WeatherForLocationFromDate addresses the forecast of a single location setting starting at a date
type WeatherForLocationFromDate struct {
	uri             *url.URL
	LocationSetting string
	StartDate       string
}

// WeatherForLocationOnDate addresses the forecast of a single location setting on exactly one date
type WeatherForLocationOnDate struct {
	uri             *url.URL
	LocationSetting string
	Date            string
}

// LocationDir addresses the whole location table
type LocationDir struct {
	uri *url.URL
}

// LocationItem addresses a single location by its identity key
type LocationItem struct {
	uri *url.URL
	ID  int64
}

func (req WeatherDir) URI() *url.URL                 { return req.uri }
func (req WeatherForLocation) URI() *url.URL         { return req.uri }
func (req WeatherForLocationFromDate) URI() *url.URL { return req.uri }
func (req WeatherForLocationOnDate) URI() *url.URL   { return req.uri }
func (req LocationDir) URI() *url.URL                { return req.uri }
func (req LocationItem) URI() *url.URL               { return req.uri }

func (WeatherDir) ContentType() string                 { return contract.WeatherContentType }
func (WeatherForLocation) ContentType() string         { return contract.WeatherContentType }
func (WeatherForLocationFromDate) ContentType() string { return contract.WeatherContentType }
func (WeatherForLocationOnDate) ContentType() string   { return contract.WeatherContentItemType }
func (LocationDir) ContentType() string                { return contract.LocationContentType }
func (LocationItem) ContentType() string               { return contract.LocationContentItemType }

// route binds a path pattern to the request it produces.
// Pattern segments are matched literally except for "*" (any segment) and "#" (a decimal integer).
type route struct {
	pattern []string
	build   func(uri *url.URL, segments []string) (Request, bool)
}

var routes = []route{
	{
		pattern: []string{contract.PathWeather},
		build: func(uri *url.URL, _ []string) (Request, bool) {
			return WeatherDir{uri: uri}, true
		},
	},
	{
		pattern: []string{contract.PathWeather, "*"},
		build: func(uri *url.URL, segments []string) (Request, bool) {
			return WeatherForLocation{uri: uri, LocationSetting: segments[1]}, true
		},
	},
	{
		pattern: []string{contract.PathWeather, "*", "*"},
		build: func(uri *url.URL, segments []string) (Request, bool) {
			switch uri.Query().Get(contract.ParamDateMatch) {
			case contract.DateMatchStart:
				return WeatherForLocationFromDate{uri: uri, LocationSetting: segments[1], StartDate: segments[2]}, true
			case "", contract.DateMatchExact:
				return WeatherForLocationOnDate{uri: uri, LocationSetting: segments[1], Date: segments[2]}, true
			default:
				return nil, false
			}
		},
	},
	{
		pattern: []string{contract.PathLocation},
		build: func(uri *url.URL, _ []string) (Request, bool) {
			return LocationDir{uri: uri}, true
		},
	},
	{
		pattern: []string{contract.PathLocation, "#"},
		build: func(uri *url.URL, segments []string) (Request, bool) {
			id, err := strconv.ParseInt(segments[1], 10, 64)
			if err != nil {
				return nil, false
			}
			return LocationItem{uri: uri, ID: id}, true
		},
	},
}

// Match classifies a content URI.
// A URI not addressing anything served by the provider results in an *UnsupportedURIError.
func Match(uri *url.URL) (Request, error) {
	if uri == nil {
		return nil, &UnsupportedURIError{URI: &url.URL{}}
	}
	if uri.Scheme != contract.Scheme || uri.Host != contract.Authority {
		return nil, &UnsupportedURIError{URI: uri}
	}

	segments := contract.Segments(uri)
	for _, route := range routes {
		if !matchSegments(route.pattern, segments) {
			continue
		}
		if req, ok := route.build(uri, segments); ok {
			return req, nil
		}
	}
	return nil, &UnsupportedURIError{URI: uri}
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, expected := range pattern {
		segment := segments[i]
		switch expected {
		case "*":
			if segment == "" {
				return false
			}
		case "#":
			if !isNumber(segment) {
				return false
			}
		default:
			if segment != expected {
				return false
			}
		}
	}
	return true
}

func isNumber(segment string) bool {
	if segment == "" {
		return false
	}
	for _, char := range segment {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
