package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionURIs(t *testing.T) {
	assert.Equal(t, "content://com.example.android.sunshine.app/weather", WeatherURI.String())
	assert.Equal(t, "content://com.example.android.sunshine.app/location", LocationURI.String())
}

func TestBuildItemURIs(t *testing.T) {
	assert.Equal(t, "content://com.example.android.sunshine.app/location/1", BuildLocationURI(1).String())
	assert.Equal(t, "content://com.example.android.sunshine.app/weather/42", BuildWeatherURI(42).String())

	id, err := IDFromURI(BuildLocationURI(1337))
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id)

	_, err = IDFromURI(BuildWeatherLocation("94074a"))
	assert.Error(t, err)

	_, err = IDFromURI(BaseURI)
	assert.Error(t, err)
}

func TestWeatherLocationRoundTrip(t *testing.T) {
	settings := []string{"94074", "London,UK", "New York", "a/b", "zürich", "100%", "?x=1"}
	dates := []string{"20140610", "20140611", "20141231"}

	for _, setting := range settings {
		uri := BuildWeatherLocation(setting)
		assert.Equal(t, setting, LocationSettingFromURI(uri), "setting %q", setting)
		assert.Empty(t, DateFromURI(uri))
		assert.Empty(t, StartDateFromURI(uri))

		for _, date := range dates {
			exact := BuildWeatherLocationWithDate(setting, date)
			assert.Equal(t, setting, LocationSettingFromURI(exact))
			assert.Equal(t, date, DateFromURI(exact))
			assert.Empty(t, StartDateFromURI(exact))
			assert.False(t, IsStartDateURI(exact))

			start := BuildWeatherLocationWithStartDate(setting, date)
			assert.Equal(t, setting, LocationSettingFromURI(start))
			assert.Equal(t, date, StartDateFromURI(start))
			assert.Equal(t, date, DateFromURI(start))
			assert.True(t, IsStartDateURI(start))
		}
	}
}

func TestRoundTripSurvivesStringParsing(t *testing.T) {
	original := BuildWeatherLocationWithStartDate("New York/Queens", "20140611")
	parsed, err := ParseURI(original.String())
	require.NoError(t, err)

	assert.Equal(t, "New York/Queens", LocationSettingFromURI(parsed))
	assert.Equal(t, "20140611", StartDateFromURI(parsed))
	assert.Equal(t, Key(original), Key(parsed))
}

func TestKey(t *testing.T) {
	assert.Equal(t, Authority, Key(BaseURI))
	assert.Equal(t, Authority+"/weather", Key(WeatherURI))
	assert.Equal(t, Key(BuildWeatherLocationWithDate("94074", "20140611")),
		Key(BuildWeatherLocationWithStartDate("94074", "20140611")))
}

func TestDateString(t *testing.T) {
	date := time.Date(2014, time.June, 11, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "20140611", DateString(date))

	parsed, err := ParseDate("20140611")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2014, time.June, 11, 0, 0, 0, 0, time.UTC)))

	_, err = ParseDate("2014-06-11")
	assert.Error(t, err)

	assert.Less(t, DateString(date), DateString(date.Add(24*time.Hour)))
}
