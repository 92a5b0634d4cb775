// Package contract defines the names shared by every layer of the weather store: table and column
// names, the content URIs addressing them and the MIME types describing their results.
package contract

// Authority is the authority part of every content URI served by the store
const Authority = "com.example.android.sunshine.app"

// Scheme is the scheme of every content URI served by the store
const Scheme = "content"

// Path segments directly below the authority
const (
	PathWeather  = "weather"
	PathLocation = "location"
)

// ColumnID is the identity key column every table has
const ColumnID = "_id"

// Location table and columns
const (
	LocationTableName = "location"

	// ColumnLocationSetting is the opaque location code (e.g. a postal code) the user entered.
	// It is unique per logical place.
	ColumnLocationSetting = "location_setting"
	ColumnCityName        = "city_name"
	ColumnCoordLat        = "coord_lat"
	ColumnCoordLong       = "coord_long"
)

// Weather table and columns
const (
	WeatherTableName = "weather"

	// ColumnLocationKey references location._id
	ColumnLocationKey = "location_id"
	// ColumnDate holds the canonical date string (see DateString)
	ColumnDate      = "date"
	ColumnShortDesc = "short_desc"
	ColumnWeatherID = "weather_id"
	ColumnMinTemp   = "min"
	ColumnMaxTemp   = "max"
	ColumnHumidity  = "humidity"
	ColumnPressure  = "pressure"
	ColumnWindSpeed = "wind"
	// ColumnDegrees is the meteorological wind direction in degrees
	ColumnDegrees = "degrees"
)

// Qualified returns the table-qualified form of a column, as needed when both tables are joined
func Qualified(table, column string) string {
	return table + "." + column
}

// ForecastColumns lists the columns of a joined forecast row without duplicated identity keys
var ForecastColumns = []string{
	Qualified(WeatherTableName, ColumnID),
	Qualified(WeatherTableName, ColumnLocationKey),
	Qualified(WeatherTableName, ColumnDate),
	Qualified(WeatherTableName, ColumnShortDesc),
	Qualified(WeatherTableName, ColumnWeatherID),
	Qualified(WeatherTableName, ColumnMinTemp),
	Qualified(WeatherTableName, ColumnMaxTemp),
	Qualified(WeatherTableName, ColumnHumidity),
	Qualified(WeatherTableName, ColumnPressure),
	Qualified(WeatherTableName, ColumnWindSpeed),
	Qualified(WeatherTableName, ColumnDegrees),
	Qualified(LocationTableName, ColumnLocationSetting),
	Qualified(LocationTableName, ColumnCityName),
	Qualified(LocationTableName, ColumnCoordLat),
	Qualified(LocationTableName, ColumnCoordLong),
}
