package contract

import (
	"fmt"
	"sort"
)

// Values maps column names to the values of a single row
type Values map[string]any

// Columns returns the column names of the row in ascending order
func (values Values) Columns() []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// Merge returns a copy of values with all entries of other added.
// Entries of other win on conflicting columns.
func (values Values) Merge(other Values) Values {
	merged := make(Values, len(values)+len(other))
	for column, value := range values {
		merged[column] = value
	}
	for column, value := range other {
		merged[column] = value
	}
	return merged
}

// Location represents a stored location row
type Location struct {
	ID              int64   `json:"id"`
	LocationSetting string  `json:"location_setting"`
	CityName        string  `json:"city_name"`
	Latitude        float64 `json:"coord_lat"`
	Longitude       float64 `json:"coord_long"`
}

// Values returns the insertable column values of the location (the identity key is left out)
func (location *Location) Values() Values {
	return Values{
		ColumnLocationSetting: location.LocationSetting,
		ColumnCityName:        location.CityName,
		ColumnCoordLat:        location.Latitude,
		ColumnCoordLong:       location.Longitude,
	}
}

// LocationOfValues builds a location out of a row as returned by a location query
func LocationOfValues(values Values) (*Location, error) {
	obj := new(Location)
	var err error
	if obj.ID, err = Int64(values[ColumnID]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnID, err)
	}
	if obj.LocationSetting, err = String(values[ColumnLocationSetting]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnLocationSetting, err)
	}
	if obj.CityName, err = String(values[ColumnCityName]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnCityName, err)
	}
	if obj.Latitude, err = Float64(values[ColumnCoordLat]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnCoordLat, err)
	}
	if obj.Longitude, err = Float64(values[ColumnCoordLong]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnCoordLong, err)
	}
	return obj, nil
}

// Weather represents a stored daily forecast row
type Weather struct {
	ID          int64   `json:"id"`
	LocationID  int64   `json:"location_id"`
	Date        string  `json:"date"`
	ShortDesc   string  `json:"short_desc"`
	WeatherID   int     `json:"weather_id"`
	MinTemp     float64 `json:"min"`
	MaxTemp     float64 `json:"max"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"wind"`
	WindDegrees float64 `json:"degrees"`
}

// Values returns the insertable column values of the weather row (the identity key is left out)
func (weather *Weather) Values() Values {
	return Values{
		ColumnLocationKey: weather.LocationID,
		ColumnDate:        weather.Date,
		ColumnShortDesc:   weather.ShortDesc,
		ColumnWeatherID:   weather.WeatherID,
		ColumnMinTemp:     weather.MinTemp,
		ColumnMaxTemp:     weather.MaxTemp,
		ColumnHumidity:    weather.Humidity,
		ColumnPressure:    weather.Pressure,
		ColumnWindSpeed:   weather.WindSpeed,
		ColumnDegrees:     weather.WindDegrees,
	}
}

// WeatherOfValues builds a weather row out of a row as returned by a weather query
func WeatherOfValues(values Values) (*Weather, error) {
	obj := new(Weather)
	var err error
	if obj.ID, err = Int64(values[ColumnID]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnID, err)
	}
	if obj.LocationID, err = Int64(values[ColumnLocationKey]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnLocationKey, err)
	}
	if obj.Date, err = String(values[ColumnDate]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnDate, err)
	}
	if obj.ShortDesc, err = String(values[ColumnShortDesc]); err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnShortDesc, err)
	}
	weatherID, err := Int64(values[ColumnWeatherID])
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", ColumnWeatherID, err)
	}
	obj.WeatherID = int(weatherID)

	floats := []struct {
		column string
		target *float64
	}{
		{ColumnMinTemp, &obj.MinTemp},
		{ColumnMaxTemp, &obj.MaxTemp},
		{ColumnHumidity, &obj.Humidity},
		{ColumnPressure, &obj.Pressure},
		{ColumnWindSpeed, &obj.WindSpeed},
		{ColumnDegrees, &obj.WindDegrees},
	}
	for _, field := range floats {
		if *field.target, err = Float64(values[field.column]); err != nil {
			return nil, fmt.Errorf("column %s: %w", field.column, err)
		}
	}
	return obj, nil
}

// Int64 converts a numeric column value into an int64
func Int64(value any) (int64, error) {
	switch val := value.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case float64:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("unexpected type %T for an integer value", value)
	}
}

// Float64 converts a numeric column value into a float64
func Float64(value any) (float64, error) {
	switch val := value.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("unexpected type %T for a floating point value", value)
	}
}

// String converts a text column value into a string
func String(value any) (string, error) {
	val, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected type %T for a text value", value)
	}
	return val, nil
}
