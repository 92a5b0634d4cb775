package api

import "github.com/skybi/sunshine/internal/contract"

type locationPayload struct {
	LocationSetting *string  `json:"location_setting" required:"true" format:"nonempty"`
	CityName        *string  `json:"city_name" required:"true" format:"nonempty"`
	Latitude        *float64 `json:"coord_lat" required:"true"`
	Longitude       *float64 `json:"coord_long" required:"true"`
}

func (payload *locationPayload) location() *contract.Location {
	return &contract.Location{
		LocationSetting: *payload.LocationSetting,
		CityName:        *payload.CityName,
		Latitude:        *payload.Latitude,
		Longitude:       *payload.Longitude,
	}
}

type locationPatchPayload struct {
	LocationSetting *string  `json:"location_setting" format:"nonempty"`
	CityName        *string  `json:"city_name" format:"nonempty"`
	Latitude        *float64 `json:"coord_lat"`
	Longitude       *float64 `json:"coord_long"`
}

// values returns the values of all given fields
func (payload *locationPatchPayload) values() contract.Values {
	values := contract.Values{}
	if payload.LocationSetting != nil {
		values[contract.ColumnLocationSetting] = *payload.LocationSetting
	}
	if payload.CityName != nil {
		values[contract.ColumnCityName] = *payload.CityName
	}
	if payload.Latitude != nil {
		values[contract.ColumnCoordLat] = *payload.Latitude
	}
	if payload.Longitude != nil {
		values[contract.ColumnCoordLong] = *payload.Longitude
	}
	return values
}

type weatherPayload struct {
	LocationID  *int64   `json:"location_id" required:"true" min:"1"`
	Date        *string  `json:"date" required:"true" format:"date"`
	ShortDesc   *string  `json:"short_desc" required:"true"`
	WeatherID   *int     `json:"weather_id" required:"true" min:"0"`
	MinTemp     *float64 `json:"min" required:"true"`
	MaxTemp     *float64 `json:"max" required:"true"`
	Humidity    *float64 `json:"humidity" required:"true"`
	Pressure    *float64 `json:"pressure" required:"true"`
	WindSpeed   *float64 `json:"wind" required:"true"`
	WindDegrees *float64 `json:"degrees" required:"true"`
}

func (payload *weatherPayload) values() contract.Values {
	weather := &contract.Weather{
		LocationID:  *payload.LocationID,
		Date:        *payload.Date,
		ShortDesc:   *payload.ShortDesc,
		WeatherID:   *payload.WeatherID,
		MinTemp:     *payload.MinTemp,
		MaxTemp:     *payload.MaxTemp,
		Humidity:    *payload.Humidity,
		Pressure:    *payload.Pressure,
		WindSpeed:   *payload.WindSpeed,
		WindDegrees: *payload.WindDegrees,
	}
	return weather.Values()
}
