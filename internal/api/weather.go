package api

import (
	"net/http"

	"github.com/skybi/sunshine/internal/api/schema"
	"github.com/skybi/sunshine/internal/api/validation"
	"github.com/skybi/sunshine/internal/contract"
)

// weatherSortColumns are the sort fields accepted on the weather table
var weatherSortColumns = map[string]string{
	"id":       contract.ColumnID,
	"location": contract.ColumnLocationKey,
	"date":     contract.ColumnDate,
	"min":      contract.ColumnMinTemp,
	"max":      contract.ColumnMaxTemp,
}

// forecastSortColumns are the sort fields accepted on joined forecasts
var forecastSortColumns = map[string]string{
	"id":   contract.Qualified(contract.WeatherTableName, contract.ColumnID),
	"date": contract.Qualified(contract.WeatherTableName, contract.ColumnDate),
	"min":  contract.Qualified(contract.WeatherTableName, contract.ColumnMinTemp),
	"max":  contract.Qualified(contract.WeatherTableName, contract.ColumnMaxTemp),
	"city": contract.Qualified(contract.LocationTableName, contract.ColumnCityName),
}

// Date match modes accepted by the 'match' query parameter
const (
	matchExact = "exact"
	matchStart = "start"
)

// EndpointGetWeather handles the 'GET /v1/weather?sort={string?}' endpoint
func (service *Service) EndpointGetWeather(writer http.ResponseWriter, request *http.Request) {
	sortOrder, validationErr := validation.QuerySort(request, "sort", weatherSortColumns)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	service.query(writer, request, contract.WeatherURI, nil, sortOrder)
}

// EndpointGetForecast handles the 'GET /v1/weather/{location}?sort={string?}' endpoint
func (service *Service) EndpointGetForecast(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	locationSetting, validationErr := validation.PathString(request, "location")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	sortOrder, validationErr := validation.QuerySort(request, "sort", forecastSortColumns)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	service.query(writer, request, contract.BuildWeatherLocation(locationSetting), contract.ForecastColumns, sortOrder)
}

// EndpointGetForecastForDate handles the 'GET /v1/weather/{location}/{date}?match={exact|start}&sort={string?}' endpoint
func (service *Service) EndpointGetForecastForDate(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	locationSetting, validationErr := validation.PathString(request, "location")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	date, validationErr := validation.PathDate(request, "date")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	match, validationErr := validation.QueryEnum(request, "match", matchExact, matchStart)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	sortOrder, validationErr := validation.QuerySort(request, "sort", forecastSortColumns)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	uri := contract.BuildWeatherLocationWithDate(locationSetting, date)
	if match == matchStart {
		uri = contract.BuildWeatherLocationWithStartDate(locationSetting, date)
	}
	service.query(writer, request, uri, contract.ForecastColumns, sortOrder)
}

// EndpointCreateWeather handles the 'POST /v1/weather' endpoint.
// A single object is inserted on its own, an array of objects is inserted as a single batch.
func (service *Service) EndpointCreateWeather(writer http.ResponseWriter, request *http.Request) {
	payloads, isList, validationErrs, err := schema.UnmarshalBodyList[weatherPayload](request)
	if err != nil {
		service.writeBodyError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	if !isList {
		service.insert(writer, request, contract.WeatherURI, payloads[0].values())
		return
	}

	values := make([]contract.Values, 0, len(payloads))
	for _, payload := range payloads {
		values = append(values, payload.values())
	}
	n, err := service.Provider.BulkInsert(request.Context(), contract.WeatherURI, values)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, &schema.CountResponse{Count: int64(n)})
}

// EndpointDeleteWeather handles the 'DELETE /v1/weather' endpoint
func (service *Service) EndpointDeleteWeather(writer http.ResponseWriter, request *http.Request) {
	n, err := service.Provider.Delete(request.Context(), contract.WeatherURI, nil)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, &schema.CountResponse{Count: n})
}
