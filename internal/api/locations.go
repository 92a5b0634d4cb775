package api

import (
	"net/http"

	"github.com/Masterminds/squirrel"
	"github.com/skybi/sunshine/internal/api/schema"
	"github.com/skybi/sunshine/internal/api/validation"
	"github.com/skybi/sunshine/internal/contract"
)

// locationSortColumns are the sort fields accepted on the location table
var locationSortColumns = map[string]string{
	"id":      contract.ColumnID,
	"setting": contract.ColumnLocationSetting,
	"city":    contract.ColumnCityName,
}

// EndpointGetLocations handles the 'GET /v1/locations?sort={string?}' endpoint
func (service *Service) EndpointGetLocations(writer http.ResponseWriter, request *http.Request) {
	sortOrder, validationErr := validation.QuerySort(request, "sort", locationSortColumns)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	service.query(writer, request, contract.LocationURI, nil, sortOrder)
}

// EndpointGetLocation handles the 'GET /v1/locations/{id}' endpoint
func (service *Service) EndpointGetLocation(writer http.ResponseWriter, request *http.Request) {
	id := request.Context().Value(contextKeyLocationID).(int64)

	uri := contract.BuildLocationURI(id)
	cursor, err := service.Provider.Query(request.Context(), uri, nil, nil, "")
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	if cursor.Len() == 0 {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	location, err := contract.LocationOfValues(cursor.Map(0))
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, location)
}

// EndpointCreateLocation handles the 'POST /v1/locations?ensure={bool?:false}' endpoint.
// If ensure is set, an existing location with the same setting is returned instead of failing.
func (service *Service) EndpointCreateLocation(writer http.ResponseWriter, request *http.Request) {
	ensure, validationErr := validation.QueryBool(request, "ensure", false)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	payload, validationErrs, err := schema.UnmarshalBody[locationPayload](request)
	if err != nil {
		service.writeBodyError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	if !ensure {
		service.insert(writer, request, contract.LocationURI, payload.location().Values())
		return
	}

	id, err := service.Provider.EnsureLocation(request.Context(), payload.location())
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, &schema.InsertResponse{
		ID:  id,
		URI: contract.BuildLocationURI(id).String(),
	})
}

// EndpointEditLocation handles the 'PATCH /v1/locations/{id}' endpoint
func (service *Service) EndpointEditLocation(writer http.ResponseWriter, request *http.Request) {
	id := request.Context().Value(contextKeyLocationID).(int64)

	payload, validationErrs, err := schema.UnmarshalBody[locationPatchPayload](request)
	if err != nil {
		service.writeBodyError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}
	values := payload.values()
	if len(values) == 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, schema.ErrRequestBodyEmpty)
		return
	}

	n, err := service.Provider.Update(request.Context(), contract.LocationURI, values, squirrel.Eq{contract.ColumnID: id})
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	if n == 0 {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}
	service.writer.WriteJSON(writer, &schema.CountResponse{Count: n})
}

// EndpointDeleteLocations handles the 'DELETE /v1/locations' endpoint
func (service *Service) EndpointDeleteLocations(writer http.ResponseWriter, request *http.Request) {
	n, err := service.Provider.Delete(request.Context(), contract.LocationURI, nil)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, &schema.CountResponse{Count: n})
}
