package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/api/schema"
	"github.com/skybi/sunshine/internal/api/validation"
	"github.com/skybi/sunshine/internal/contract"
	"github.com/skybi/sunshine/internal/provider"
)

const changeWriteTimeout = 10 * time.Second

// EndpointGetType handles the 'GET /v1/types?uri={string}' endpoint
func (service *Service) EndpointGetType(writer http.ResponseWriter, request *http.Request) {
	uri, validationErr := validation.QueryContentURI(request, "uri")
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	contentType, err := service.Provider.Type(uri)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, &schema.TypeResponse{
		URI:         uri.String(),
		ContentType: contentType,
	})
}

// EndpointGetChanges handles the 'GET /v1/changes?uri={string}&descendants={bool?:false}' endpoint.
// The connection is upgraded to a WebSocket receiving a message whenever the observed content changed.
func (service *Service) EndpointGetChanges(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	uri, validationErr := validation.QueryContentURI(request, "uri")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	descendants, validationErr := validation.QueryBool(request, "descendants", false)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	if _, err := provider.Match(uri); err != nil {
		service.writeProviderError(writer, err)
		return
	}

	conn, err := service.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		// The upgrader already responded
		log.Debug().Err(err).Msg("could not upgrade change feed connection")
		return
	}
	defer conn.Close()

	sub := service.Resolver.Subscribe(uri, descendants)
	defer sub.Cancel()
	log.Debug().Str("uri", uri.String()).Bool("descendants", descendants).Msg("change feed opened")

	// Read messages from the client to process control frames and detect disconnection
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Msg("change feed connection closed unexpectedly")
				}
				return
			}
		}
	}()

	for {
		select {
		case changed, ok := <-sub.Changes():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(changeWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(changeWriteTimeout))
			if err := conn.WriteJSON(&schema.ChangeMessage{URI: changed.String()}); err != nil {
				log.Debug().Err(err).Msg("could not write to change feed")
				return
			}
		case <-closed:
			return
		}
	}
}

// query writes the result of a content query
func (service *Service) query(writer http.ResponseWriter, request *http.Request, uri *url.URL, projection []string, sortOrder string) {
	cursor, err := service.Provider.Query(request.Context(), uri, projection, nil, sortOrder)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	contentType, err := service.Provider.Type(uri)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, schema.BuildCursorResponse(cursor.NotificationURI.String(), contentType, cursor.Maps()))
}

// insert inserts a single row and writes its identity
func (service *Service) insert(writer http.ResponseWriter, request *http.Request, uri *url.URL, values contract.Values) {
	inserted, err := service.Provider.Insert(request.Context(), uri, values)
	if err != nil {
		service.writeProviderError(writer, err)
		return
	}
	id, err := contract.IDFromURI(inserted)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSONCode(writer, http.StatusCreated, &schema.InsertResponse{
		ID:  id,
		URI: inserted.String(),
	})
}

// writeBodyError writes the response to a request body that could not be read
func (service *Service) writeBodyError(writer http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		service.writer.WriteErrors(writer, http.StatusRequestEntityTooLarge, schema.ErrRequestBodyTooLarge)
		return
	}
	service.writer.WriteInternalError(writer, err)
}
