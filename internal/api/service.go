// Package api implements the HTTP surface of the content provider
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/api/schema"
	"github.com/skybi/sunshine/internal/config"
	"github.com/skybi/sunshine/internal/notify"
	"github.com/skybi/sunshine/internal/provider"
	"github.com/skybi/sunshine/internal/storage"
)

// Service represents the content API service
type Service struct {
	server *http.Server

	Config   *config.Config
	Provider provider.ContentProvider
	Resolver *notify.Resolver

	writer   *schema.Writer
	upgrader websocket.Upgrader
}

// Startup starts up the content API.
// Errors raised by the HTTP server after the startup are sent to errs.
func (service *Service) Startup(errs chan<- error) {
	server := &http.Server{
		Addr:              service.Config.APIListenAddress,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	service.server = server
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the content API.
// Open change feeds are closed once the resolver gets closed.
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

// Handler builds the HTTP handler serving all endpoints
func (service *Service) Handler() http.Handler {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the content API experienced an unexpected error")
		},
	}

	allowedOrigin := "*"
	if service.Config != nil && service.Config.APIAllowedOrigin != "" {
		allowedOrigin = service.Config.APIAllowedOrigin
	}
	service.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(request *http.Request) bool {
			origin := request.Header.Get("Origin")
			return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RedirectSlashes)
	router.Use(MiddlewareLogRequests)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Register the API endpoint handlers
	service.registerEndpoints(router)

	return router
}

func (service *Service) registerEndpoints(router chi.Router) {
	// Register the weather controller endpoints
	router.Get("/v1/weather", service.EndpointGetWeather)
	router.Post("/v1/weather", withMiddlewares(service.EndpointCreateWeather, MiddlewareLimitBody))
	router.Delete("/v1/weather", service.EndpointDeleteWeather)
	router.Get("/v1/weather/{location}", service.EndpointGetForecast)
	router.Get("/v1/weather/{location}/{date}", service.EndpointGetForecastForDate)

	// Register the location controller endpoints
	router.Get("/v1/locations", service.EndpointGetLocations)
	router.Post("/v1/locations", withMiddlewares(service.EndpointCreateLocation, MiddlewareLimitBody))
	router.Delete("/v1/locations", service.EndpointDeleteLocations)
	router.Get("/v1/locations/{id}", withMiddlewares(service.EndpointGetLocation, service.MiddlewareParseLocationID))
	router.Patch("/v1/locations/{id}", withMiddlewares(service.EndpointEditLocation, MiddlewareLimitBody, service.MiddlewareParseLocationID))

	// Register the content URI endpoints
	router.Get("/v1/types", service.EndpointGetType)
	router.Get("/v1/changes", service.EndpointGetChanges)
}

// writeProviderError translates an error returned by the content provider into an error response
func (service *Service) writeProviderError(writer http.ResponseWriter, err error) {
	var unsupported *provider.UnsupportedURIError
	var insertErr *provider.InsertError
	switch {
	case errors.As(err, &unsupported):
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrUnsupportedURI(unsupported.URI.String()))
	case errors.As(err, &insertErr):
		reason := ""
		if insertErr.Wrapping != nil {
			reason = insertErr.Wrapping.Error()
		}
		service.writer.WriteErrors(writer, http.StatusConflict, schema.ErrInsertFailed(insertErr.URI.String(), reason))
	case storage.IsRowError(err):
		service.writer.WriteErrors(writer, http.StatusConflict, schema.ErrConstraintViolated(err.Error()))
	default:
		service.writer.WriteInternalError(writer, err)
	}
}
