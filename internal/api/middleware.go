package api

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/api/validation"
)

type contextKey string

const contextKeyLocationID = contextKey("location_id")

// maxBodySize is the maximum accepted request body size in bytes
const maxBodySize = 4 << 20

// MiddlewareLogRequests logs every handled request
func MiddlewareLogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(wrapped, request)
		log.Debug().
			Str("method", request.Method).
			Str("path", request.URL.Path).
			Int("status", wrapped.Status()).
			Int("bytes", wrapped.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("handled request")
	})
}

// MiddlewareLimitBody limits the size of the request body
func MiddlewareLimitBody(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		request.Body = http.MaxBytesReader(writer, request.Body, maxBodySize)
		next(writer, request)
	}
}

// MiddlewareParseLocationID validates the '{id}' URL parameter and injects it into the request context
func (service *Service) MiddlewareParseLocationID(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, validationErr := validation.PathNumber(request, "id", 1, math.MaxInt64)
		if validationErr != nil {
			service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
			return
		}

		// Delegate to the next handler
		request = request.WithContext(context.WithValue(request.Context(), contextKeyLocationID, id))
		next(writer, request)
	}
}

func withMiddlewares(end http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	final := end
	for i := len(middlewares); i > 0; i-- {
		final = middlewares[i-1](final)
	}
	return final
}
