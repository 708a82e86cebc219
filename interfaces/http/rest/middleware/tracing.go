package middleware

import (
	"fmt"
	"net/http"

	"journey-backend/pkg/observability"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Tracing opens an X-Ray segment per request and flags server errors on it
func Tracing(tracer *observability.Tracer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, seg := tracer.StartSegment(r.Context(), r.Method+" "+r.URL.Path)
			defer seg.Close(nil)

			tracer.AddAnnotation(ctx, "requestID", chimiddleware.GetReqID(ctx))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() >= http.StatusInternalServerError {
				seg.AddError(fmt.Errorf("server error: status %d", ww.Status()))
			}
		})
	}
}
