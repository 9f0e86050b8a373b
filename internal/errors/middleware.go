package errors

import (
	"net/http"
)

// HandlerFunc is an HTTP handler that reports failures as errors
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts an error-returning handler. Returned errors are logged and
// rendered as problem details according to the handler's verbosity.
func Handle(handler *ErrorHandler, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			handler.HandleError(w, r, err)
		}
	}
}

// RecoveryMiddleware provides panic recovery with proper error responses
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					handler.HandlePanic(w, r, rec)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
