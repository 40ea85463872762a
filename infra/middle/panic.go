package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/subdee/icepay/infra/logger"
	"github.com/subdee/icepay/infra/response"
)

// PanicRecoveryMiddleware handles panics and converts them to HTTP 500 errors
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("Panic recovered", fmt.Errorf("%v", rec), logger.LogContext{
					RequestID: RequestIDFromContext(r.Context()),
					Fields: map[string]any{
						"method": r.Method,
						"url":    r.URL.Path,
						"stack":  string(debug.Stack()),
					},
				})

				response.Error(w, http.StatusInternalServerError, "Internal server error", fmt.Errorf("an unexpected error occurred"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
