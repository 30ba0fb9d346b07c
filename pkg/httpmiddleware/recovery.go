package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Recovery converts handler panics into JSON 500 responses matching the API's
// error shape. The panic value and stack are logged through the request
// logger. http.ErrAbortHandler is re-raised; the server uses it to abort
// responses deliberately.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer recoverPanic(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func recoverPanic(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	if err, ok := rec.(error); ok && err == http.ErrAbortHandler {
		panic(rec)
	}

	zctx.From(r.Context()).Error("panic in handler",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Any("panic", rec),
		zap.Stack("stack"),
	)

	w.Header().Set("Connection", "close")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
}
