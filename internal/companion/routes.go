package companion

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes served by the simulator.
const (
	LaunchPath   = "/v1/launch"
	QueryPath    = "/v1/permission-access/query"
	AccountsPath = "/v1/permission-access/accounts"
	FilesPath    = "/v1/permission-access/files"
	FilePath     = "/v1/permission-access/files/{fileID}"
)

// Init builds the simulator router.
func (c *Companion) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(c.withLogger)

	router.Post(LaunchPath, c.launch)
	router.Post(QueryPath, c.serve(c.query))
	router.Post(AccountsPath, c.serve(c.accounts))
	router.Post(FilesPath, c.serve(c.files))
	router.Post(FilePath, c.serve(c.file))

	return router
}

// withLogger attaches the simulator logger to the request and logs it once
// served. Hijacked requests have no status.
func (c *Companion) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(c.logger.WithContext(r.Context())))

		c.logger.Debug().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
