package main

import (
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		public = func(next http.Handler) http.Handler {
			return app.timeout(next)
		}
		admin = func(next http.Handler) http.Handler {
			return app.mustAdmin(app.timeout(next))
		}
	)

	mux.Handle("GET /api/healthy", public(http.HandlerFunc(app.healthy)))

	mux.Handle("POST /api/plans", public(http.HandlerFunc(app.plansPOST)))

	mux.Handle("GET /api/exercises", public(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{id}", public(http.HandlerFunc(app.exerciseGET)))

	mux.Handle("GET /api/catalog", public(http.HandlerFunc(app.catalogGET)))
	mux.Handle("GET /api/catalog/versions", admin(http.HandlerFunc(app.catalogVersionsGET)))
	mux.Handle("PUT /api/catalog/{version}", admin(http.HandlerFunc(app.catalogPUT)))
	mux.Handle("POST /api/catalog/{version}/activate", admin(http.HandlerFunc(app.catalogActivatePOST)))
	mux.Handle("POST /api/catalog/reload", admin(http.HandlerFunc(app.catalogReloadPOST)))

	mux.Handle("/", http.HandlerFunc(app.notFound))

	return app.recoverPanic(app.logAndTraceRequest(secureHeaders(noCache(mux))))
}
