package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is one endpoint of the ledger API
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	// Idempotent routes move stock or money and honour Idempotency-Key
	Idempotent bool
}

// Once marks the route as idempotent
func (r Route) Once() Route {
	r.Idempotent = true
	return r
}

func get(path string, h gin.HandlerFunc) Route {
	return Route{Method: http.MethodGet, Path: path, Handler: h}
}

func post(path string, h gin.HandlerFunc) Route {
	return Route{Method: http.MethodPost, Path: path, Handler: h}
}

func put(path string, h gin.HandlerFunc) Route {
	return Route{Method: http.MethodPut, Path: path, Handler: h}
}

func del(path string, h gin.HandlerFunc) Route {
	return Route{Method: http.MethodDelete, Path: path, Handler: h}
}

// Resource is the set of routes under one path prefix, e.g. /purchase-orders
type Resource struct {
	Prefix string
	Routes []Route
}

// API mounts resources under /api/<version>. Middleware given to Use runs for
// every API route; the idempotency middleware runs only on idempotent routes.
type API struct {
	version     string
	middleware  []gin.HandlerFunc
	idempotency gin.HandlerFunc
	resources   []Resource
}

// NewAPI creates an API for the given version, e.g. "v1"
func NewAPI(version string) *API {
	return &API{version: version}
}

// Use adds middleware that runs for every API route
func (a *API) Use(middleware ...gin.HandlerFunc) *API {
	a.middleware = append(a.middleware, middleware...)
	return a
}

// WithIdempotency sets the middleware placed in front of idempotent routes
func (a *API) WithIdempotency(mw gin.HandlerFunc) *API {
	a.idempotency = mw
	return a
}

// Add appends resources to the API
func (a *API) Add(resources ...Resource) *API {
	a.resources = append(a.resources, resources...)
	return a
}

// BasePath returns the mount point of the API
func (a *API) BasePath() string {
	return "/api/" + a.version
}

// Routes lists every route with its full path
func (a *API) Routes() []Route {
	var out []Route
	for _, res := range a.resources {
		for _, route := range res.Routes {
			route.Path = a.BasePath() + res.Prefix + route.Path
			out = append(out, route)
		}
	}
	return out
}

// Mount registers every route on engine
func (a *API) Mount(engine *gin.Engine) {
	api := engine.Group(a.BasePath(), a.middleware...)
	for _, res := range a.resources {
		group := api.Group(res.Prefix)
		for _, route := range res.Routes {
			handlers := []gin.HandlerFunc{route.Handler}
			if route.Idempotent && a.idempotency != nil {
				handlers = append([]gin.HandlerFunc{a.idempotency}, handlers...)
			}
			group.Handle(route.Method, route.Path, handlers...)
		}
	}
}
