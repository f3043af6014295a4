package providers

import (
	"net/http"
	"readtrack/internal/structures"
	"slices"
	"strings"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	Put(url string, handler http.Handler)
	Delete(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

// RouterProvider collects handlers per url. Several methods registered on
// the same url are served by one route.
type RouterProvider struct {
	urls     []string
	handlers map[string]methodHandlers
}

type methodHandlers map[string]http.Handler

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.handle(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.handle(http.MethodPost, url, handler)
}

func (rp *RouterProvider) Put(url string, handler http.Handler) {
	rp.handle(http.MethodPut, url, handler)
}

func (rp *RouterProvider) Delete(url string, handler http.Handler) {
	rp.handle(http.MethodDelete, url, handler)
}

func (rp *RouterProvider) handle(method, url string, handler http.Handler) {
	mh, ok := rp.handlers[url]
	if !ok {
		mh = methodHandlers{}
		rp.handlers[url] = mh
		rp.urls = append(rp.urls, url)
	}
	mh[method] = handler
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	routes := make([]structures.Route, 0, len(rp.urls))
	for _, url := range rp.urls {
		routes = append(routes, structures.Route{
			Url:     url,
			Handler: rp.handlers[url],
		})
	}
	return routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{handlers: map[string]methodHandlers{}}
}

func (mh methodHandlers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := mh[r.Method]
	if !ok {
		w.Header().Set("Allow", mh.allow())
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	handler.ServeHTTP(w, r)
}

func (mh methodHandlers) allow() string {
	methods := make([]string, 0, len(mh))
	for m := range mh {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}
