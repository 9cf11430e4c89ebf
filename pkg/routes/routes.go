// Package routes declares HTTP endpoints as data and registers them on a ServeMux
// using Go 1.22 method patterns.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes and child groups under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns the
// registered patterns in declaration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, g := range groups {
		walk("", g, func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}

func walk(parent string, g Group, fn func(pattern string, h http.HandlerFunc)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		walk(prefix, child, fn)
	}
}
