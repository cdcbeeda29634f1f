// Package router is an ordered route table dispatched from a single gin
// catch-all. Routes are tried in registration order and the first match wins,
// so overlapping patterns such as /products/search and /products/:id resolve
// by declaration order rather than by specificity.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HandlerFunc handles a request. A non-nil error stops the chain and is passed
// to the router's ErrorHandler.
type HandlerFunc func(c *gin.Context) error

// ErrorHandler writes the response for an error returned by a handler.
type ErrorHandler func(c *gin.Context, err error)

// WildcardParam is the param name holding the remainder matched by a /* pattern.
const WildcardParam = "*"

type route struct {
	method   string
	pattern  string
	segments []string
	handlers []HandlerFunc
}

type Router struct {
	routes  []route
	onError ErrorHandler
	log     zerolog.Logger
}

func New(log zerolog.Logger) *Router {
	return &Router{onError: defaultErrorHandler, log: log}
}

// SetErrorHandler replaces the handler used for errors returned by routes.
func (r *Router) SetErrorHandler(h ErrorHandler) {
	if h != nil {
		r.onError = h
	}
}

func (r *Router) Handle(method, pattern string, handlers ...HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   strings.ToUpper(method),
		pattern:  pattern,
		segments: split(pattern),
		handlers: handlers,
	})
}

func (r *Router) GET(pattern string, handlers ...HandlerFunc)    { r.Handle(http.MethodGet, pattern, handlers...) }
func (r *Router) POST(pattern string, handlers ...HandlerFunc)   { r.Handle(http.MethodPost, pattern, handlers...) }
func (r *Router) PUT(pattern string, handlers ...HandlerFunc)    { r.Handle(http.MethodPut, pattern, handlers...) }
func (r *Router) DELETE(pattern string, handlers ...HandlerFunc) { r.Handle(http.MethodDelete, pattern, handlers...) }

// Mount copies sub's routes under base, keeping their order. An empty or "/"
// sub pattern maps to base itself.
func (r *Router) Mount(base string, sub *Router) {
	base = strings.TrimRight(base, "/")
	for _, rt := range sub.routes {
		p := rt.pattern
		if p == "" || p == "/" {
			p = base
		} else {
			p = base + "/" + strings.TrimLeft(p, "/")
		}
		r.Handle(rt.method, p, rt.handlers...)
	}
}

// Routes lists "METHOD pattern" in match order.
func (r *Router) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt.method+" "+rt.pattern)
	}
	return out
}

// Dispatch finds the first matching route and runs its chain.
func (r *Router) Dispatch(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			written := c.Writer.Written()
			r.log.Error().
				Interface("panic", rec).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Bool("response_written", written).
				Msg("handler panicked")
			if !written {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			}
		}
	}()

	method := strings.ToUpper(c.Request.Method)
	path := c.Request.URL.Path
	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		params, ok := rt.match(path)
		if !ok {
			continue
		}
		c.Params = params
		for _, h := range rt.handlers {
			if err := h(c); err != nil {
				r.onError(c, err)
				return
			}
			if c.IsAborted() {
				return
			}
		}
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
}

func (rt *route) match(path string) (gin.Params, bool) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if rt.pattern == path {
		return gin.Params{}, true
	}
	if prefix, ok := strings.CutSuffix(rt.pattern, "/*"); ok {
		if !strings.HasPrefix(path, prefix) {
			return nil, false
		}
		rest := strings.TrimPrefix(path[len(prefix):], "/")
		return gin.Params{{Key: WildcardParam, Value: rest}}, true
	}
	if !strings.Contains(rt.pattern, ":") {
		return nil, false
	}
	parts := split(path)
	if len(parts) != len(rt.segments) {
		return nil, false
	}
	params := gin.Params{}
	for i, seg := range rt.segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			params = append(params, gin.Param{Key: name, Value: parts[i]})
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

func split(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func defaultErrorHandler(c *gin.Context, _ error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}
