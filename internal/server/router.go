package server

// Reply is what a handler wants written back: either a status code with a
// plain-text message, or nothing at all.
type Reply struct {
	code    int
	message string
	respond bool
}

// Respond returns a Reply that writes code and message and ends the connection.
func Respond(code int, message string) Reply {
	return Reply{code: code, message: message, respond: true}
}

// NoReply returns a Reply that writes nothing and leaves the connection open
// until the peer closes it.
func NoReply() Reply {
	return Reply{}
}

func (r Reply) Code() int       { return r.code }
func (r Reply) Message() string { return r.message }

// Responds reports whether anything is written back.
func (r Reply) Responds() bool { return r.respond }

// Handler handles a decoded request payload. The payload is nil for an empty body.
type Handler func(payload any) Reply

type Route struct {
	Method  string
	Path    string
	Handler Handler
}

// Router dispatches on exact method and path equality.
type Router struct {
	routes []Route
}

// NewRouter returns a Router over a copy of routes. Duplicate method and path
// pairs are kept; requests matching more than one route are treated as not found.
func NewRouter(routes []Route) *Router {
	rs := make([]Route, len(routes))
	copy(rs, routes)
	return &Router{routes: rs}
}

// Len returns the number of configured routes.
func (r *Router) Len() int {
	return len(r.routes)
}

// Route invokes the single handler registered for method and path and returns
// its reply unchanged. It returns false when zero or several routes match.
func (r *Router) Route(method, path string, payload any) (Reply, bool) {
	var (
		match   Route
		matches int
	)
	for _, rt := range r.routes {
		if rt.Method == method && rt.Path == path {
			match = rt
			matches++
		}
	}
	if matches != 1 || match.Handler == nil {
		return Reply{}, false
	}
	return match.Handler(payload), true
}
