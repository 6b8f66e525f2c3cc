package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	slogctx "github.com/veqryn/slog-context"
)

var ErrUnknownRoute = errors.New("unknown route")

// AuthState reports whether the session currently holds credentials.
type AuthState interface {
	IsAuthenticated() bool
}

// Location is a resolved route together with its path parameters.
type Location struct {
	Route  Route
	Params map[string]string
}

// Path returns the concrete path of the location.
func (l Location) Path() string {
	return l.Route.Expand(l.Params)
}

// Router resolves navigation targets, runs the guard and remembers where the application is.
type Router struct {
	auth     AuthState
	mux      *chi.Mux
	patterns map[string]Route

	mu      sync.RWMutex
	current Location
}

func NewRouter(auth AuthState) *Router {
	r := &Router{
		auth:     auth,
		mux:      chi.NewMux(),
		patterns: make(map[string]Route, len(Routes)),
	}

	for _, route := range Routes {
		pattern := chiPattern(route.Path)
		r.patterns[pattern] = route
		r.mux.Get(pattern, http.NotFound)
	}

	return r
}

// chiPattern turns /bienes/detalle/:id into /bienes/detalle/{id}.
func chiPattern(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			segments[i] = "{" + name + "}"
		}
	}

	return strings.Join(segments, "/")
}

// Resolve accepts a route name or a concrete path.
func (r *Router) Resolve(target string) (Location, error) {
	if !strings.HasPrefix(target, "/") {
		route, ok := Lookup(target)
		if !ok {
			return Location{}, fmt.Errorf("%w: %s", ErrUnknownRoute, target)
		}

		return Location{Route: route}, nil
	}

	path := target
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownRoute, target)
	}

	route, ok := r.patterns[rctx.RoutePattern()]
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownRoute, target)
	}

	loc := Location{Route: route}
	for i, key := range rctx.URLParams.Keys {
		if loc.Params == nil {
			loc.Params = make(map[string]string, len(rctx.URLParams.Keys))
		}
		loc.Params[key] = rctx.URLParams.Values[i]
	}

	return loc, nil
}

// Guard resolves loc's route through the guard and moves to the final location.
// The returned location is where the application ended up.
func (r *Router) Guard(ctx context.Context, loc Location) (Location, Decision) {
	decision := Decide(loc.Route, r.auth.IsAuthenticated())
	if !decision.Allowed() {
		redirect, _ := Lookup(decision.Redirect)
		slogctx.Debug(ctx, "Navigation redirected", "from", loc.Route.Name, "to", redirect.Name)
		loc = Location{Route: redirect}
	}

	r.mu.Lock()
	r.current = loc
	r.mu.Unlock()

	return loc, decision
}

// Navigate resolves target and runs the guard.
func (r *Router) Navigate(ctx context.Context, target string) error {
	loc, err := r.Resolve(target)
	if err != nil {
		return err
	}

	r.Guard(ctx, loc)

	return nil
}

// Current is the last location reached by a navigation.
func (r *Router) Current() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current
}
