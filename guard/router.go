package guard

import (
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/go-pos-console/bootstrap"
	"github.com/jrsteele09/go-pos-console/session"
)

// StatusSource is satisfied by *bootstrap.Sequencer.
type StatusSource interface {
	Status() bootstrap.Status
}

// StateSource is satisfied by *session.Store.
type StateSource interface {
	State() session.State
}

type route struct {
	guard   Guard
	content Content
}

// Router maps paths to guarded content and makes the top-level render decision.
type Router struct {
	boot    StatusSource
	session StateSource

	lock   sync.RWMutex
	routes map[string]route
}

func NewRouter(boot StatusSource, sess StateSource) *Router {
	return &Router{
		boot:    boot,
		session: sess,
		routes:  make(map[string]route),
	}
}

// Handle registers content for path behind guard. Registering a path twice replaces it.
func (r *Router) Handle(path string, guard Guard, content Content) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.routes[normalize(path)] = route{guard: guard, content: content}
}

// Routes lists the registered paths.
func (r *Router) Routes() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Render is one render pass. Order matters: nothing protected is decided before
// bootstrap completes, and no guard runs without a token.
func (r *Router) Render(path string) View {
	path = normalize(path)

	status := r.boot.Status()
	if !status.Complete {
		return View{Kind: ViewLoading, Route: path}
	}
	if status.Phase == bootstrap.FatalError {
		return View{Kind: ViewFatal, Route: path, Cause: status.Cause}
	}

	st := r.session.State()
	if !st.HasToken() {
		return View{Kind: ViewLogin, Route: path}
	}

	r.lock.RLock()
	rt, ok := r.routes[path]
	r.lock.RUnlock()
	if !ok {
		return View{Kind: ViewNotFound, Route: path}
	}
	return rt.guard(st, path, rt.content)
}

func normalize(path string) string {
	return "/" + strings.Trim(path, "/")
}
