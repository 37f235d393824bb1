// Package stubbackend is a development backend implementing the console's REST contract.
package stubbackend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/stubbackend/tokens"
	"github.com/jrsteele09/go-pos-console/users"
	fakeuserrepo "github.com/jrsteele09/go-pos-console/users/repofake"
	"github.com/rs/zerolog/log"
)

// RefreshCookieName carries the opaque refresh credential.
const RefreshCookieName = "pos_refresh"

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	prefix string
	config config.Config

	users   users.UserRepo
	access  *tokens.Issuer
	refresh *tokens.RefreshManager
	revoked *tokens.RevokedTokens
	brands  *brandStore

	faultLock     sync.RWMutex
	refreshStatus int
}

func New(cfg config.Config) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		prefix:  "/" + strings.Trim(cfg.GetAPIPrefix(), "/"),
		config:  cfg,
		users:   fakeuserrepo.NewFakeUserRepo(),
		access:  tokens.NewIssuer(cfg),
		refresh: tokens.NewRefreshManager(cfg),
		revoked: tokens.NewRevokedTokens(),
		brands:  newBrandStore(),
	}
	if s.prefix == "/" {
		s.prefix = ""
	}

	if err := s.seedUsers(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to seed users: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Users exposes the seeded user repository so tests can add or block users.
func (s *Server) Users() users.UserRepo {
	return s.users
}

// FailRefresh makes every refresh call answer with status until it is called with 0.
func (s *Server) FailRefresh(status int) {
	s.faultLock.Lock()
	defer s.faultLock.Unlock()
	s.refreshStatus = status
}

func (s *Server) refreshFault() int {
	s.faultLock.RLock()
	defer s.faultLock.RUnlock()
	return s.refreshStatus
}

// RegisterRouteFunc registers handler under "METHOD path" with the API prefix applied.
func (s *Server) RegisterRouteFunc(method, path string, handler http.HandlerFunc) {
	pattern := method + " " + s.prefix + path
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s %-7s%s] %s", color, method, ResetColor, path)
}

// RunMaintenance drops expired revocations every interval until ctx ends.
func (s *Server) RunMaintenance(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.revoked.Cleanup()
		}
	}
}
