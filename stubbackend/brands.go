package stubbackend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/stubbackend/tokens"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

type brandStore struct {
	lock   sync.RWMutex
	brands map[string]brand
}

func newBrandStore() *brandStore {
	return &brandStore{brands: make(map[string]brand)}
}

func (b *brandStore) add(name, description string) (brand, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, existing := range b.brands {
		if strings.EqualFold(existing.Name, name) {
			return existing, false
		}
	}
	br := brand{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   tokens.NowTimeFunc().UTC().Format(time.RFC3339),
	}
	b.brands[br.ID] = br
	return br, true
}

func (b *brandStore) page(page, size int) ([]brand, int) {
	b.lock.RLock()
	all := make([]brand, 0, len(b.brands))
	for _, br := range b.brands {
		all = append(all, br)
	}
	b.lock.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	start := (page - 1) * size
	if start >= len(all) {
		return []brand{}, len(all)
	}
	end := min(start+size, len(all))
	return all[start:end], len(all)
}

// CreateBrandHandler validates and stores a brand.
func (s *Server) CreateBrandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "Name is required")
			return
		}

		br, created := s.brands.add(req.Name, strings.TrimSpace(req.Description))
		if !created {
			writeError(w, http.StatusConflict, "A brand named "+br.Name+" already exists")
			return
		}
		writeEnvelope(w, http.StatusCreated, br, nil)
	}
}

// ListBrandsHandler pages through brands ordered by name.
func (s *Server) ListBrandsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		size := min(queryInt(r, "pageSize", defaultPageSize), maxPageSize)

		items, total := s.brands.page(page, size)
		writeEnvelope(w, http.StatusOK, items, &api.Pagination{Page: page, PageSize: size, Total: total})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
