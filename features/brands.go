// Package features holds console screens that talk to the backend through the core.
package features

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/go-pos-console/action"
	"github.com/jrsteele09/go-pos-console/api"
)

// PathBrands is the brands collection endpoint.
const PathBrands = "/brands"

// Brand is a product brand as the backend returns it.
type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// CreateBrandRequest is the form payload of POST /brands.
type CreateBrandRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// BrandPage is one page of the brand list.
type BrandPage struct {
	Brands     []Brand
	Pagination api.Pagination
}

// Reporter is the error hook every feature reports user-facing failures through.
type Reporter interface {
	SetError(err *action.ClassifiedError)
}

// Brands is the brand management screen's backend collaborator.
type Brands struct {
	dispatcher *api.Dispatcher
	errors     Reporter

	lock   sync.RWMutex
	loaded *BrandPage
}

func NewBrands(d *api.Dispatcher, errors Reporter) *Brands {
	return &Brands{dispatcher: d, errors: errors}
}

// Create posts a new brand. A validation failure ends up in the error store.
func (b *Brands) Create(ctx context.Context, req CreateBrandRequest) action.Result[Brand] {
	res := action.Issue(ctx, func(ctx context.Context) (Brand, error) {
		env, err := api.Call[Brand](ctx, b.dispatcher, http.MethodPost, PathBrands, req)
		if err != nil {
			return Brand{}, err
		}
		return env.Payload, nil
	})
	b.report(res.Error)
	return res
}

// List fetches one page of brands. Pages start at 1.
func (b *Brands) List(ctx context.Context, page, pageSize int) action.Result[BrandPage] {
	q := url.Values{}
	q.Set("page", fmt.Sprint(max(page, 1)))
	if pageSize > 0 {
		q.Set("pageSize", fmt.Sprint(pageSize))
	}

	res := action.Issue(ctx, func(ctx context.Context) (BrandPage, error) {
		env, err := api.Call[[]Brand](ctx, b.dispatcher, http.MethodGet, PathBrands+"?"+q.Encode(), nil)
		if err != nil {
			return BrandPage{}, err
		}
		p := BrandPage{Brands: env.Payload}
		if env.Pagination != nil {
			p.Pagination = *env.Pagination
		}
		return p, nil
	})
	if res.OK() {
		b.lock.Lock()
		b.loaded = res.Response
		b.lock.Unlock()
	}
	b.report(res.Error)
	return res
}

// Loaded returns the page from the last successful List, or nil.
func (b *Brands) Loaded() *BrandPage {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.loaded
}

// Forget drops the loaded page.
func (b *Brands) Forget() {
	b.lock.Lock()
	b.loaded = nil
	b.lock.Unlock()
}

// report skips 401s: the session is already cleared and the login view follows.
func (b *Brands) report(err *action.ClassifiedError) {
	if err == nil || err.Unauthorized() || b.errors == nil {
		return
	}
	b.errors.SetError(err)
}
