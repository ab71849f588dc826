// Package catalog fetches the source store's catalog: products from the
// storefront API and static pages from the content API. Fetches page through
// the results with the configured page size, and every request runs under the
// shared retry policy via the HTTP client.
package catalog

import (
	"context"
	"strconv"

	"github.com/storemover/smi/pkg/config"
	"github.com/storemover/smi/pkg/errors"
	"github.com/storemover/smi/pkg/httpclient"
	"github.com/storemover/smi/pkg/retry"
)

const (
	productsPath = "/wp-json/wc/store/v1/products"
	pagesPath    = "/wp-json/wp/v2/pages"

	defaultPageSize = 50
)

// Product is one catalog product as the storefront API exposes it.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	SKU         string   `json:"sku"`
	Price       string   `json:"price"`
	Images      []Image  `json:"images"`
	Categories  []string `json:"category_names"`
}

// Image is one product image reference.
type Image struct {
	ID  int    `json:"id"`
	URL string `json:"src"`
	Alt string `json:"alt"`
}

// Page is one static content page.
type Page struct {
	ID      int    `json:"id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link"`
}

// Fetcher retrieves catalog entities from the source store.
type Fetcher struct {
	client   *httpclient.Client
	pageSize int
}

// NewFetcher creates a Fetcher reading from the source described by cfg.
// A missing or non-positive page size falls back to the default; pagination
// terminates on the first short page, which a zero page size would never
// produce.
func NewFetcher(client *httpclient.Client, cfg config.SourceConfig) *Fetcher {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Fetcher{client: client, pageSize: pageSize}
}

// FetchProducts retrieves all products, following pagination until a page
// comes back short.
func (f *Fetcher) FetchProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	for page := 1; ; page++ {
		batch, err := fetchPage[Product](ctx, f, "CatalogFetch.Products", productsPath, "product", page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < f.pageSize {
			return all, nil
		}
	}
}

// FetchPages retrieves all static pages, following pagination until a page
// comes back short.
func (f *Fetcher) FetchPages(ctx context.Context) ([]Page, error) {
	var all []Page
	for page := 1; ; page++ {
		batch, err := fetchPage[Page](ctx, f, "CatalogFetch.Pages", pagesPath, "page", page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < f.pageSize {
			return all, nil
		}
	}
}

func fetchPage[T any](ctx context.Context, f *Fetcher, operation, path, entityType string, page int) ([]T, error) {
	op := retry.NewOperation(operation, f.client.BaseURL()+path, entityType)

	resp, err := f.client.Get(path).
		WithQuery("page", strconv.Itoa(page)).
		WithQuery("per_page", strconv.Itoa(f.pageSize)).
		Do(ctx, op)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s page %d", entityType, page)
	}
	if !resp.IsSuccess() {
		return nil, errors.FromStatus(resp.StatusCode(), entityType)
	}

	var batch []T
	if err := resp.BodyAsJSON(&batch); err != nil {
		return nil, err
	}
	return batch, nil
}
