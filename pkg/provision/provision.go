// Package provision uploads migrated entities to the target store: product
// records and media files, via authenticated POSTs. Transient upstream
// failures are absorbed by the retry policy; a terminal non-2xx status comes
// back as a classified error so the caller can tell a bad token from a bad
// payload.
package provision

import (
	"context"

	"github.com/storemover/smi/pkg/config"
	"github.com/storemover/smi/pkg/errors"
	"github.com/storemover/smi/pkg/httpclient"
	"github.com/storemover/smi/pkg/retry"
)

const (
	productsPath = "/api/v1/products"
	mediaPath    = "/api/v1/media"
)

// ProductInput is the payload for creating one product on the target store.
type ProductInput struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	SKU         string   `json:"sku"`
	Price       string   `json:"price"`
	Categories  []string `json:"categories,omitempty"`
}

// CreatedProduct is the target store's record of a created product.
type CreatedProduct struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Media is the target store's record of an uploaded media file.
type Media struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provisioner creates entities on the target store.
type Provisioner struct {
	client *httpclient.Client
	token  string
}

// New creates a Provisioner uploading to the target described by cfg.
func New(client *httpclient.Client, cfg config.TargetConfig) *Provisioner {
	return &Provisioner{client: client, token: cfg.APIToken}
}

// CreateProduct creates one product on the target store.
func (p *Provisioner) CreateProduct(ctx context.Context, product ProductInput) (*CreatedProduct, error) {
	op := retry.NewOperation("ProvisionUpload.Product", p.client.BaseURL()+productsPath, "product")

	resp, err := p.client.Post(productsPath).
		WithJSON(product).
		WithAuthToken(p.token).
		Do(ctx, op)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create product %q", product.Slug)
	}
	if !resp.IsSuccess() {
		return nil, errors.FromStatus(resp.StatusCode(), "product")
	}

	var created CreatedProduct
	if err := resp.BodyAsJSON(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UploadMedia uploads one media file to the target store.
func (p *Provisioner) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (*Media, error) {
	op := retry.NewOperation("ProvisionUpload.Media", p.client.BaseURL()+mediaPath, "media")

	resp, err := p.client.Post(mediaPath).
		WithBody(data).
		WithHeader("Content-Type", contentType).
		WithHeader("Content-Disposition", `attachment; filename="`+filename+`"`).
		WithAuthToken(p.token).
		Do(ctx, op)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upload media %q", filename)
	}
	if !resp.IsSuccess() {
		return nil, errors.FromStatus(resp.StatusCode(), "media")
	}

	var media Media
	if err := resp.BodyAsJSON(&media); err != nil {
		return nil, err
	}
	return &media, nil
}
