// Package directory resolves extensions found on the source site against the
// public plugin/theme directory. A slug the directory does not list comes back
// as a NotFound error; the retry policy never retries a 404, so unlisted
// extensions are cheap to detect.
package directory

import (
	"context"
	"net/http"

	"github.com/storemover/smi/pkg/errors"
	"github.com/storemover/smi/pkg/httpclient"
	"github.com/storemover/smi/pkg/retry"
)

const (
	pluginInfoPath = "/plugins/info/1.2/"
	themeInfoPath  = "/themes/info/1.2/"
)

// Plugin is a directory listing for one plugin.
type Plugin struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Version      string `json:"version"`
	Author       string `json:"author"`
	DownloadLink string `json:"download_link"`
	Requires     string `json:"requires"`
}

// Theme is a directory listing for one theme.
type Theme struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Version      string `json:"version"`
	Author       string `json:"author"`
	DownloadLink string `json:"download_link"`
	Homepage     string `json:"homepage"`
}

// Directory looks up plugins and themes by slug.
type Directory struct {
	client *httpclient.Client
}

// New creates a Directory backed by the given client. The client's base URL
// points at the directory API host.
func New(client *httpclient.Client) *Directory {
	return &Directory{client: client}
}

// LookupPlugin resolves a plugin slug against the directory. An unlisted slug
// returns a NotFound error.
func (d *Directory) LookupPlugin(ctx context.Context, slug string) (*Plugin, error) {
	op := retry.NewOperation("DirectoryLookup.Plugin", d.client.BaseURL()+pluginInfoPath, "plugin")

	resp, err := d.client.Get(pluginInfoPath).
		WithQuery("action", "plugin_information").
		WithQuery("request[slug]", slug).
		Do(ctx, op)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up plugin %q", slug)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, errors.NewNotFound("plugin", slug)
	}
	if !resp.IsSuccess() {
		return nil, errors.FromStatus(resp.StatusCode(), "plugin")
	}

	var plugin Plugin
	if err := resp.BodyAsJSON(&plugin); err != nil {
		return nil, err
	}
	return &plugin, nil
}

// LookupTheme resolves a theme slug against the directory. An unlisted slug
// returns a NotFound error.
func (d *Directory) LookupTheme(ctx context.Context, slug string) (*Theme, error) {
	op := retry.NewOperation("DirectoryLookup.Theme", d.client.BaseURL()+themeInfoPath, "theme")

	resp, err := d.client.Get(themeInfoPath).
		WithQuery("action", "theme_information").
		WithQuery("request[slug]", slug).
		Do(ctx, op)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up theme %q", slug)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, errors.NewNotFound("theme", slug)
	}
	if !resp.IsSuccess() {
		return nil, errors.FromStatus(resp.StatusCode(), "theme")
	}

	var theme Theme
	if err := resp.BodyAsJSON(&theme); err != nil {
		return nil, err
	}
	return &theme, nil
}
