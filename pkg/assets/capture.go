// Package assets captures the source site's design assets - stylesheets,
// images, fonts - so the target store can be re-themed. A capture run is
// tagged with a job ID and records progress in the checkpoint store: assets
// already captured under the same job are skipped, and one failing asset
// never aborts the run.
package assets

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/storemover/smi/pkg/checkpoint"
	"github.com/storemover/smi/pkg/errors"
	"github.com/storemover/smi/pkg/httpclient"
	"github.com/storemover/smi/pkg/logging"
	"github.com/storemover/smi/pkg/retry"
)

// Saver persists one captured asset body.
type Saver interface {
	Save(url string, body []byte) error
}

// DirSaver writes captured assets into a directory, named after the last
// path segment of the asset URL.
type DirSaver struct {
	Dir string
}

// Save writes the asset body to the saver's directory.
func (d *DirSaver) Save(url string, body []byte) error {
	name := filepath.Base(url)
	if name == "." || name == "/" {
		return errors.NewPermanent("asset url has no file name: "+url, nil)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name), body, 0o644); err != nil {
		return errors.Wrap(err, "failed to write asset")
	}
	return nil
}

// Failure records one asset that could not be captured.
type Failure struct {
	URL string
	Err error
}

// Result summarizes one capture run.
type Result struct {
	JobID    string
	Captured []string
	Skipped  []string
	Failures []Failure
}

// Capturer downloads design assets and tracks progress per job.
type Capturer struct {
	client *httpclient.Client
	store  *checkpoint.Store
	saver  Saver
	logger *logging.Logger
}

// NewCapturer creates a Capturer downloading through client and saving via
// saver. The checkpoint store may be nil, in which case every asset is
// fetched unconditionally.
func NewCapturer(client *httpclient.Client, store *checkpoint.Store, saver Saver, logger *logging.Logger) *Capturer {
	return &Capturer{
		client: client,
		store:  store,
		saver:  saver,
		logger: logger.WithComponent("assets"),
	}
}

// NewJobID returns a fresh capture job ID. Reuse an earlier job's ID to
// resume it.
func NewJobID() string {
	return uuid.NewString()
}

// Capture downloads every asset URL under the given job, skipping ones the
// checkpoint store already has. Individual failures are collected in the
// result rather than aborting the run; only a cancelled context stops it.
func (c *Capturer) Capture(ctx context.Context, jobID string, urls []string) (*Result, error) {
	if jobID == "" {
		jobID = NewJobID()
	}
	result := &Result{JobID: jobID}
	logger := c.logger.WithFields(map[string]interface{}{logging.JobID: jobID})

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "capture run cancelled")
		}

		if c.store != nil {
			captured, err := c.store.IsCaptured(ctx, jobID, url)
			if err != nil {
				return result, err
			}
			if captured {
				result.Skipped = append(result.Skipped, url)
				continue
			}
		}

		if err := c.captureOne(ctx, jobID, url); err != nil {
			logger.Warn().Err(err).Str(logging.URL, url).Msg("asset capture failed")
			result.Failures = append(result.Failures, Failure{URL: url, Err: err})
			continue
		}
		result.Captured = append(result.Captured, url)
	}

	logger.Info().
		Int("captured", len(result.Captured)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failures)).
		Msg("capture run finished")
	return result, nil
}

func (c *Capturer) captureOne(ctx context.Context, jobID, url string) error {
	op := retry.NewOperation("AssetCapture.Download", url, "asset")

	resp, err := c.client.Get(url).Do(ctx, op)
	if err != nil {
		return errors.Wrapf(err, "failed to download asset %s", url)
	}
	if !resp.IsSuccess() {
		return errors.FromStatus(resp.StatusCode(), "asset")
	}

	if err := c.saver.Save(url, resp.Body()); err != nil {
		return err
	}

	if c.store != nil {
		return c.store.MarkCaptured(ctx, jobID, url)
	}
	return nil
}
