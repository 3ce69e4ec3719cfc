package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
)

const (
	probeObjectName = "original.json"
	probeLinkURL    = "https://test.test"
)

var probePayload = []byte(`{"success":true}`)

// ProbeTarget is one object store account the readiness probe writes to.
type ProbeTarget interface {
	Name() string
	IssueWriteCapability(ctx context.Context, container, objectName string, ttl time.Duration) (*entity.SignedCapability, error)
	DirectURL(container, objectPath string) string
	DeleteContainer(ctx context.Context, container string) entity.Outcome
}

// ReadinessProber runs a write/read/delete round trip against every object
// store account and the entity store. Any failed step makes the service not
// ready. Each run works in its own container so concurrent probes from
// several replicas never delete each other's objects.
type ReadinessProber struct {
	targets    []ProbeTarget
	links      ShortLinkStore
	httpClient *http.Client
	container  string
	ttl        time.Duration
	logger     *infra.LoggerClient
}

func NewReadinessProber(targets []ProbeTarget, links ShortLinkStore, httpClient *http.Client, container string, logger *infra.LoggerClient) *ReadinessProber {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ReadinessProber{
		targets:    targets,
		links:      links,
		httpClient: httpClient,
		container:  container,
		ttl:        5 * time.Minute,
		logger:     logger,
	}
}

func (p *ReadinessProber) Ready(ctx context.Context) bool {
	for _, target := range p.targets {
		if err := p.probeObjectStore(ctx, target); err != nil {
			p.logger.ErrorWithContextf(ctx, err, "[Readiness] Object store leg failed for %s", target.Name())
			return false
		}
	}

	if err := p.probeEntityStore(ctx); err != nil {
		p.logger.ErrorWithContextf(ctx, err, "[Readiness] Entity store leg failed")
		return false
	}

	return true
}

func (p *ReadinessProber) probeObjectStore(ctx context.Context, target ProbeTarget) error {
	container := p.runContainer()

	capability, err := target.IssueWriteCapability(ctx, container, probeObjectName, p.ttl)
	if err != nil {
		return fmt.Errorf("issue write capability: %w", err)
	}

	if err := p.roundTrip(ctx, target, capability); err != nil {
		// The run container is never reused, so it is removed even when the
		// round trip failed.
		target.DeleteContainer(ctx, container)
		return err
	}

	if outcome := target.DeleteContainer(ctx, container); !outcome.Succeeded() {
		return fmt.Errorf("delete container: %w", outcome.Err)
	}
	return nil
}

func (p *ReadinessProber) roundTrip(ctx context.Context, target ProbeTarget, capability *entity.SignedCapability) error {
	status, _, err := p.do(ctx, http.MethodPut, capability.URL, probePayload)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	// Azure-style stores answer 201, S3-style stores 200.
	if status != http.StatusCreated && status != http.StatusOK {
		return fmt.Errorf("upload: unexpected status %d", status)
	}

	location, err := entity.ParseObjectLocation(capability.URL)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	status, body, err := p.do(ctx, http.MethodGet, target.DirectURL(location.Container, location.ObjectPath()), nil)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("download: unexpected status %d", status)
	}
	if !bytes.Equal(body, probePayload) {
		return fmt.Errorf("download: content mismatch, got %q", body)
	}
	return nil
}

// runContainer stays within the 63 character bucket name limit for any
// configured prefix up to 54 characters.
func (p *ReadinessProber) runContainer() string {
	return p.container + "-" + uuid.NewString()[:8]
}

func (p *ReadinessProber) probeEntityStore(ctx context.Context) error {
	key := uuid.NewString()

	if err := p.links.Insert(ctx, entity.NewShortLink(key, probeLinkURL)); err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	link, err := p.links.Query(ctx, repository.KeyFilter(key))
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if link == nil {
		return fmt.Errorf("query: inserted entity %s not found", key)
	}

	if outcome := p.links.Delete(ctx, key, key); !outcome.Succeeded() {
		return fmt.Errorf("delete: %w", outcome.Err)
	}
	return nil
}

func (p *ReadinessProber) do(ctx context.Context, method, rawURL string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}
