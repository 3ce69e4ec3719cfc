package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
	"github.com/tnqbao/gau-photo-share/repository"
)

type ShortLinkService struct {
	cfg      *config.EnvConfig
	links    ShortLinkStore
	shortIDs *ShortIDGenerator
	logger   *infra.LoggerClient
}

func NewShortLinkService(cfg *config.EnvConfig, links ShortLinkStore, shortIDs *ShortIDGenerator, logger *infra.LoggerClient) *ShortLinkService {
	return &ShortLinkService{cfg: cfg, links: links, shortIDs: shortIDs, logger: logger}
}

func (s *ShortLinkService) Shorten(ctx context.Context, rawURL string) (*ShortURLResponse, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, entity.NewValidationError("url", fmt.Sprintf("%q is not an http(s) URL", rawURL))
	}

	shortID := s.shortIDs.Generate(rawURL)
	if err := s.links.Insert(ctx, entity.NewShortLink(shortID, rawURL)); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[ShortLink] Failed to insert %s", shortID)
		return nil, fmt.Errorf("failed to create short link: %w", err)
	}

	return &ShortURLResponse{
		ShortID:        shortID,
		ShortURL:       s.cfg.ShortURL(shortID),
		OriginalURL:    rawURL,
		ShouldRedirect: false,
	}, nil
}

// Resolve returns nil when the id was never issued.
func (s *ShortLinkService) Resolve(ctx context.Context, shortID string) (*entity.ShortLink, error) {
	return s.links.Query(ctx, repository.KeyFilter(shortID))
}
