package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/profiles/repository"
	"marketplace_backend/internal/profiles/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/phone"
	"marketplace_backend/platform/sanitize"
)

// Buckets groups the storage buckets the profile module writes to.
type Buckets struct {
	Avatars   string
	Portfolio string
}

// Service provides profile business logic.
type Service struct {
	repo    repository.Repository
	storage storage.StorageService
	buckets Buckets
	log     *logger.Logger
}

// New creates a new profiles service.
func New(repo repository.Repository, store storage.StorageService, buckets Buckets, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: store, buckets: buckets, log: log}
}

// Get returns the caller's own profile.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return toProfileResponse(profile), nil
}

// Update modifies the caller's profile. Phone numbers are normalized to
// E.164 before storage.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (transport.ProfileResponse, error) {
	normalizedPhone := req.Phone
	if req.Phone != nil {
		n := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &n
	}

	profile, err := s.repo.UpdateProfile(ctx, repository.UpdateProfileParams{
		ID:          userID,
		FullName:    sanitize.TextPtr(req.FullName),
		Phone:       normalizedPhone,
		ProviderBio: sanitize.TextPtr(req.ProviderBio),
		Country:     req.Country,
		IsProvider:  req.IsProvider,
	})
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	return toProfileResponse(profile), nil
}

// UploadAvatar stores the avatar image and records its public URL.
func (s *Service) UploadAvatar(ctx context.Context, userID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (transport.AvatarResponse, error) {
	fileKey, err := s.storage.UploadFile(ctx, s.buckets.Avatars, userID.String(), fileName, contentType, reader, size)
	if err != nil {
		return transport.AvatarResponse{}, apperr.Wrap(apperr.KindBadRequest, "avatar upload failed", err)
	}

	avatarURL := s.storage.PublicURL(s.buckets.Avatars, fileKey)
	if err := s.repo.SetAvatar(ctx, userID, avatarURL); err != nil {
		return transport.AvatarResponse{}, err
	}

	s.log.Info("avatar updated", "userId", userID)
	return transport.AvatarResponse{AvatarURL: avatarURL}, nil
}

// PublicProfile returns the public view of a provider.
func (s *Service) PublicProfile(ctx context.Context, providerID uuid.UUID) (transport.PublicProfileResponse, error) {
	profile, err := s.repo.GetProfile(ctx, providerID)
	if err != nil {
		return transport.PublicProfileResponse{}, err
	}
	if !profile.IsProvider {
		return transport.PublicProfileResponse{}, apperr.NotFound("provider not found")
	}

	return transport.PublicProfileResponse{
		ID:            profile.ID,
		FullName:      profile.FullName,
		AvatarURL:     profile.AvatarURL,
		ProviderBio:   profile.ProviderBio,
		ProviderSince: profile.ProviderSince,
		CompletedJobs: profile.CompletedJobs,
		MemberSince:   profile.CreatedAt,
	}, nil
}

// AddPortfolioItem uploads the image and stores the portfolio entry.
func (s *Service) AddPortfolioItem(ctx context.Context, providerID uuid.UUID, req transport.CreatePortfolioRequest, fileName, contentType string, reader io.Reader, size int64) (transport.PortfolioItemResponse, error) {
	fileKey, err := s.storage.UploadFile(ctx, s.buckets.Portfolio, providerID.String(), fileName, contentType, reader, size)
	if err != nil {
		return transport.PortfolioItemResponse{}, apperr.Wrap(apperr.KindBadRequest, "portfolio image upload failed", err)
	}

	item, err := s.repo.CreatePortfolioItem(ctx, repository.CreatePortfolioParams{
		ProviderID:  providerID,
		ServiceID:   req.ServiceID,
		Title:       sanitize.Text(req.Title),
		Description: sanitize.TextPtr(req.Description),
		ImageURL:    s.storage.PublicURL(s.buckets.Portfolio, fileKey),
	})
	if err != nil {
		return transport.PortfolioItemResponse{}, err
	}

	s.log.Info("portfolio item added", "itemId", item.ID, "providerId", providerID)
	return toPortfolioResponse(item), nil
}

// ListPortfolio returns a provider's portfolio, newest first.
func (s *Service) ListPortfolio(ctx context.Context, providerID uuid.UUID) (transport.PortfolioListResponse, error) {
	items, err := s.repo.ListPortfolio(ctx, providerID)
	if err != nil {
		return transport.PortfolioListResponse{}, err
	}

	responses := make([]transport.PortfolioItemResponse, len(items))
	for i, item := range items {
		responses[i] = toPortfolioResponse(item)
	}
	return transport.PortfolioListResponse{Items: responses, Total: len(responses)}, nil
}

// DeletePortfolioItem removes one of the provider's portfolio entries.
func (s *Service) DeletePortfolioItem(ctx context.Context, providerID, id uuid.UUID) error {
	item, err := s.repo.GetPortfolioItem(ctx, id)
	if err != nil {
		return err
	}
	if item.ProviderID != providerID {
		return apperr.Forbidden("not the owner of this portfolio item")
	}
	return s.repo.DeletePortfolioItem(ctx, id)
}

func toProfileResponse(p repository.Profile) transport.ProfileResponse {
	return transport.ProfileResponse{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		Phone:         p.Phone,
		AvatarURL:     p.AvatarURL,
		IsProvider:    p.IsProvider,
		IsAdmin:       p.IsAdmin,
		ProviderBio:   p.ProviderBio,
		ProviderSince: p.ProviderSince,
		CompletedJobs: p.CompletedJobs,
		LeadBalance:   p.LeadBalance,
		Country:       p.Country,
		CreatedAt:     p.CreatedAt,
	}
}

func toPortfolioResponse(p repository.PortfolioItem) transport.PortfolioItemResponse {
	return transport.PortfolioItemResponse{
		ID:          p.ID,
		ProviderID:  p.ProviderID,
		ServiceID:   p.ServiceID,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}
