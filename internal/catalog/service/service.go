package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/catalog/repository"
	"marketplace_backend/internal/catalog/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// Service provides business logic for the service catalog.
type Service struct {
	repo    repository.Repository
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, store storage.StorageService, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: store, bucket: bucket, log: log}
}

// Create adds a listing owned by the provider.
func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req transport.CreateListingRequest) (transport.ListingResponse, error) {
	listing, err := s.repo.Create(ctx, repository.CreateParams{
		ProviderID:     providerID,
		Title:          sanitize.Text(req.Title),
		Description:    sanitize.Text(req.Description),
		Price:          req.Price,
		Category:       sanitize.Text(req.Category),
		Location:       sanitize.TextPtr(req.Location),
		Duration:       req.Duration,
		Availability:   req.Availability,
		Includes:       req.Includes,
		AdditionalInfo: sanitize.TextPtr(req.AdditionalInfo),
	})
	if err != nil {
		return transport.ListingResponse{}, err
	}

	s.log.Info("listing created", "listingId", listing.ID, "providerId", providerID, "category", listing.Category)
	return toResponse(listing), nil
}

// Update modifies a listing after verifying ownership.
func (s *Service) Update(ctx context.Context, providerID uuid.UUID, id uuid.UUID, req transport.UpdateListingRequest) (transport.ListingResponse, error) {
	if err := s.requireOwner(ctx, providerID, id); err != nil {
		return transport.ListingResponse{}, err
	}

	listing, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:             id,
		Title:          sanitize.TextPtr(req.Title),
		Description:    sanitize.TextPtr(req.Description),
		Price:          req.Price,
		Category:       sanitize.TextPtr(req.Category),
		Location:       sanitize.TextPtr(req.Location),
		Duration:       req.Duration,
		Availability:   req.Availability,
		Includes:       req.Includes,
		AdditionalInfo: sanitize.TextPtr(req.AdditionalInfo),
	})
	if err != nil {
		return transport.ListingResponse{}, err
	}
	return toResponse(listing), nil
}

// Delete removes a listing after verifying ownership.
func (s *Service) Delete(ctx context.Context, providerID uuid.UUID, id uuid.UUID) error {
	if err := s.requireOwner(ctx, providerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("listing deleted", "listingId", id, "providerId", providerID)
	return nil
}

// Get retrieves a single listing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.ListingResponse, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ListingResponse{}, err
	}
	return toResponse(listing), nil
}

// List searches the catalog with category filter and pagination.
func (s *Service) List(ctx context.Context, req transport.ListListingsRequest) (transport.ListingListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Category: req.Category,
		Search:   req.Search,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return transport.ListingListResponse{}, err
	}

	return toListResponse(items, total, page, pageSize), nil
}

// ListByProvider returns all listings owned by the provider.
func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID) (transport.ListingListResponse, error) {
	items, total, err := s.repo.List(ctx, repository.ListParams{
		ProviderID: &providerID,
		Limit:      100,
	})
	if err != nil {
		return transport.ListingListResponse{}, err
	}
	return toListResponse(items, total, 1, total), nil
}

// Categories returns the distinct categories in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// UploadImage stores a listing image and records its public URL.
func (s *Service) UploadImage(ctx context.Context, providerID, id uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (transport.UploadImageResponse, error) {
	if err := s.requireOwner(ctx, providerID, id); err != nil {
		return transport.UploadImageResponse{}, err
	}

	fileKey, err := s.storage.UploadFile(ctx, s.bucket, id.String(), fileName, contentType, reader, size)
	if err != nil {
		return transport.UploadImageResponse{}, apperr.Wrap(apperr.KindBadRequest, "image upload failed", err)
	}

	imageURL := s.storage.PublicURL(s.bucket, fileKey)
	if _, err := s.repo.Update(ctx, repository.UpdateParams{ID: id, ImageURL: &imageURL}); err != nil {
		return transport.UploadImageResponse{}, err
	}

	return transport.UploadImageResponse{ImageURL: imageURL}, nil
}

// SetRating writes the denormalized rating aggregate (reviews port).
func (s *Service) SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	return s.repo.SetRating(ctx, id, rating, reviewCount)
}

// ServicePrice returns the listing's base price (leads pricing port).
func (s *Service) ServicePrice(ctx context.Context, id uuid.UUID) (float64, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return listing.Price, nil
}

// BookingTarget is what the bookings module needs from a listing.
type BookingTarget struct {
	ProviderID uuid.UUID
	Title      string
	Price      float64
}

// BookingInfo returns the listing's provider and price (bookings port).
func (s *Service) BookingInfo(ctx context.Context, id uuid.UUID) (BookingTarget, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return BookingTarget{}, err
	}
	return BookingTarget{
		ProviderID: listing.ProviderID,
		Title:      listing.Title,
		Price:      listing.Price,
	}, nil
}

func (s *Service) requireOwner(ctx context.Context, providerID, id uuid.UUID) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.ProviderID != providerID {
		return apperr.Forbidden("not the owner of this service")
	}
	return nil
}

func toResponse(l repository.Listing) transport.ListingResponse {
	includes := l.Includes
	if includes == nil {
		includes = []string{}
	}
	return transport.ListingResponse{
		ID:             l.ID,
		ProviderID:     l.ProviderID,
		ProviderName:   l.ProviderName,
		Title:          l.Title,
		Description:    l.Description,
		Price:          l.Price,
		Category:       l.Category,
		ImageURL:       l.ImageURL,
		Rating:         l.Rating,
		ReviewCount:    l.ReviewCount,
		Location:       l.Location,
		Duration:       l.Duration,
		Availability:   l.Availability,
		Includes:       includes,
		AdditionalInfo: l.AdditionalInfo,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func toListResponse(items []repository.Listing, total, page, pageSize int) transport.ListingListResponse {
	responses := make([]transport.ListingResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	return transport.ListingListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
