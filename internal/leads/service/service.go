package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads/domain"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// leadFeeRate is the share of the service price charged for a claimed
// opportunity. Direct claims inside the exclusivity window are free.
const leadFeeRate = 0.10

// FeeCharger debits and credits provider lead balances.
// Implemented by the payments module behind an adapter.
type FeeCharger interface {
	// ChargeLeadFee conditionally debits the balance. Insufficient funds
	// surface as apperr Conflict.
	ChargeLeadFee(ctx context.Context, providerID uuid.UUID, amount float64) error
	// RefundLeadFee credits a charge back after a lost claim race.
	RefundLeadFee(ctx context.Context, providerID uuid.UUID, amount float64) error
}

// ReplyWriter appends the winning reply to the message log.
// Implemented by the messaging module behind an adapter.
type ReplyWriter interface {
	WriteReply(ctx context.Context, senderID, recipientID uuid.UUID, content string) error
}

// ServicePricer returns the base price of a service, if it exists.
// Implemented by the catalog module behind an adapter.
type ServicePricer interface {
	ServicePrice(ctx context.Context, serviceID uuid.UUID) (float64, error)
}

// Service provides lead routing business logic.
type Service struct {
	repo   repository.Repository
	fees   FeeCharger
	pricer ServicePricer
	reply  ReplyWriter
	bus    events.Bus
	cfg    config.LeadPolicyConfig
	log    *logger.Logger
	now    func() time.Time
}

// New creates a new leads service.
func New(repo repository.Repository, fees FeeCharger, pricer ServicePricer, bus events.Bus, cfg config.LeadPolicyConfig, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		fees:   fees,
		pricer: pricer,
		bus:    bus,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// SetReplyWriter injects the messaging reply writer (breaks circular dependency).
func (s *Service) SetReplyWriter(reply ReplyWriter) {
	s.reply = reply
}

// Submit stores a customer inquiry as a direct lead for the provider.
func (s *Service) Submit(ctx context.Context, customerID uuid.UUID, req transport.SubmitLeadRequest) (transport.LeadResponse, error) {
	if customerID == req.ProviderID {
		return transport.LeadResponse{}, apperr.BadRequest("cannot send a lead to yourself")
	}

	price, err := s.leadPrice(ctx, req.ServiceID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		CustomerID: customerID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Content:    sanitize.Text(req.Content),
		Price:      price,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadSubmitted{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		CustomerID: lead.CustomerID,
		ProviderID: lead.ProviderID,
		ServiceID:  lead.ServiceID,
		Content:    lead.Content,
	})

	s.log.Info("lead submitted", "leadId", lead.ID, "providerId", lead.ProviderID)
	return toResponse(lead), nil
}

// Respond claims the lead for the provider and appends the reply.
// First reply wins: a lost race surfaces as 409, never as an overwrite.
// The fee for a priced opportunity is charged before the claim and refunded
// if the claim loses, so a responded lead never moves backwards.
func (s *Service) Respond(ctx context.Context, providerID, leadID uuid.UUID, req transport.RespondRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if lead.Status == domain.StatusOpportunity && lead.Category != nil {
		offers, err := s.repo.OffersCategory(ctx, providerID, *lead.Category)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		if !offers {
			return transport.LeadResponse{}, apperr.Forbidden("no service in this lead's category")
		}
	}

	charged := 0.0
	if lead.Chargeable() {
		if err := s.fees.ChargeLeadFee(ctx, providerID, *lead.Price); err != nil {
			return transport.LeadResponse{}, err
		}
		charged = *lead.Price
	}

	result, err := s.repo.Claim(ctx, leadID, providerID)
	if err != nil {
		if charged > 0 {
			if refundErr := s.fees.RefundLeadFee(ctx, providerID, charged); refundErr != nil {
				s.log.Error("lead fee refund failed", "leadId", leadID, "providerId", providerID, "error", refundErr)
			}
		}
		return transport.LeadResponse{}, err
	}

	if charged > 0 {
		if err := s.repo.MarkPaid(ctx, leadID); err != nil {
			s.log.Error("failed to mark lead paid", "leadId", leadID, "error", err)
		}
		result.Lead.Paid = true
	}

	if s.reply != nil {
		if err := s.reply.WriteReply(ctx, providerID, result.Lead.CustomerID, sanitize.Text(req.Content)); err != nil {
			s.log.Error("failed to write lead reply", "leadId", leadID, "error", err)
		}
	}

	s.publishClaimed(ctx, result, providerID)
	s.log.Info("lead claimed", "leadId", leadID, "providerId", providerID, "fromStatus", string(result.FromStatus))

	return toResponse(result.Lead), nil
}

// ClaimOpenLeads claims every open direct lead the customer has addressed to
// the provider. Called when the provider sends an ordinary reply; the reply
// itself is already in the message log, so none is written here.
func (s *Service) ClaimOpenLeads(ctx context.Context, customerID, providerID uuid.UUID) error {
	results, err := s.repo.ClaimOpenDirect(ctx, customerID, providerID)
	if err != nil {
		return err
	}

	for _, result := range results {
		s.publishClaimed(ctx, result, providerID)
	}

	if len(results) > 0 {
		s.log.Info("direct leads auto-claimed", "count", len(results), "providerId", providerID)
	}
	return nil
}

// SweepExpiredLeads reclassifies direct leads older than the exclusivity
// window. Safe to run concurrently; the repository predicate is idempotent.
func (s *Service) SweepExpiredLeads(ctx context.Context) (int64, error) {
	start := s.now()
	cutoff := start.Add(-s.cfg.GetLeadExclusivityWindow())

	expired, err := s.repo.SweepExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.log.SweepCompleted(expired, float64(time.Since(start).Milliseconds()))
	return expired, nil
}

// Inbox returns direct and won leads addressed to the provider.
func (s *Service) Inbox(ctx context.Context, providerID uuid.UUID) (transport.LeadListResponse, error) {
	leads, err := s.repo.ListForProvider(ctx, providerID)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	return toListResponse(leads), nil
}

// Opportunities returns open leads in the provider's categories.
func (s *Service) Opportunities(ctx context.Context, providerID uuid.UUID) (transport.LeadListResponse, error) {
	leads, err := s.repo.ListOpportunities(ctx, providerID)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	return toListResponse(leads), nil
}

// Get returns a single lead, enforcing visibility rules.
func (s *Service) Get(ctx context.Context, userID, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if lead.CustomerID != userID && !lead.VisibleTo(userID) {
		return transport.LeadResponse{}, apperr.NotFound(leadNotFoundMessage)
	}
	return toResponse(lead), nil
}

const leadNotFoundMessage = "lead not found"

func (s *Service) publishClaimed(ctx context.Context, result repository.ClaimResult, providerID uuid.UUID) {
	s.bus.Publish(ctx, events.LeadClaimed{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     result.Lead.ID,
		CustomerID: result.Lead.CustomerID,
		ProviderID: providerID,
		FromStatus: string(result.FromStatus),
	})
}

// leadPrice derives the opportunity fee from the attached service's price.
// Leads without a service carry no fee.
func (s *Service) leadPrice(ctx context.Context, serviceID *uuid.UUID) (*float64, error) {
	if serviceID == nil || s.pricer == nil {
		return nil, nil
	}

	base, err := s.pricer.ServicePrice(ctx, *serviceID)
	if err != nil {
		return nil, err
	}

	fee := math.Round(base*leadFeeRate*100) / 100
	if fee <= 0 {
		return nil, nil
	}
	return &fee, nil
}

func toResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:           lead.ID,
		CustomerID:   lead.CustomerID,
		ProviderID:   lead.ProviderID,
		ServiceID:    lead.ServiceID,
		ServiceTitle: lead.ServiceTitle,
		Category:     lead.Category,
		Content:      lead.Content,
		Status:       string(lead.Status),
		Price:        lead.Price,
		Paid:         lead.Paid,
		RespondedBy:  lead.RespondedBy,
		RespondedAt:  lead.RespondedAt,
		CreatedAt:    lead.CreatedAt,
	}
}

func toListResponse(leads []domain.Lead) transport.LeadListResponse {
	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toResponse(lead)
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}
}
