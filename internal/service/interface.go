package service

import (
	"context"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/dto"
)

// ChatServices processes one inbound conversational turn against the
// session's current stage and returns the ordered reply sequence.
type ChatServices interface {
	HandleTurn(ctx context.Context, req dto.ChatRequest) (*domain.ChatResult, error)
}

// SalesServices derives product offers from a customer's pre-approved limit.
type SalesServices interface {
	ListOffers(ctx context.Context, customerID string) ([]domain.Offer, error)
	OffersFor(customer *domain.Customer) []domain.Offer
}

// CrmServices exposes the customer master profile.
type CrmServices interface {
	GetProfile(ctx context.Context, customerID string) (*domain.Customer, error)
}

// UnderwritingServices evaluates a loan request into a tagged decision. The
// evaluation is a pure function of its inputs.
type UnderwritingServices interface {
	Evaluate(ctx context.Context, customer *domain.Customer, requestedAmount int64, tenureMonths int, creditScore int, hasDocument bool) domain.Decision
}

// VerificationServices checks a customer-provided identity token against the
// master record.
type VerificationServices interface {
	VerifyIdentity(customer *domain.Customer, providedPhone string) bool
}
