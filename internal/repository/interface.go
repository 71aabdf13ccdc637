package repository

import (
	"context"
	"mime/multipart"

	"github.com/shopspring/decimal"

	"github.com/creditmitra/loanflow/internal/domain"
)

type CustomerRepository interface {
	// FindByID returns common.ErrCustomerNotFound when no record exists.
	FindByID(ctx context.Context, customerID string) (*domain.Customer, error)
	// GetCreditScore resolves the bureau score for a customer; unknown
	// customers score zero, matching the bureau stub contract.
	GetCreditScore(ctx context.Context, customerID string) (int, error)
	Save(ctx context.Context, customer *domain.Customer) error
}

// SessionStore is a key-value conversation store with pluggable backing.
// GetOrCreate binds a fresh session to the customer at stage INIT when the
// identifier has not been seen.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetOrCreate(ctx context.Context, sessionID, customerID string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
}

// UploadRepository stores uploaded documents by opaque identifier. The core
// only ever asks about presence, never content.
type UploadRepository interface {
	Store(ctx context.Context, file *multipart.FileHeader) (fileID string, filename string, err error)
	Exists(ctx context.Context, fileID string) bool
}

// SanctionRepository renders sanction letters and resolves previously
// generated ones for download.
type SanctionRepository interface {
	Generate(ctx context.Context, customer *domain.Customer, amount int64, tenureMonths int, rate, emi decimal.Decimal) (artifactRef string, err error)
	Resolve(filename string) (path string, err error)
}
