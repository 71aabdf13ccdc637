package handler_test

import (
	"context"
	"mime/multipart"

	"github.com/shopspring/decimal"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/dto"
	"github.com/creditmitra/loanflow/pkg/common"
)

type MockChatService struct {
	Result      *domain.ChatResult
	MockError   error
	LastRequest dto.ChatRequest
}

func (m *MockChatService) HandleTurn(ctx context.Context, req dto.ChatRequest) (*domain.ChatResult, error) {
	m.LastRequest = req

	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Result, nil
}

type MockCrmService struct {
	Customers map[string]*domain.Customer
	MockError error
}

func (m *MockCrmService) GetProfile(ctx context.Context, customerID string) (*domain.Customer, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}

	customer, ok := m.Customers[customerID]
	if !ok {
		return nil, common.ErrCustomerNotFound
	}
	return customer, nil
}

type MockSalesService struct {
	Offers    []domain.Offer
	MockError error
}

func (m *MockSalesService) ListOffers(ctx context.Context, customerID string) ([]domain.Offer, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Offers, nil
}

func (m *MockSalesService) OffersFor(customer *domain.Customer) []domain.Offer {
	return m.Offers
}

type MockUploadRepository struct {
	FileID    string
	Filename  string
	MockError error

	StoreCount int
}

func (m *MockUploadRepository) Store(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	if m.MockError != nil {
		return "", "", m.MockError
	}

	m.StoreCount++
	if m.Filename == "" {
		return m.FileID, file.Filename, nil
	}
	return m.FileID, m.Filename, nil
}

func (m *MockUploadRepository) Exists(ctx context.Context, fileID string) bool {
	return fileID == m.FileID
}

type MockSanctionRepository struct {
	Path      string
	MockError error
}

func (m *MockSanctionRepository) Generate(
	ctx context.Context,
	customer *domain.Customer,
	amount int64,
	tenureMonths int,
	rate, emi decimal.Decimal,
) (string, error) {
	return "sanction_test.txt", nil
}

func (m *MockSanctionRepository) Resolve(filename string) (string, error) {
	if m.MockError != nil {
		return "", m.MockError
	}
	return m.Path, nil
}
