package service_test

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/shopspring/decimal"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/pkg/common"
)

type mockCustomerRepository struct {
	Customers map[string]*domain.Customer

	// Fields to capture calls
	FindByIDCalledWith string
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	m.FindByIDCalledWith = customerID

	customer, ok := m.Customers[customerID]
	if !ok {
		return nil, common.ErrCustomerNotFound
	}

	clone := *customer
	return &clone, nil
}

func (m *mockCustomerRepository) GetCreditScore(ctx context.Context, customerID string) (int, error) {
	customer, ok := m.Customers[customerID]
	if !ok {
		return 0, nil
	}
	return customer.CreditScore, nil
}

func (m *mockCustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	m.Customers[customer.ID] = customer
	return nil
}

type mockUploadRepository struct {
	Files map[string]bool
}

func (m *mockUploadRepository) Store(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	return "", "", fmt.Errorf("not used in service tests")
}

func (m *mockUploadRepository) Exists(ctx context.Context, fileID string) bool {
	return m.Files[fileID]
}

type mockSanctionRepository struct {
	GenerateCount int
	MockError     error

	GenerateCalledWithAmount int64
}

func (m *mockSanctionRepository) Generate(
	ctx context.Context,
	customer *domain.Customer,
	amount int64,
	tenureMonths int,
	rate, emi decimal.Decimal,
) (string, error) {
	if m.MockError != nil {
		return "", m.MockError
	}

	m.GenerateCount++
	m.GenerateCalledWithAmount = amount

	return fmt.Sprintf("sanction_%s_%d.txt", customer.ID, m.GenerateCount), nil
}

func (m *mockSanctionRepository) Resolve(filename string) (string, error) {
	return "", common.ErrFileNotFound
}
