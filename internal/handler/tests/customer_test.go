package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/dto"
	customerhandler "github.com/creditmitra/loanflow/internal/handler/customer"
)

type CustomerHandlerTestSuite struct {
	suite.Suite
	app *fiber.App

	mockCrmService   *MockCrmService
	mockSalesService *MockSalesService
}

func (suite *CustomerHandlerTestSuite) SetupTest() {
	suite.mockCrmService = &MockCrmService{
		Customers: map[string]*domain.Customer{
			"CUST001": {
				ID:               "CUST001",
				Name:             "Rohan Mehta",
				Phone:            "+91-9876543210",
				Address:          "12 MG Road, Pune",
				PreApprovedLimit: 100000,
				CreditScore:      750,
			},
		},
	}
	suite.mockSalesService = &MockSalesService{
		Offers: []domain.Offer{
			{ProductID: "P-PL-01", MaxLimit: 100000, RatePercent: decimal.RequireFromString("13.5")},
			{ProductID: "P-PL-02", MaxLimit: 200000, RatePercent: decimal.RequireFromString("14.5")},
		},
	}

	log := zap.NewNop()
	tracer := noop_trace.NewTracerProvider().Tracer("test-customer-handler-tracer")
	meter := noop_metric.NewMeterProvider().Meter("test-customer-handler-meter")

	handler := customerhandler.NewCustomerHandler(
		suite.mockCrmService,
		suite.mockSalesService,
		meter, tracer, log,
	)

	app := fiber.New()
	api := app.Group("/api/v1")
	{
		api.Get("/customers/:customerId", handler.GetProfile)
		api.Get("/offers/:customerId", handler.ListOffers)
	}

	suite.app = app
}

func (suite *CustomerHandlerTestSuite) get(path string) *http.Response {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	return resp
}

func (suite *CustomerHandlerTestSuite) TestGetProfileSuccess() {
	resp := suite.get("/api/v1/customers/CUST001")
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.CustomerProfileResponse
	assert.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), "CUST001", body.ID)
	assert.Equal(suite.T(), "Rohan Mehta", body.Name)
	assert.Equal(suite.T(), int64(100000), body.PreApprovedLimit)
	assert.Equal(suite.T(), 750, body.CreditScore)
}

func (suite *CustomerHandlerTestSuite) TestGetProfileNotFound() {
	resp := suite.get("/api/v1/customers/NOPE")
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *CustomerHandlerTestSuite) TestListOffersSuccess() {
	resp := suite.get("/api/v1/offers/CUST001")
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.OffersResponse
	assert.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(suite.T(), body.Offers, 2)
	assert.Equal(suite.T(), "P-PL-01", body.Offers[0].ProductID)
	assert.InDelta(suite.T(), 13.5, body.Offers[0].RatePercent, 0.0001)
	assert.Equal(suite.T(), int64(200000), body.Offers[1].MaxLimit)
}

func (suite *CustomerHandlerTestSuite) TestListOffersServiceError() {
	suite.mockSalesService.MockError = assert.AnError

	resp := suite.get("/api/v1/offers/CUST001")
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusInternalServerError, resp.StatusCode)
}

func TestCustomerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerHandlerTestSuite))
}
