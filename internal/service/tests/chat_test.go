package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/dto"
	"github.com/creditmitra/loanflow/internal/intent"
	"github.com/creditmitra/loanflow/internal/repository"
	sessionrepo "github.com/creditmitra/loanflow/internal/repository/session"
	"github.com/creditmitra/loanflow/internal/service"
	chatsrv "github.com/creditmitra/loanflow/internal/service/chat"
	salessrv "github.com/creditmitra/loanflow/internal/service/sales"
	underwritingsrv "github.com/creditmitra/loanflow/internal/service/underwriting"
	verificationsrv "github.com/creditmitra/loanflow/internal/service/verification"
)

type ChatServiceTestSuite struct {
	suite.Suite
	ctx context.Context

	chatService  service.ChatServices
	customerRepo *mockCustomerRepository
	sessionStore repository.SessionStore
	uploadRepo   *mockUploadRepository
	sanctionRepo *mockSanctionRepository
}

func (suite *ChatServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()

	salary := int64(85000)
	suite.customerRepo = &mockCustomerRepository{
		Customers: map[string]*domain.Customer{
			"CUST001": {
				ID:               "CUST001",
				Name:             "Rohan Mehta",
				Phone:            "+91-9876543210",
				Address:          "12 MG Road, Pune",
				PreApprovedLimit: 100000,
				CreditScore:      750,
				SalaryInfo:       &domain.SalaryInfo{MonthlySalary: salary},
			},
			"CUST002": {
				ID:               "CUST002",
				Name:             "Priya Sharma",
				Phone:            "+91-9123456780",
				PreApprovedLimit: 200000,
				CreditScore:      690,
			},
		},
	}

	suite.sessionStore = sessionrepo.NewMemoryStore(0)
	suite.uploadRepo = &mockUploadRepository{Files: map[string]bool{"file-1": true}}
	suite.sanctionRepo = &mockSanctionRepository{}

	log := zap.NewNop()
	meter := noop_metric.NewMeterProvider().Meter("test-chat-meter")
	tracer := noop_trace.NewTracerProvider().Tracer("test-chat-tracer")

	rules := defaultRules()

	salesService := salessrv.NewSalesService(
		suite.customerRepo,
		rules.RateWithinLimit,
		rules.RateAboveLimit,
		rules.LimitMultiplier,
		meter, tracer, log,
	)
	underwritingService := underwritingsrv.NewUnderwritingService(rules, meter, tracer, log)

	suite.chatService = chatsrv.NewChatService(
		suite.customerRepo,
		suite.sessionStore,
		suite.uploadRepo,
		suite.sanctionRepo,
		salesService,
		verificationsrv.NewVerificationService(),
		underwritingService,
		intent.NewClassifier(nil),
		meter, tracer, log,
	)
}

func (suite *ChatServiceTestSuite) turn(sessionID, customerID, message, fileID string) *domain.ChatResult {
	result, err := suite.chatService.HandleTurn(suite.ctx, dto.ChatRequest{
		SessionID:  sessionID,
		CustomerID: customerID,
		Message:    message,
		FileID:     fileID,
	})
	suite.Require().NoError(err)
	suite.Require().NotEmpty(result.Replies)
	return result
}

func (suite *ChatServiceTestSuite) stage(sessionID string) domain.Stage {
	session, err := suite.sessionStore.Get(suite.ctx, sessionID)
	suite.Require().NoError(err)
	return session.Stage
}

func (suite *ChatServiceTestSuite) completeKyc(sessionID, customerID, phone string) {
	suite.turn(sessionID, customerID, "", "")
	suite.Require().Equal(domain.StageKycPending, suite.stage(sessionID))
	suite.turn(sessionID, customerID, phone, "")
	suite.Require().Equal(domain.StageKycVerified, suite.stage(sessionID))
}

func (suite *ChatServiceTestSuite) TestUnknownCustomerShortCircuits() {
	result := suite.turn("sess-1", "NOPE", "hello", "")

	suite.Equal(domain.RoleSystem, result.Replies[0].Role)
	suite.Contains(result.Replies[0].Text, "not found")

	// No session was created for the turn.
	_, err := suite.sessionStore.Get(suite.ctx, "sess-1")
	suite.Error(err)
}

func (suite *ChatServiceTestSuite) TestInitGreetsAndMovesToKycPending() {
	result := suite.turn("sess-1", "CUST001", "", "")

	suite.Equal(domain.StageKycPending, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "Rohan Mehta")
	suite.Contains(result.Replies[0].Text, "100,000")

	// Greeting, two sales offers, phone prompt.
	suite.Len(result.Replies, 4)
	suite.Equal(domain.RoleSales, result.Replies[1].Role)
	suite.Equal(domain.RoleSales, result.Replies[2].Role)
}

func (suite *ChatServiceTestSuite) TestKycMismatchStaysPending() {
	suite.turn("sess-1", "CUST001", "", "")

	result := suite.turn("sess-1", "CUST001", "9999999999", "")

	suite.Equal(domain.StageKycPending, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "re-enter")
}

func (suite *ChatServiceTestSuite) TestUnderwritingBlockedBeforeKyc() {
	suite.turn("sess-1", "CUST001", "", "")

	// A loan request while still KYC_PENDING is treated as a failed phone
	// attempt, never underwritten.
	suite.turn("sess-1", "CUST001", "₹90000 for 12 months", "")
	suite.Equal(domain.StageKycPending, suite.stage("sess-1"))
	suite.Zero(suite.sanctionRepo.GenerateCount)
}

func (suite *ChatServiceTestSuite) TestEndToEndApprovalFlow() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")

	result := suite.turn("sess-1", "CUST001", "₹90000 for 12 months", "")

	suite.Equal(domain.StageConsentPending, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "13.5")
	suite.Contains(result.Replies[0].Text, "8,059.68")

	session, err := suite.sessionStore.Get(suite.ctx, "sess-1")
	suite.Require().NoError(err)
	suite.Require().NotNil(session.PendingApproval)
	suite.Equal(int64(90000), session.PendingApproval.Amount)
	suite.Equal(12, session.PendingApproval.TenureMonths)
	suite.True(session.PendingApproval.EMI.Equal(decimal.RequireFromString("8059.68")))

	consent := suite.turn("sess-1", "CUST001", "yes", "")

	suite.Equal(domain.StageApproved, suite.stage("sess-1"))
	suite.Equal(1, suite.sanctionRepo.GenerateCount)
	suite.NotEmpty(consent.SanctionURL)
	suite.Equal(domain.RoleSanction, consent.Replies[1].Role)
	suite.Equal(consent.SanctionURL, consent.Replies[1].Meta["link"])

	session, err = suite.sessionStore.Get(suite.ctx, "sess-1")
	suite.Require().NoError(err)
	suite.Nil(session.PendingApproval)
}

func (suite *ChatServiceTestSuite) TestConsentIdempotence() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")
	suite.turn("sess-1", "CUST001", "90000 for 12 months", "")
	suite.turn("sess-1", "CUST001", "yes", "")
	suite.Require().Equal(1, suite.sanctionRepo.GenerateCount)

	// Resubmitting consent after approval must not issue a second letter.
	result := suite.turn("sess-1", "CUST001", "yes", "")

	suite.Equal(1, suite.sanctionRepo.GenerateCount)
	suite.Empty(result.SanctionURL)
	suite.Contains(result.Replies[0].Text, "already been processed")
	suite.Equal(domain.StageApproved, suite.stage("sess-1"))
}

func (suite *ChatServiceTestSuite) TestConsentDeclinedCloses() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")
	suite.turn("sess-1", "CUST001", "90000 for 12 months", "")

	suite.turn("sess-1", "CUST001", "no", "")

	suite.Equal(domain.StageClosed, suite.stage("sess-1"))
	suite.Zero(suite.sanctionRepo.GenerateCount)

	session, err := suite.sessionStore.Get(suite.ctx, "sess-1")
	suite.Require().NoError(err)
	suite.Nil(session.PendingApproval)
}

func (suite *ChatServiceTestSuite) TestConsentNonAffirmativeCloses() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")
	suite.turn("sess-1", "CUST001", "90000 for 12 months", "")

	result := suite.turn("sess-1", "CUST001", "maybe later", "")

	suite.Equal(domain.StageClosed, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "cancelled")
}

func (suite *ChatServiceTestSuite) TestDeclineFromAnyStageCloses() {
	suite.turn("sess-1", "CUST001", "", "")

	suite.turn("sess-1", "CUST001", "not interested", "")

	suite.Equal(domain.StageClosed, suite.stage("sess-1"))
}

func (suite *ChatServiceTestSuite) TestOfferingsQuestionKeepsStage() {
	suite.turn("sess-1", "CUST001", "", "")

	result := suite.turn("sess-1", "CUST001", "what are your offerings?", "")

	suite.Equal(domain.StageKycPending, suite.stage("sess-1"))
	suite.Equal(domain.RoleSales, result.Replies[0].Role)
}

func (suite *ChatServiceTestSuite) TestLowCreditScoreRejectsAndCloses() {
	suite.completeKyc("sess-1", "CUST002", "+91-9123456780")

	result := suite.turn("sess-1", "CUST002", "50000 for 12 months", "")

	suite.Equal(domain.StageClosed, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "credit score 690")
}

func (suite *ChatServiceTestSuite) TestDocumentRequiredThenApproved() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")

	// Above the pre-approved limit without an upload.
	result := suite.turn("sess-1", "CUST001", "150000 for 24 months", "")
	suite.Equal(domain.StageUnderwriting, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "salary slip")

	// Resend with the uploaded document attached.
	result = suite.turn("sess-1", "CUST001", "150000 for 24 months", "file-1")
	suite.Equal(domain.StageConsentPending, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "14.5")
}

func (suite *ChatServiceTestSuite) TestUnparseableLoanRequestReprompts() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")

	result := suite.turn("sess-1", "CUST001", "i want a loan", "")

	suite.Equal(domain.StageKycVerified, suite.stage("sess-1"))
	suite.Contains(result.Replies[0].Text, "amount and tenure")
}

func (suite *ChatServiceTestSuite) TestSessionBoundToFirstCustomer() {
	suite.turn("sess-1", "CUST001", "", "")

	result := suite.turn("sess-1", "CUST002", "hello", "")

	suite.Equal(domain.RoleSystem, result.Replies[0].Role)
	suite.Contains(result.Replies[0].Text, "different customer")
	suite.Equal(domain.StageKycPending, suite.stage("sess-1"))
}

func (suite *ChatServiceTestSuite) TestSessionsAreIsolated() {
	suite.completeKyc("sess-1", "CUST001", "+91-9876543210")
	suite.turn("sess-2", "CUST002", "", "")

	suite.Equal(domain.StageKycVerified, suite.stage("sess-1"))
	suite.Equal(domain.StageKycPending, suite.stage("sess-2"))
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}
