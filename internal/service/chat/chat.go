package chatsrv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/dto"
	"github.com/creditmitra/loanflow/internal/intent"
	"github.com/creditmitra/loanflow/internal/parse"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/internal/service"
	"github.com/creditmitra/loanflow/pkg/common"
)

type chatService struct {
	customerRepository repository.CustomerRepository
	sessionStore       repository.SessionStore
	uploadRepository   repository.UploadRepository
	sanctionRepository repository.SanctionRepository

	salesService        service.SalesServices
	verificationService service.VerificationServices
	underwritingService service.UnderwritingServices
	classifier          *intent.Classifier

	// Per-session mutual exclusion so the transition table is applied
	// atomically even when the same session identifier arrives on
	// concurrent requests.
	sessionLocks sync.Map // sessionID -> *sync.Mutex

	meter            metric.Meter
	tracer           trace.Tracer
	log              *zap.Logger
	turnsProcessed   metric.Int64Counter
	turnDuration     metric.Float64Histogram
	stageTransitions metric.Int64Counter
	sanctionsIssued  metric.Int64Counter
	unknownCustomers metric.Int64Counter
}

// HandleTurn implements service.ChatServices. One inbound message is
// interpreted against the session's current stage and answered with an
// ordered reply sequence; the turn runs synchronously to completion under
// the session's lock.
func (s *chatService) HandleTurn(ctx context.Context, req dto.ChatRequest) (*domain.ChatResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.HandleChatTurn")
	defer span.End()

	start := time.Now()

	span.SetAttributes(
		attribute.String("chat.session_id", req.SessionID),
		attribute.String("chat.customer_id", req.CustomerID),
	)

	s.turnsProcessed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("service", "chat")),
	)

	// Unknown customer short-circuits before any session lookup; no session
	// state is created or mutated.
	customer, err := s.customerRepository.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, common.ErrCustomerNotFound) {
			s.unknownCustomers.Add(ctx, 1)
			span.SetStatus(codes.Ok, "Unknown customer")

			return &domain.ChatResult{Replies: []domain.Reply{{
				Role: domain.RoleSystem,
				Text: fmt.Sprintf("Customer ID '%s' not found. Please check and try again.", req.CustomerID),
			}}}, nil
		}

		span.SetStatus(codes.Error, "Customer lookup failed")
		span.RecordError(err)
		return nil, err
	}

	unlock := s.lockSession(req.SessionID)
	defer unlock()

	session, err := s.sessionStore.GetOrCreate(ctx, req.SessionID, customer.ID)
	if err != nil {
		span.SetStatus(codes.Error, "Session lookup failed")
		span.RecordError(err)
		return nil, err
	}

	// The session's customer binding is invariant after first assignment.
	if session.CustomerID != customer.ID {
		span.SetStatus(codes.Ok, "Session bound to another customer")

		return &domain.ChatResult{Replies: []domain.Reply{{
			Role: domain.RoleSystem,
			Text: "This session belongs to a different customer. Please start a new session.",
		}}}, nil
	}

	fromStage := session.Stage
	result := s.processTurn(ctx, session, customer, req)

	if session.Stage != fromStage {
		s.stageTransitions.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("stage.from", string(fromStage)),
				attribute.String("stage.to", string(session.Stage)),
			),
		)
	}

	if err := s.sessionStore.Save(ctx, session); err != nil {
		span.SetStatus(codes.Error, "Session save failed")
		span.RecordError(err)
		return nil, err
	}

	duration := float64(time.Since(start).Milliseconds())
	s.turnDuration.Record(ctx, duration,
		metric.WithAttributes(attribute.String("service", "chat")),
	)

	s.log.Debug("Chat turn processed",
		zap.String("session_id", session.ID),
		zap.String("customer_id", customer.ID),
		zap.String("stage_from", string(fromStage)),
		zap.String("stage_to", string(session.Stage)),
		zap.Int("replies", len(result.Replies)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetAttributes(attribute.String("chat.stage", string(session.Stage)))
	span.SetStatus(codes.Ok, "")

	return result, nil
}

// processTurn applies the transition table. It mutates the session in place;
// the caller persists it and holds the session lock.
func (s *chatService) processTurn(
	ctx context.Context,
	session *domain.Session,
	customer *domain.Customer,
	req dto.ChatRequest,
) *domain.ChatResult {
	text := strings.TrimSpace(req.Message)

	// Cross-stage intents are checked before any stage logic.
	switch s.classifier.Classify(text) {
	case intent.Decline:
		// CONSENT_PENDING decline also discards the stashed approval.
		session.PendingApproval = nil
		session.Stage = domain.StageClosed

		return replyOf(domain.RoleMaster,
			"No problem. Thank you for your time; feel free to reach out whenever you need a loan. Goodbye!")

	case intent.Offerings:
		// Informational; the stage is left unchanged.
		return replyOf(domain.RoleSales,
			"We offer instant personal loans: up to your pre-approved limit at the base rate with no paperwork, "+
				"and up to twice that limit at a slightly higher rate with salary verification.")

	case intent.Affirmative:
		if session.Stage == domain.StageConsentPending {
			return s.confirmPendingApproval(ctx, session, customer)
		}
		if session.Stage == domain.StageApproved {
			// Consent resubmitted after the letter was already issued.
			return replyOf(domain.RoleMaster,
				"Your loan has already been processed. There is no pending approval on this session.")
		}
		// Outside consent an affirmative is just text for the stage below.
	}

	switch session.Stage {
	case domain.StageInit:
		return s.greet(session, customer)

	case domain.StageKycPending:
		return s.verifyPhone(session, customer, text)

	case domain.StageConsentPending:
		// Anything that is neither consent nor a question closes politely.
		session.PendingApproval = nil
		session.Stage = domain.StageClosed

		return replyOf(domain.RoleMaster,
			"Understood. I have cancelled this application. Thank you for considering us!")

	case domain.StageKycVerified, domain.StageUnderwriting:
		return s.underwrite(ctx, session, customer, text, req.FileID)

	default: // APPROVED, CLOSED
		return replyOf(domain.RoleMaster,
			"Please complete identity verification before we can process loan requests. "+
				"Start a new session to apply again.")
	}
}

func (s *chatService) greet(session *domain.Session, customer *domain.Customer) *domain.ChatResult {
	replies := []domain.Reply{{
		Role: domain.RoleMaster,
		Text: fmt.Sprintf("Hi %s 👋 You're pre-approved for a personal loan up to ₹%s.",
			customer.Name, common.FormatCommaInt(customer.PreApprovedLimit)),
	}}

	for _, offer := range s.salesService.OffersFor(customer) {
		replies = append(replies, domain.Reply{
			Role: domain.RoleSales,
			Text: fmt.Sprintf("%s — up to ₹%s at %s%% p.a.",
				offer.ProductID, common.FormatCommaInt(offer.MaxLimit), offer.RatePercent.String()),
		})
	}

	replies = append(replies, domain.Reply{
		Role: domain.RoleMaster,
		Text: "To get started, please share your registered phone number so I can verify your identity.",
	})

	session.Stage = domain.StageKycPending

	return &domain.ChatResult{Replies: replies}
}

func (s *chatService) verifyPhone(session *domain.Session, customer *domain.Customer, text string) *domain.ChatResult {
	if s.verificationService.VerifyIdentity(customer, text) {
		session.Stage = domain.StageKycVerified

		return &domain.ChatResult{Replies: []domain.Reply{
			{Role: domain.RoleVerification, Text: "✅ KYC verified successfully."},
			{Role: domain.RoleMaster, Text: "Tell me the loan amount and tenure you prefer (e.g., ₹150000 for 24 months)."},
		}}
	}

	return replyOf(domain.RoleVerification,
		"❌ That doesn't match the phone number on record. Please re-enter your registered phone number.")
}

func (s *chatService) underwrite(
	ctx context.Context,
	session *domain.Session,
	customer *domain.Customer,
	text string,
	fileID string,
) *domain.ChatResult {
	amount, tenureMonths := parse.AmountAndTenure(text)

	if amount == nil || tenureMonths == nil {
		return replyOf(domain.RoleMaster,
			fmt.Sprintf("Hi %s, I can help you get an instant personal loan. "+
				"Please tell me the amount and tenure (e.g., ₹150000 for 24 months).", customer.Name))
	}

	// The digit-only pattern cannot produce a non-positive amount, but the
	// transition table still validates it.
	if *amount <= 0 {
		return replyOf(domain.RoleMaster, "Please enter a valid amount greater than zero.")
	}

	session.Stage = domain.StageUnderwriting

	creditScore, err := s.customerRepository.GetCreditScore(ctx, customer.ID)
	if err != nil {
		s.log.Error("Credit score lookup failed",
			zap.String("customer_id", customer.ID),
			zap.Error(err),
		)
		creditScore = 0
	}

	hasDocument := fileID != "" && s.uploadRepository.Exists(ctx, fileID)

	decision := s.underwritingService.Evaluate(ctx, customer, *amount, *tenureMonths, creditScore, hasDocument)

	switch decision.Status {
	case domain.DecisionReject:
		session.Stage = domain.StageClosed
		return replyOf(domain.RoleUnderwriting, decision.Reason)

	case domain.DecisionRequireDocument:
		// Stay in UNDERWRITING and re-prompt for the upload.
		return &domain.ChatResult{Replies: []domain.Reply{
			{Role: domain.RoleUnderwriting, Text: decision.Reason},
			{Role: domain.RoleMaster, Text: "Upload your salary slip using the upload button, then resend your request."},
		}}

	default: // APPROVE
		session.PendingApproval = &domain.PendingApproval{
			Amount:       decision.ApprovedAmount,
			TenureMonths: *tenureMonths,
			Rate:         decision.Rate,
			EMI:          decision.EMI,
		}
		session.Stage = domain.StageConsentPending

		return &domain.ChatResult{Replies: []domain.Reply{
			{
				Role: domain.RoleUnderwriting,
				Text: fmt.Sprintf("You're eligible! ₹%s at %s%% p.a. over %d months — EMI ₹%s.",
					common.FormatCommaInt(decision.ApprovedAmount),
					decision.Rate.String(),
					*tenureMonths,
					common.FormatComma2(decision.EMI)),
			},
			{
				Role: domain.RoleMaster,
				Text: "Shall I proceed and generate your sanction letter? Reply 'yes' to confirm.",
			},
		}}
	}
}

func (s *chatService) confirmPendingApproval(
	ctx context.Context,
	session *domain.Session,
	customer *domain.Customer,
) *domain.ChatResult {
	pending := session.PendingApproval
	if pending == nil {
		// Consent resubmitted after the approval was already processed.
		s.log.Warn("Consent received with no pending approval",
			zap.String("session_id", session.ID),
		)

		return replyOf(domain.RoleMaster,
			"There is no pending approval on this session. Your loan has already been processed.")
	}

	artifactRef, err := s.sanctionRepository.Generate(
		ctx, customer, pending.Amount, pending.TenureMonths, pending.Rate, pending.EMI)
	if err != nil {
		s.log.Error("Sanction letter generation failed",
			zap.String("session_id", session.ID),
			zap.String("customer_id", customer.ID),
			zap.Error(err),
		)

		// The approval stays pending so the customer can retry consent.
		return replyOf(domain.RoleSystem,
			"We could not generate your sanction letter right now. Please try again in a moment.")
	}

	sanctionURL := "/api/v1/sanction/" + artifactRef

	replies := []domain.Reply{
		{
			Role: domain.RoleUnderwriting,
			Text: fmt.Sprintf("✅ Loan approved for ₹%s at %s%% p.a.\nTenure: %d months\nEMI: ₹%s",
				common.FormatCommaInt(pending.Amount),
				pending.Rate.String(),
				pending.TenureMonths,
				common.FormatComma2(pending.EMI)),
		},
		{
			Role: domain.RoleSanction,
			Text: "📄 Sanction letter generated successfully.",
			Meta: map[string]string{"link": sanctionURL},
		},
	}

	session.PendingApproval = nil
	session.Stage = domain.StageApproved

	s.sanctionsIssued.Add(ctx, 1,
		metric.WithAttributes(attribute.String("service", "chat")),
	)

	return &domain.ChatResult{Replies: replies, SanctionURL: sanctionURL}
}

func (s *chatService) lockSession(sessionID string) func() {
	value, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func replyOf(role domain.ReplyRole, text string) *domain.ChatResult {
	return &domain.ChatResult{Replies: []domain.Reply{{Role: role, Text: text}}}
}

func NewChatService(
	customerRepository repository.CustomerRepository,
	sessionStore repository.SessionStore,
	uploadRepository repository.UploadRepository,
	sanctionRepository repository.SanctionRepository,
	salesService service.SalesServices,
	verificationService service.VerificationServices,
	underwritingService service.UnderwritingServices,
	classifier *intent.Classifier,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.ChatServices {
	turnsProcessed, err := meter.Int64Counter(
		"chat.turns.count",
		metric.WithDescription("Number of chat turns processed"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create turns count metric", zap.Error(err))
	}

	turnDuration, err := meter.Float64Histogram(
		"chat.turn.duration",
		metric.WithDescription("Duration of chat turn processing"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create turn duration metric", zap.Error(err))
	}

	stageTransitions, err := meter.Int64Counter(
		"chat.stage.transitions",
		metric.WithDescription("Number of session stage transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create stage transitions metric", zap.Error(err))
	}

	sanctionsIssued, err := meter.Int64Counter(
		"chat.sanctions.issued",
		metric.WithDescription("Number of sanction letters issued"),
		metric.WithUnit("{letter}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create sanctions issued metric", zap.Error(err))
	}

	unknownCustomers, err := meter.Int64Counter(
		"chat.unknown_customers.count",
		metric.WithDescription("Number of turns for unknown customer identifiers"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create unknown customers metric", zap.Error(err))
	}

	return &chatService{
		customerRepository:  customerRepository,
		sessionStore:        sessionStore,
		uploadRepository:    uploadRepository,
		sanctionRepository:  sanctionRepository,
		salesService:        salesService,
		verificationService: verificationService,
		underwritingService: underwritingService,
		classifier:          classifier,
		meter:               meter,
		tracer:              tracer,
		log:                 log,
		turnsProcessed:      turnsProcessed,
		turnDuration:        turnDuration,
		stageTransitions:    stageTransitions,
		sanctionsIssued:     sanctionsIssued,
		unknownCustomers:    unknownCustomers,
	}
}
