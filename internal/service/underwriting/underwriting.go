package underwritingsrv

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/service"
	"github.com/creditmitra/loanflow/pkg/common"
	"github.com/creditmitra/loanflow/pkg/emi"
)

// Rules carries the underwriting constants. They are configuration, not
// literals, so a deployment can retune rates or thresholds without a code
// change.
type Rules struct {
	RateWithinLimit      decimal.Decimal
	RateAboveLimit       decimal.Decimal
	CreditScoreThreshold int
	LimitMultiplier      int64
	DefaultMonthlySalary int64
	EMIPrecision         int32
}

var half = decimal.RequireFromString("0.5")

type underwritingService struct {
	rules Rules

	meter          metric.Meter
	tracer         trace.Tracer
	log            *zap.Logger
	decisionsCount metric.Int64Counter
}

// Evaluate implements service.UnderwritingServices. The rules run in a fixed
// order and the first matching rule wins:
//
//  1. credit score below threshold: reject
//  2. amount within the pre-approved limit: approve at the base rate
//  3. amount within the extended limit: require a salary document, then
//     approve only while the EMI stays within half the monthly salary
//  4. otherwise: reject
//
// The result is a pure function of the inputs.
func (u *underwritingService) Evaluate(
	ctx context.Context,
	customer *domain.Customer,
	requestedAmount int64,
	tenureMonths int,
	creditScore int,
	hasDocument bool,
) domain.Decision {
	ctx, span := u.tracer.Start(ctx, "service.EvaluateLoan")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer.id", customer.ID),
		attribute.Int64("loan.requested_amount", requestedAmount),
		attribute.Int("loan.tenure_months", tenureMonths),
		attribute.Int("customer.credit_score", creditScore),
		attribute.Bool("loan.has_document", hasDocument),
	)

	decision := u.evaluate(customer, requestedAmount, tenureMonths, creditScore, hasDocument)

	u.decisionsCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "underwriting"),
			attribute.String("decision", string(decision.Status)),
		),
	)

	u.log.Info("Underwriting decision",
		zap.String("customer_id", customer.ID),
		zap.Int64("requested_amount", requestedAmount),
		zap.Int("tenure_months", tenureMonths),
		zap.String("decision", string(decision.Status)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetAttributes(attribute.String("loan.decision", string(decision.Status)))
	span.SetStatus(codes.Ok, "")

	return decision
}

func (u *underwritingService) evaluate(
	customer *domain.Customer,
	requestedAmount int64,
	tenureMonths int,
	creditScore int,
	hasDocument bool,
) domain.Decision {
	preApproved := customer.PreApprovedLimit
	extendedLimit := preApproved * u.rules.LimitMultiplier

	if creditScore < u.rules.CreditScoreThreshold {
		return domain.Decision{
			Status: domain.DecisionReject,
			Reason: fmt.Sprintf("Rejected: credit score %d below threshold %d.",
				creditScore, u.rules.CreditScoreThreshold),
		}
	}

	if requestedAmount <= preApproved {
		installment := emi.Compute(
			decimal.NewFromInt(requestedAmount),
			u.rules.RateWithinLimit,
			tenureMonths,
			u.rules.EMIPrecision,
		)

		return domain.Decision{
			Status:         domain.DecisionApprove,
			ApprovedAmount: requestedAmount,
			Rate:           u.rules.RateWithinLimit,
			EMI:            installment,
		}
	}

	if requestedAmount <= extendedLimit {
		if !hasDocument {
			return domain.Decision{
				Status: domain.DecisionRequireDocument,
				Reason: "Please upload salary slip for verification.",
			}
		}

		// Demo simulation: the uploaded slip is never parsed; the salary
		// comes from the master record with a configured fallback.
		monthlySalary := u.rules.DefaultMonthlySalary
		if customer.SalaryInfo != nil && customer.SalaryInfo.MonthlySalary > 0 {
			monthlySalary = customer.SalaryInfo.MonthlySalary
		}

		installment := emi.Compute(
			decimal.NewFromInt(requestedAmount),
			u.rules.RateAboveLimit,
			tenureMonths,
			u.rules.EMIPrecision,
		)
		salaryCeiling := decimal.NewFromInt(monthlySalary).Mul(half)

		if installment.LessThanOrEqual(salaryCeiling) {
			return domain.Decision{
				Status:         domain.DecisionApprove,
				ApprovedAmount: requestedAmount,
				Rate:           u.rules.RateAboveLimit,
				EMI:            installment,
			}
		}

		return domain.Decision{
			Status: domain.DecisionReject,
			Reason: fmt.Sprintf("Rejected: EMI %s exceeds 50%% of salary (%s).",
				common.FormatComma2(installment), common.FormatComma2(salaryCeiling)),
		}
	}

	return domain.Decision{
		Status: domain.DecisionReject,
		Reason: fmt.Sprintf("Rejected: requested amount %d exceeds %dx pre-approved limit (%d).",
			requestedAmount, u.rules.LimitMultiplier, extendedLimit),
	}
}

func NewUnderwritingService(
	rules Rules,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.UnderwritingServices {
	decisionsCount, err := meter.Int64Counter(
		"underwriting.decisions.count",
		metric.WithDescription("Number of underwriting decisions by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create decisions count metric", zap.Error(err))
	}

	return &underwritingService{
		rules:          rules,
		meter:          meter,
		tracer:         tracer,
		log:            log,
		decisionsCount: decisionsCount,
	}
}
