package salessrv

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/internal/service"
)

const (
	withinLimitProductID = "P-PL-01"
	aboveLimitProductID  = "P-PL-02"
)

type salesService struct {
	customerRepository repository.CustomerRepository

	rateWithinLimit decimal.Decimal
	rateAboveLimit  decimal.Decimal
	limitMultiplier int64

	meter             metric.Meter
	tracer            trace.Tracer
	log               *zap.Logger
	operationDuration metric.Float64Histogram
	offersGenerated   metric.Int64Counter
}

// OffersFor implements service.SalesServices. Pure function of the
// customer's pre-approved limit: one offer at the limit, one at the extended
// limit.
func (s *salesService) OffersFor(customer *domain.Customer) []domain.Offer {
	return []domain.Offer{
		{
			ProductID:   withinLimitProductID,
			MaxLimit:    customer.PreApprovedLimit,
			RatePercent: s.rateWithinLimit,
		},
		{
			ProductID:   aboveLimitProductID,
			MaxLimit:    customer.PreApprovedLimit * s.limitMultiplier,
			RatePercent: s.rateAboveLimit,
		},
	}
}

// ListOffers implements service.SalesServices.
func (s *salesService) ListOffers(ctx context.Context, customerID string) ([]domain.Offer, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListOffers")
	defer span.End()

	start := time.Now()

	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("service", "sales"),
	)

	customer, err := s.customerRepository.FindByID(ctx, customerID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to load customer for offers")
		span.RecordError(err)

		s.log.Warn("Failed to load customer for offers",
			zap.String("customer_id", customerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		return nil, err
	}

	offers := s.OffersFor(customer)

	s.offersGenerated.Add(ctx, int64(len(offers)),
		metric.WithAttributes(attribute.String("service", "sales")),
	)

	duration := float64(time.Since(start).Milliseconds())
	s.operationDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "list_offers"),
			attribute.String("service", "sales"),
		),
	)

	span.SetStatus(codes.Ok, "")
	return offers, nil
}

func NewSalesService(
	customerRepository repository.CustomerRepository,
	rateWithinLimit decimal.Decimal,
	rateAboveLimit decimal.Decimal,
	limitMultiplier int64,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.SalesServices {
	operationDuration, err := meter.Float64Histogram(
		"sales.operation.duration",
		metric.WithDescription("Duration of sales operations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create operation duration metric", zap.Error(err))
	}

	offersGenerated, err := meter.Int64Counter(
		"sales.offers.generated",
		metric.WithDescription("Number of offers generated"),
		metric.WithUnit("{offer}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create offers generated metric", zap.Error(err))
	}

	return &salesService{
		customerRepository: customerRepository,
		rateWithinLimit:    rateWithinLimit,
		rateAboveLimit:     rateAboveLimit,
		limitMultiplier:    limitMultiplier,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		operationDuration:  operationDuration,
		offersGenerated:    offersGenerated,
	}
}
