package crmsrv

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/internal/service"
)

type crmService struct {
	customerRepository repository.CustomerRepository

	meter             metric.Meter
	tracer            trace.Tracer
	log               *zap.Logger
	profilesRetrieved metric.Int64Counter
}

// GetProfile implements service.CrmServices.
func (c *crmService) GetProfile(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := c.tracer.Start(ctx, "service.GetProfile")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("service", "crm"),
	)

	customer, err := c.customerRepository.FindByID(ctx, customerID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to load customer profile")
		span.RecordError(err)
		return nil, err
	}

	c.profilesRetrieved.Add(ctx, 1,
		metric.WithAttributes(attribute.String("service", "crm")),
	)

	span.SetStatus(codes.Ok, "")
	return customer, nil
}

func NewCrmService(
	customerRepository repository.CustomerRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.CrmServices {
	profilesRetrieved, err := meter.Int64Counter(
		"crm.profiles.retrieved",
		metric.WithDescription("Number of customer profiles retrieved"),
		metric.WithUnit("{profile}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create profiles retrieved metric", zap.Error(err))
	}

	return &crmService{
		customerRepository: customerRepository,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		profilesRetrieved:  profilesRetrieved,
	}
}
