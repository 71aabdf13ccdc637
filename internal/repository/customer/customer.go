package customerrepo

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/model"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/pkg/common"
)

type customerRepository struct {
	db     *gorm.DB
	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger

	queryDuration      metric.Float64Histogram
	queryCount         metric.Int64Counter
	errorCount         metric.Int64Counter
	customersRetrieved metric.Int64Counter
}

// FindByID implements repository.CustomerRepository.
func (c *customerRepository) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := c.tracer.Start(ctx, "repository.FindCustomerByID")
	defer span.End()

	start := time.Now()

	c.log.Debug("Find customer by ID",
		zap.String("customer_id", customerID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	c.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "customers"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "customers"),
		attribute.String("customer.id", customerID),
	)

	var customer model.Customer
	err := c.db.WithContext(ctx).First(&customer, "id = ?", customerID).Error
	if err != nil {
		duration := float64(time.Since(start).Milliseconds())
		c.queryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("operation", "select"),
				attribute.String("table", "customers"),
				attribute.String("status", "error"),
			),
		)

		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Customer not found")
			return nil, common.ErrCustomerNotFound
		}

		span.SetStatus(codes.Error, "Failed to find customer")
		span.RecordError(err)

		c.log.Error("Failed to find customer by ID",
			zap.String("customer_id", customerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		c.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "select"),
				attribute.String("table", "customers"),
			),
		)

		return nil, err
	}

	duration := float64(time.Since(start).Milliseconds())
	c.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "customers"),
			attribute.String("status", "success"),
		),
	)

	c.customersRetrieved.Add(ctx, 1)
	span.SetStatus(codes.Ok, "Customer found")

	return model.CustomerToEntity(customer), nil
}

// GetCreditScore implements repository.CustomerRepository. Unknown customers
// score zero, matching the credit bureau stub behavior.
func (c *customerRepository) GetCreditScore(ctx context.Context, customerID string) (int, error) {
	ctx, span := c.tracer.Start(ctx, "repository.GetCreditScore")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "customers"),
		attribute.String("customer.id", customerID),
	)

	var customer model.Customer
	err := c.db.WithContext(ctx).Select("credit_score").First(&customer, "id = ?", customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Customer not found, zero score")
			return 0, nil
		}

		span.SetStatus(codes.Error, "Failed to read credit score")
		span.RecordError(err)

		c.log.Error("Failed to read credit score",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)

		return 0, err
	}

	span.SetStatus(codes.Ok, "")
	return customer.CreditScore, nil
}

// Save implements repository.CustomerRepository. Used by the startup seeder;
// existing rows are left untouched.
func (c *customerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	ctx, span := c.tracer.Start(ctx, "repository.SaveCustomer")
	defer span.End()

	record := model.CustomerFromEntity(customer)

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&record).Error
	if err != nil {
		span.SetStatus(codes.Error, "Failed to save customer")
		span.RecordError(err)

		c.log.Error("Failed to save customer",
			zap.String("customer_id", customer.ID),
			zap.Error(err),
		)

		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func NewCustomerRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.CustomerRepository {
	queryDuration, err := meter.Float64Histogram(
		"db.customer.query.duration",
		metric.WithDescription("Duration of customer table queries"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create query duration metric", zap.Error(err))
	}

	queryCount, err := meter.Int64Counter(
		"db.customer.query.count",
		metric.WithDescription("Number of customer table queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create query count metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"db.customer.error.count",
		metric.WithDescription("Number of customer table query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	customersRetrieved, err := meter.Int64Counter(
		"db.customer.retrieved.count",
		metric.WithDescription("Number of customer records retrieved"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create customers retrieved metric", zap.Error(err))
	}

	return &customerRepository{
		db:                 db,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		queryDuration:      queryDuration,
		queryCount:         queryCount,
		errorCount:         errorCount,
		customersRetrieved: customersRetrieved,
	}
}
