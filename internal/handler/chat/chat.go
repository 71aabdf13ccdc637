package chathandler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/dto"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/internal/service"
	"github.com/creditmitra/loanflow/pkg/common"
)

type ChatHandler struct {
	chatService        service.ChatServices
	uploadRepository   repository.UploadRepository
	sanctionRepository repository.SanctionRepository
	validate           *validator.Validate
	meter              metric.Meter
	tracer             trace.Tracer
	log                *zap.Logger
	requestCount       metric.Int64Counter
	requestDuration    metric.Float64Histogram
	errorCount         metric.Int64Counter
}

func NewChatHandler(
	chatService service.ChatServices,
	uploadRepository repository.UploadRepository,
	sanctionRepository repository.SanctionRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *ChatHandler {
	requestCount, err := meter.Int64Counter(
		"api.request.count",
		metric.WithDescription("Number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request count metric", zap.Error(err))
	}

	requestDuration, err := meter.Float64Histogram(
		"api.request.duration",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request duration metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"api.error.count",
		metric.WithDescription("Number of API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	return &ChatHandler{
		chatService:        chatService,
		uploadRepository:   uploadRepository,
		sanctionRepository: sanctionRepository,
		validate:           validator.New(validator.WithRequiredStructEnabled()),
		meter:              meter,
		tracer:             tracer,
		log:                log,
		requestCount:       requestCount,
		requestDuration:    requestDuration,
		errorCount:         errorCount,
	}
}

// recordError helper function to record errors with observability
func (h *ChatHandler) recordError(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, err error, statusCode int, errorType, message string, fields ...zap.Field) error {
	h.errorCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.String("error_type", errorType),
		attribute.Int("status_code", statusCode),
	))

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.String("error.type", errorType),
		attribute.String("error.message", err.Error()),
		attribute.Int("http.status_code", statusCode),
	)
	span.RecordError(err)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.String("error_type", errorType),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Error(message, logFields...)

	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

// recordSuccess helper function to record successful responses with observability
func (h *ChatHandler) recordSuccess(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, statusCode int, responseData interface{}, fields ...zap.Field) error {
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Float64("request.duration_ms", duration),
	)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Info("Request completed successfully", logFields...)

	return c.Status(statusCode).JSON(responseData)
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.Chat")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.log.Debug("Received chat request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("client_ip", c.IP()),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.String("chat.session_id", req.SessionID),
		attribute.String("chat.customer_id", req.CustomerID),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := h.chatService.HandleTurn(serviceCtx, req)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, dto.ChatResultToResponse(result),
		zap.String("session_id", req.SessionID),
		zap.String("customer_id", req.CustomerID),
		zap.Int("replies", len(result.Replies)),
	)
}

func (h *ChatHandler) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.Upload")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "missing_file", "Multipart field 'file' is required", zap.Error(err))
	}

	span.SetAttributes(
		attribute.String("upload.filename", fileHeader.Filename),
		attribute.Int64("upload.size_bytes", fileHeader.Size),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	fileID, filename, err := h.uploadRepository.Store(serviceCtx, fileHeader)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "upload_error", "Failed to store uploaded file", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK,
		dto.UploadResponse{FileID: fileID, Filename: filename},
		zap.String("file_id", fileID),
		zap.String("filename", filename),
	)
}

func (h *ChatHandler) DownloadSanction(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.DownloadSanction")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	filename := c.Params("filename")
	span.SetAttributes(attribute.String("sanction.filename", filename))

	path, err := h.sanctionRepository.Resolve(filename)
	if err != nil {
		if errors.Is(err, common.ErrFileNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "file_not_found", "Sanction letter not found", zap.String("filename", filename))
		}

		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "resolve_error", "Failed to resolve sanction letter", zap.Error(err))
	}

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", fiber.StatusOK),
	))

	span.SetAttributes(attribute.Int("http.status_code", fiber.StatusOK))

	h.log.Info("Serving sanction letter",
		zap.String("filename", filename),
		zap.Float64("duration_ms", duration),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	return c.SendFile(path)
}
