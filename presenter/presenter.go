package presenter

import (
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/creditmitra/loanflow/config"
	chathandler "github.com/creditmitra/loanflow/internal/handler/chat"
	customerhandler "github.com/creditmitra/loanflow/internal/handler/customer"
	"github.com/creditmitra/loanflow/internal/intent"
	"github.com/creditmitra/loanflow/internal/repository"
	customerrepo "github.com/creditmitra/loanflow/internal/repository/customer"
	sanctionrepo "github.com/creditmitra/loanflow/internal/repository/sanction"
	sessionrepo "github.com/creditmitra/loanflow/internal/repository/session"
	uploadrepo "github.com/creditmitra/loanflow/internal/repository/upload"
	chatsrv "github.com/creditmitra/loanflow/internal/service/chat"
	crmsrv "github.com/creditmitra/loanflow/internal/service/crm"
	salessrv "github.com/creditmitra/loanflow/internal/service/sales"
	underwritingsrv "github.com/creditmitra/loanflow/internal/service/underwriting"
	verificationsrv "github.com/creditmitra/loanflow/internal/service/verification"
	"github.com/creditmitra/loanflow/pkg/telemetry"
)

type Presenter struct {
	ChatPresenter     *chathandler.ChatHandler
	CustomerPresenter *customerhandler.CustomerHandler
}

// NewPresenter wires repositories, services and handlers. The session store
// and upload backend are chosen from configuration; redisClient and cld may
// be nil when the corresponding backend is not selected.
func NewPresenter(
	db *gorm.DB,
	redisClient *redis.Client,
	cld *cloudinary.Cloudinary,
	tel *telemetry.OpenTelemetry,
	cfg *config.Config,
) Presenter {
	// Repository
	customerRepositoryMeter := tel.MeterProvider.Meter("customer-repository-meter")
	customerRepositoryTracer := tel.TracerProvider.Tracer("customer-repository-tracer")
	customerRepository := customerrepo.NewCustomerRepository(
		db,
		customerRepositoryMeter,
		customerRepositoryTracer,
		tel.Log,
	)

	var sessionStore repository.SessionStore
	if cfg.SESSION_BACKEND == "redis" && redisClient != nil {
		sessionStore = sessionrepo.NewRedisStore(redisClient, cfg.SESSION_TTL, tel.Log)
	} else {
		sessionStore = sessionrepo.NewMemoryStore(cfg.SESSION_TTL)
	}

	var uploadRepository repository.UploadRepository
	if cfg.UPLOAD_BACKEND == "cloudinary" && cld != nil {
		uploadRepository = uploadrepo.NewCloudinaryStore(cld, tel.Log)
	} else {
		diskStore, err := uploadrepo.NewDiskStore(cfg.UPLOAD_DIR, tel.Log)
		if err != nil {
			zap.L().Fatal("Failed to initialize upload directory", zap.Error(err))
		}
		uploadRepository = diskStore
	}

	sanctionRepository, err := sanctionrepo.NewLetterStore(cfg.SANCTION_DIR, tel.Log)
	if err != nil {
		zap.L().Fatal("Failed to initialize sanction directory", zap.Error(err))
	}

	// Service
	rules := underwritingsrv.Rules{
		RateWithinLimit:      decimal.RequireFromString(cfg.RATE_WITHIN_LIMIT),
		RateAboveLimit:       decimal.RequireFromString(cfg.RATE_ABOVE_LIMIT),
		CreditScoreThreshold: cfg.CREDIT_SCORE_THRESHOLD,
		LimitMultiplier:      cfg.LIMIT_MULTIPLIER,
		DefaultMonthlySalary: cfg.DEFAULT_MONTHLY_SALARY,
		EMIPrecision:         cfg.EMI_PRECISION,
	}

	salesServiceMeter := tel.MeterProvider.Meter("sales-service-meter")
	salesServiceTracer := tel.TracerProvider.Tracer("sales-service-tracer")
	salesService := salessrv.NewSalesService(
		customerRepository,
		rules.RateWithinLimit,
		rules.RateAboveLimit,
		rules.LimitMultiplier,
		salesServiceMeter,
		salesServiceTracer,
		tel.Log,
	)

	crmServiceMeter := tel.MeterProvider.Meter("crm-service-meter")
	crmServiceTracer := tel.TracerProvider.Tracer("crm-service-tracer")
	crmService := crmsrv.NewCrmService(
		customerRepository,
		crmServiceMeter,
		crmServiceTracer,
		tel.Log,
	)

	underwritingServiceMeter := tel.MeterProvider.Meter("underwriting-service-meter")
	underwritingServiceTracer := tel.TracerProvider.Tracer("underwriting-service-tracer")
	underwritingService := underwritingsrv.NewUnderwritingService(
		rules,
		underwritingServiceMeter,
		underwritingServiceTracer,
		tel.Log,
	)

	verificationService := verificationsrv.NewVerificationService()

	chatServiceMeter := tel.MeterProvider.Meter("chat-service-meter")
	chatServiceTracer := tel.TracerProvider.Tracer("chat-service-tracer")
	chatService := chatsrv.NewChatService(
		customerRepository,
		sessionStore,
		uploadRepository,
		sanctionRepository,
		salesService,
		verificationService,
		underwritingService,
		intent.NewClassifier(nil),
		chatServiceMeter,
		chatServiceTracer,
		tel.Log,
	)

	// Handler
	chatHandlerMeter := tel.MeterProvider.Meter("chat-handler-meter")
	chatHandlerTracer := tel.TracerProvider.Tracer("chat-handler-tracer")
	chatHandler := chathandler.NewChatHandler(
		chatService,
		uploadRepository,
		sanctionRepository,
		chatHandlerMeter,
		chatHandlerTracer,
		tel.Log,
	)

	customerHandlerMeter := tel.MeterProvider.Meter("customer-handler-meter")
	customerHandlerTracer := tel.TracerProvider.Tracer("customer-handler-tracer")
	customerHandler := customerhandler.NewCustomerHandler(
		crmService,
		salesService,
		customerHandlerMeter,
		customerHandlerTracer,
		tel.Log,
	)

	return Presenter{
		ChatPresenter:     chatHandler,
		CustomerPresenter: customerHandler,
	}
}
