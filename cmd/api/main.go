package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/Farmacia-api/docs"
	"github.com/jhoicas/Farmacia-api/internal/application/billing"
	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/documents"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/Farmacia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/retry"
	httpRouter "github.com/jhoicas/Farmacia-api/internal/interfaces/http"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar OpenTelemetry")
	}

	// Almacenamiento: PostgreSQL (producción) o memoria (desarrollo local).
	var store interface {
		ports.TxRunner
		ports.Pinger
	}
	switch cfg.App.StoreDriver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store = memory.NewStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
		store = postgres.NewTxRunner(pool)
	}

	txRunner := retry.NewRunner(store, retry.Config{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}, log.Component("retry"))

	docLog, billLog := log.Component("documents"), log.Component("billing")
	allocator := billing.NewSequenceAllocator(cfg.NCF.Width, cfg.NCF.LowThreshold, billLog)
	catalogUC := catalog.NewCatalogUseCase(txRunner, log.Component("catalog"))
	receiptUC := documents.NewReceiptUseCase(txRunner, docLog)
	saleUC := documents.NewSaleUseCase(txRunner, docLog)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, allocator, billLog)
	sequenceUC := billing.NewSequenceUseCase(txRunner, allocator, billLog)

	// PDF: representación impresa de la factura con NCF
	invoicePDFUC := billing.NewPDFUseCase(txRunner, infrapdf.NewMarotoPDFGenerator(), billing.Issuer{
		Name:    cfg.Pharmacy.Name,
		TaxID:   cfg.Pharmacy.TaxID,
		Address: cfg.Pharmacy.Address,
		Phone:   cfg.Pharmacy.Phone,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Farmacia API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:  catalogUC,
		ReceiptUC:  receiptUC,
		SaleUC:     saleUC,
		InvoiceUC:  invoiceUC,
		InvoicePDF: invoicePDFUC,
		SequenceUC: sequenceUC,
		Store:      txRunner,
		AppName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}
