package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mekong-market/mekong_pay/internal/account"
	"github.com/mekong-market/mekong_pay/internal/archive"
	"github.com/mekong-market/mekong_pay/internal/config"
	"github.com/mekong-market/mekong_pay/internal/ledger"
	"github.com/mekong-market/mekong_pay/internal/middleware"
	"github.com/mekong-market/mekong_pay/internal/notification"
	"github.com/mekong-market/mekong_pay/internal/provider"
	"github.com/mekong-market/mekong_pay/internal/topup"
	"github.com/mekong-market/mekong_pay/internal/wallet"
	"github.com/mekong-market/mekong_pay/internal/webhook"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends. Dev mode falls back to in-memory stand-ins so the
	// service boots without Postgres.
	var (
		walletRepo  wallet.Repository
		ledgerStore ledger.Store
		accounts    account.Repository
	)
	if d.DB != nil {
		walletRepo = wallet.NewPostgresRepository(d.DB)
		ledgerStore = ledger.NewPostgresStore(d.DB)
		accounts = account.NewPostgresRepository(d.DB)
	} else {
		memRepo := wallet.NewMemoryRepository()
		walletRepo = memRepo
		ledgerStore = ledger.NewInMemory(memRepo)
		accounts = account.NewAllowAllRepository()
	}
	walletSvc := wallet.NewService(walletRepo)

	// Payment gateway. Unconfigured in production surfaces as a coded error on
	// each deposit request; dev gets a stub so the flow stays exercisable.
	var gateway provider.PaymentProvider
	switch {
	case d.Cfg.ProviderConfigured():
		gateway = provider.NewQRPay(provider.QRPayConfig{
			Name:        d.Cfg.ProviderName,
			BaseURL:     d.Cfg.ProviderBaseURL,
			APIKey:      d.Cfg.ProviderAPIKey,
			AccountNo:   d.Cfg.ProviderAccountNo,
			AccountName: d.Cfg.ProviderAccountName,
			Timeout:     d.Cfg.ProviderTimeout,
		})
	case d.Cfg.IsDev():
		gateway = provider.StaticProvider{AccountName: d.Cfg.ProviderAccountName}
	}

	var archives archive.Store
	if d.Cfg.ArchiveBucket != "" {
		s3Store, err := archive.NewS3Store(d.Cfg.AWSRegion, d.Cfg.ArchiveBucket)
		if err != nil {
			return err
		}
		archives = s3Store
	} else if d.Cfg.IsDev() {
		archives = archive.NewMemoryStore()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)

	topupSvc := topup.NewService(accounts, walletSvc, ledgerStore, gateway, topup.Limits{
		MinAmount:           d.Cfg.TopupMinAmount,
		MaxAmount:           d.Cfg.TopupMaxAmount,
		DefaultCurrency:     d.Cfg.DefaultCurrency,
		SupportedCurrencies: d.Cfg.SupportedCurrencies,
	})
	webhookSvc := webhook.NewService(ledgerStore, archives, notifier, d.Logger)

	topupHandler := topup.NewHandler(topupSvc)
	webhookHandler := webhook.NewHandler(webhookSvc, d.Logger)
	walletHandler := wallet.NewHandler(walletSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Deposit intents are replay-protected per client key; the webhook stays
	// outside the idempotency layer because providers do not send a key and the
	// reconciler dedupes on the transaction state itself.
	if d.Cache != nil {
		api.Post("/topups", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), topupHandler.Create)
	} else {
		api.Post("/topups", topupHandler.Create)
	}
	api.Post("/webhooks/payment", webhookHandler.Receive)
	api.Get("/users/:userId/wallets/:currency", walletHandler.Balance)

	return nil
}
