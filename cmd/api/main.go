package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/brightfold/portal/internal/config"
	"github.com/brightfold/portal/internal/database"
	"github.com/brightfold/portal/internal/deliverable"
	"github.com/brightfold/portal/internal/document"
	documentStore "github.com/brightfold/portal/internal/document/store"
	"github.com/brightfold/portal/internal/export"
	"github.com/brightfold/portal/internal/gateway"
	portalHttp "github.com/brightfold/portal/internal/http"
	authHandler "github.com/brightfold/portal/internal/http/auth"
	checkoutHandler "github.com/brightfold/portal/internal/http/checkout"
	documentHandler "github.com/brightfold/portal/internal/http/document"
	exportHandler "github.com/brightfold/portal/internal/http/export"
	paymentHandler "github.com/brightfold/portal/internal/http/payment"
	projectHandler "github.com/brightfold/portal/internal/http/project"
	settlementHandler "github.com/brightfold/portal/internal/http/settlement"
	webhookHandler "github.com/brightfold/portal/internal/http/webhook"
	"github.com/brightfold/portal/internal/notify"
	"github.com/brightfold/portal/internal/payment"
	paymentStore "github.com/brightfold/portal/internal/payment/store"
	"github.com/brightfold/portal/internal/project"
	projectStore "github.com/brightfold/portal/internal/project/store"
	"github.com/brightfold/portal/internal/reconcile"
	reconcileStore "github.com/brightfold/portal/internal/reconcile/store"
	"github.com/brightfold/portal/internal/session"
	sessionStore "github.com/brightfold/portal/internal/session/store"
	"github.com/brightfold/portal/internal/settlement"
	"github.com/brightfold/portal/internal/signature"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var dispatcher *notify.Dispatcher
	if cfg.Notify.WebhookURL != "" {
		dispatcher = notify.NewDispatcher(notify.NewWebhookSender(cfg.Notify.WebhookURL), cfg.Notify.Timeout)
	}

	verifier := signature.NewVerifier(cfg.Gateway.WebhookSecret)
	gatewayClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)

	var (
		sessionService    = session.NewService(sessionStore.New(db), cfg.Session.Secret, cfg.Session.TTL)
		documentService   = document.NewService(documentStore.New(db))
		paymentService    = payment.NewService(paymentStore.New(db))
		projectService    = project.NewService(projectStore.New(db))
		reconcileService  = reconcile.NewService(verifier, reconcileStore.New(db), dispatcher)
		settlementService = settlement.NewService(reconcileService)
		uploadService     = deliverable.NewService(projectService, documentService, deliverable.NewFileStore(cfg.Storage.Dir))
		exportService     = export.NewService(paymentService)
	)

	var (
		authH       = authHandler.NewHandler(sessionService)
		webhookH    = webhookHandler.NewHandler(reconcileService)
		checkoutH   = checkoutHandler.NewHandler(gatewayClient, documentService, verifier)
		paymentH    = paymentHandler.NewHandler(paymentService)
		documentH   = documentHandler.NewHandler(documentService)
		projectH    = projectHandler.NewHandler(projectService, uploadService)
		settlementH = settlementHandler.NewHandler(settlementService)
		statementH  = exportHandler.NewHandler(exportService)
	)

	router := portalHttp.New(
		sessionService,
		cfg.Server.AllowedOrigins,
		authH,
		webhookH,
		checkoutH,
		paymentH,
		documentH,
		projectH,
		settlementH,
		statementH,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
