package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/leadbroker/internal/config"
	"github.com/MrJamesThe3rd/leadbroker/internal/connection"
	connStore "github.com/MrJamesThe3rd/leadbroker/internal/connection/store"
	"github.com/MrJamesThe3rd/leadbroker/internal/database"
	brokerHttp "github.com/MrJamesThe3rd/leadbroker/internal/http"
	connHandler "github.com/MrJamesThe3rd/leadbroker/internal/http/connection"
	ledgerHandler "github.com/MrJamesThe3rd/leadbroker/internal/http/ledger"
	"github.com/MrJamesThe3rd/leadbroker/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/leadbroker/internal/ledger/store"
	"github.com/MrJamesThe3rd/leadbroker/internal/notify"
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

	var (
		ledgerService     = ledger.NewService(ledgerStore.New(db))
		connectionService = connection.NewService(connStore.New(db), ledgerService, notify.NewLogNotifier(slog.Default()))
	)

	var (
		connectionH = connHandler.NewHandler(connectionService)
		ledgerH     = ledgerHandler.NewHandler(ledgerService)
	)

	router := brokerHttp.New([]byte(cfg.Auth.JWTSecret), connectionH, ledgerH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
