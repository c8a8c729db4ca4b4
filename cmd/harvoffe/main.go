package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/3003mgf/harvoffe/internal/account"
	"github.com/3003mgf/harvoffe/internal/cart"
	"github.com/3003mgf/harvoffe/internal/cli"
	"github.com/3003mgf/harvoffe/internal/config"
	"github.com/3003mgf/harvoffe/internal/logging"
	"github.com/3003mgf/harvoffe/internal/mailer"
	"github.com/3003mgf/harvoffe/internal/menu"
	"github.com/3003mgf/harvoffe/internal/order"
	"github.com/3003mgf/harvoffe/internal/session"
	"github.com/3003mgf/harvoffe/internal/store"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Stderr, configuration.LOG_LEVEL)

	if err := os.MkdirAll(configuration.DATA_DIR, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}
	records := store.NewCSVStore(configuration.DATA_DIR)

	catalog, err := menu.Load(records)
	if err != nil {
		if errors.Is(err, store.ErrTableNotFound) {
			log.Fatalf("menu table is required: put a menu.csv (coffee,price) into %s", configuration.DATA_DIR)
		}
		log.Fatal(err)
	}

	carts := &cart.Engine{Store: records}
	ledger := &account.Ledger{Store: records}

	app := &cli.App{
		Menu:     catalog,
		Carts:    carts,
		Orders:   &order.Service{Store: records, Carts: carts, Ledger: ledger},
		Ledger:   ledger,
		Sessions: session.NewManager(configuration.SESSION_FILE, []byte(configuration.JWT_SECRET)),
		Mail: &mailer.SMTPMailer{
			Host:     configuration.SMTP_HOST,
			Port:     configuration.SMTP_PORT,
			User:     configuration.SMTP_USER,
			Password: configuration.SMTP_PASSWORD,
			From:     configuration.SENDER_EMAIL,
		},
		Out: os.Stdout,
	}
	app.SetInput(os.Stdin)

	ctx, cancel := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
		os.Stdout.WriteString("\n\nSee you next time!\n")
		os.Exit(0)
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("run", "error", err)
		os.Exit(1)
	}
	os.Stdout.WriteString("\nSee you next time!\n")
}
