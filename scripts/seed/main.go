package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerbook/ledgerbook/internal/app"
	"github.com/ledgerbook/ledgerbook/internal/ledger"
)

type customer struct {
	name     string
	purchase string
	ret      string
	rate     string
	vc       string
	due      string
}

var customers = []customer{
	{"Rahim Traders", "120", "4", "38.5", "150", "2200"},
	{"Karim Store", "80", "0", "40", "0", "0"},
	{"Nadia Enterprise", "45", "5", "41.25", "60", "-300"},
	{"Sabbir & Sons", "200", "12", "37", "500", "1250.50"},
	{"Mitu Fashion", "30", "30", "42", "0", "75"},
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()
	logger := app.NewLogger(cfg).With(slog.String("component", "seed"))

	backend, err := app.NewBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("init backend: %v", err)
	}
	defer backend.Close()

	days := 3
	today := time.Now().In(cfg.Location())
	for d := days - 1; d >= 0; d-- {
		date := today.AddDate(0, 0, -d).Format("2006-01-02")
		fmt.Println("→ Seeding current data for", date)
		if err := seedDay(ctx, backend.Ledger, date); err != nil {
			log.Fatalf("seed %s: %v", date, err)
		}
		if d == 0 {
			continue
		}
		fmt.Println("→ Submitting report", date)
		if _, err := backend.Reports.Submit(ctx, date); err != nil {
			log.Fatalf("submit %s: %v", date, err)
		}
	}

	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash admin token: %v", err)
		}
		fmt.Println("→ ADMIN_TOKEN_HASH=" + string(hash))
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedDay(ctx context.Context, svc *ledger.Service, date string) error {
	for _, c := range customers {
		_, err := svc.Upsert(ctx, ledger.UpsertRequest{
			Name:        c.name,
			Purchase:    ledger.NewNumber(c.purchase),
			Return:      ledger.NewNumber(c.ret),
			RatePerPC:   ledger.NewNumber(c.rate),
			VC:          ledger.NewNumber(c.vc),
			PreviousDue: ledger.NewNumber(c.due),
			Date:        date,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}
