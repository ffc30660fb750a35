// Package main seeds the database with a demo company and a year of activities.
//
// Usage:
//
//	DB_PATH=~/carbontrack/carbontrack.db go run ./cmd/seed
//	DB_PATH=~/carbontrack/carbontrack.db go run ./cmd/seed --months 24
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	"github.com/carbontrack/carbontrack-server/internal/domain"
	"github.com/carbontrack/carbontrack-server/internal/id"
	"github.com/carbontrack/carbontrack-server/internal/search"
	"github.com/carbontrack/carbontrack-server/internal/store"
	"github.com/carbontrack/carbontrack-server/internal/store/sqlite"
)

var (
	months   = flag.Int("months", 12, "Number of months of activity history to create")
	email    = flag.String("email", "demo@carbontrack.local", "Demo company email")
	password = flag.String("password", "demo1234", "Demo company password")
)

type template struct {
	title    string
	category domain.Category
	min, max float64
	unit     domain.Unit
}

var templates = []template{
	{"Office electricity", domain.CategoryEnergy, 200, 600, domain.UnitKg},
	{"Gas heating", domain.CategoryEnergy, 100, 400, domain.UnitKg},
	{"Delivery vans", domain.CategoryTransportation, 150, 500, domain.UnitKg},
	{"Production line", domain.CategoryManufacturing, 1, 3, domain.UnitTonnes},
	{"Client visit flights", domain.CategoryBusinessTravel, 300, 1200, domain.UnitKg},
	{"Landfill waste", domain.CategoryWaste, 20, 120, domain.UnitKg},
	{"Water supply", domain.CategoryWater, 5, 30, domain.UnitKg},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/carbontrack/carbontrack.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	s, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	company, err := ensureCompany(ctx, s)
	if err != nil {
		log.Fatalf("Failed to create demo company: %v", err)
	}

	activities, err := seedActivities(ctx, s, company.ID, *months)
	if err != nil {
		log.Fatalf("Failed to seed activities: %v", err)
	}

	// The index lives next to the database; the server must be stopped.
	index, err := search.NewActivityIndex(search.Options{DataPath: filepath.Join(filepath.Dir(dbPath), "search")})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	docs := make([]*search.ActivityDocument, len(activities))
	for i, a := range activities {
		docs[i] = search.NewActivityDocument(a)
	}
	if err := index.IndexDocuments(docs); err != nil {
		log.Fatalf("Failed to index activities: %v", err)
	}

	fmt.Printf("Seeded %d activities for %s (%s)\n", len(activities), company.Name, company.Email)
}

func ensureCompany(ctx context.Context, s store.Store) (*domain.Company, error) {
	existing, err := s.GetCompanyByEmail(ctx, *email)
	if err == nil {
		fmt.Printf("Using existing company %s\n", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return nil, err
	}

	company := &domain.Company{
		ID:           id.MustGenerate(id.PrefixCompany),
		Name:         "Demo Manufacturing Ltd",
		Email:        *email,
		PasswordHash: hash,
		Industry:     "Manufacturing",
		Size:         "medium",
		DateJoined:   time.Now().UTC(),
	}
	if err := s.CreateCompany(ctx, company); err != nil {
		return nil, err
	}

	fmt.Printf("Created company %s, password %q\n", company.ID, *password)
	return company, nil
}

func seedActivities(ctx context.Context, s store.Store, companyID string, months int) ([]*domain.Activity, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months+1, 0)

	var created []*domain.Activity
	for m := range months {
		monthStart := start.AddDate(0, m, 0)
		for _, t := range templates {
			day := monthStart.AddDate(0, 0, rand.Intn(28))
			if day.After(now) {
				continue
			}
			value := t.min + rand.Float64()*(t.max-t.min)

			a := &domain.Activity{
				ID:            id.MustGenerate(id.PrefixActivity),
				CompanyID:     companyID,
				Title:         fmt.Sprintf("%s %s", t.title, monthStart.Format("Jan 2006")),
				Category:      t.category,
				Date:          day,
				EmissionValue: float64(int(value*100)) / 100,
				EmissionUnit:  t.unit,
				CreatedAt:     now,
			}
			if err := s.CreateActivity(ctx, a); err != nil {
				return created, err
			}
			created = append(created, a)
		}
	}

	return created, nil
}
