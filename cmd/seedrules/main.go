// Command seedrules administers the temporal rule table.
// Usage:
//
//	seedrules default                        seed the documented default rule
//	seedrules set DATE MULT_A DIV MULT_M     upsert a rule effective on DATE
//	seedrules delete DATE                    delete the rule effective on DATE
//	seedrules list                           print all rules
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"casepipe/internal/config"
	"casepipe/internal/domain"
	"casepipe/internal/repository/postgres"
	"casepipe/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := postgres.NewRuleRepo(db)
	ctx := context.Background()

	switch os.Args[1] {
	case "default":
		rule := domain.DefaultTemporalRule()
		rule.ID = uuid.New()
		if err := repo.Upsert(ctx, &rule); err != nil {
			return err
		}
		log.Printf("seeded default rule effective %s", rule.EffectiveDate.Format(validator.CanonicalDateFormat))

	case "set":
		if len(os.Args) < 6 {
			usage()
			os.Exit(1)
		}
		rule, err := parseRule(os.Args[2:6])
		if err != nil {
			return err
		}
		if err := repo.Upsert(ctx, rule); err != nil {
			return err
		}
		log.Printf("upserted rule effective %s", rule.EffectiveDate.Format(validator.CanonicalDateFormat))

	case "delete":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		d, err := time.Parse(validator.CanonicalDateFormat, os.Args[2])
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", os.Args[2], err)
		}
		if err := repo.DeleteByEffectiveDate(ctx, d); err != nil {
			return err
		}
		log.Printf("deleted rule effective %s", os.Args[2])

	case "list":
		ruleSet, err := repo.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range ruleSet {
			fmt.Printf("%s  mult_a=%.3f  div=%.3f  mult_m=%.3f  %s\n",
				r.EffectiveDate.Format(validator.CanonicalDateFormat),
				r.AnesUnitsMultiplier, r.AnesTimeDivisor, r.MedUnitsMultiplier,
				r.Description)
		}

	default:
		usage()
		os.Exit(1)
	}
	return nil
}

func parseRule(args []string) (*domain.TemporalRule, error) {
	d, err := time.Parse(validator.CanonicalDateFormat, args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", args[0], err)
	}
	coef := make([]float64, 3)
	for i, a := range args[1:4] {
		coef[i], err = strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coefficient %q: %w", a, err)
		}
	}
	return &domain.TemporalRule{
		ID:                  uuid.New(),
		EffectiveDate:       d,
		AnesUnitsMultiplier: coef[0],
		AnesTimeDivisor:     coef[1],
		MedUnitsMultiplier:  coef[2],
	}, nil
}

func usage() {
	fmt.Println("Usage: seedrules [default|set DATE MULT_A DIV MULT_M|delete DATE|list]")
}
