package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/samirrijal/trainengine/internal/pkg/config"
	"github.com/samirrijal/trainengine/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("trainengine-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("goose: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "up":
		results, err := provider.Up(ctx)
		report(results)
		if err != nil {
			log.Fatalf("up: %v", err)
		}
		log.Println("all migrations applied")
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			report([]*goose.MigrationResult{result})
		}
		if err != nil {
			log.Fatalf("down: %v", err)
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		for _, s := range statuses {
			fmt.Printf("%-8s %s\n", s.State, s.Source.Path)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func report(results []*goose.MigrationResult) {
	for _, r := range results {
		if r.Error != nil {
			fmt.Printf("FAIL %s: %v\n", r.Source.Path, r.Error)
			continue
		}
		fmt.Printf("OK   %s (%s)\n", r.Source.Path, r.Duration)
	}
}
