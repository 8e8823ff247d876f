// Command migrate applies the SQL migrations outside of service startup.
//
//	go run ./cmd/migrate -cmd up
//	go run ./cmd/migrate -cmd down
//	go run ./cmd/migrate -cmd to -version 1
//	go run ./cmd/migrate -cmd seed
package main

import (
	"database/sql"
	"flag"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"campus-booking/internal/config"
	"campus-booking/internal/database/migrations"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up, down, to, seed")
	version := flag.Uint("version", 0, "target version for -cmd to")
	dir := flag.String("dir", "./migrations", "migrations directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer sqldb.Close()
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("connect postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	opts := migrations.DefaultOptions()
	opts.MigrationsDir = *dir
	runner := migrations.NewRunner(bunDB, opts)
	defer runner.Close()

	switch *cmd {
	case "up":
		err = runner.MigrateUp()
	case "down":
		err = runner.MigrateDown()
	case "to":
		err = runner.MigrateTo(*version)
	case "seed":
		opts.SeedData = true
		err = migrations.NewRunner(bunDB, opts).RunMigrations()
	default:
		log.Fatalf("unknown command %q", *cmd)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("✅ Done.")
}
