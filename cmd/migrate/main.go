package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/allrev/internal/config"
	"github.com/example/allrev/internal/migration"
)

func main() {
	up := flag.Bool("up", false, "apply all pending migrations")
	status := flag.Bool("status", false, "print the applied version and pending migrations")
	flag.Parse()

	if !*up && !*status {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	runner := migration.NewRunner(db, migration.All())

	if *status {
		version, err := runner.AppliedVersion()
		if err != nil {
			log.Fatalf("failed to read migration ledger: %v", err)
		}
		pending, err := runner.Pending()
		if err != nil {
			log.Fatalf("failed to list pending migrations: %v", err)
		}

		fmt.Printf("applied version: %d\n", version)
		if len(pending) == 0 {
			fmt.Println("pending: none")
		} else {
			for _, m := range pending {
				fmt.Printf("pending: %04d_%s\n", m.Version, m.Name)
			}
		}
		return
	}

	if err := runner.Up(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
