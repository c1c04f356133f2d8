package main

import (
	"errors"
	"flag"
	"log"

	"poster_shop/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var (
		dir   = flag.String("dir", "migrations", "migrations directory")
		down  = flag.Bool("down", false, "roll back one step instead of migrating up")
		force = flag.Int("force", -1, "force a version after a failed migration, then exit")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Store.Driver != "postgres" {
		log.Fatalf("store.driver is %q; migrations only apply to postgres", cfg.Store.Driver)
	}

	m, err := migrate.New("file://"+*dir, cfg.Database.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal("Failed to force version:", err)
		}
		log.Printf("Forced version %d", *force)
		return
	}

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("Database is dirty at version %d; fix it and rerun with -force=%d", dirty.Version, dirty.Version-1)
		}
		log.Fatal(err)
	}

	version, isDirty, _ := m.Version()
	log.Printf("Migration successful (version %d, dirty=%v)", version, isDirty)
}
