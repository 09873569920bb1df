package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/index"
	ledgerdomain "github.com/smallbiznis/onclick/internal/ledger/domain"
	milestonedomain "github.com/smallbiznis/onclick/internal/milestone/domain"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	paymentintentdomain "github.com/smallbiznis/onclick/internal/paymentintent/domain"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	productdomain "github.com/smallbiznis/onclick/internal/product/domain"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// Models lists every ledger table in creation order.
func Models() []any {
	return []any{
		&platformdomain.State{},
		&pagedomain.Page{},
		&productdomain.Product{},
		&ledgerdomain.Transaction{},
		&paymentintentdomain.PaymentIntent{},
		&milestonedomain.Milestone{},
		&index.Entry{},
		&events.Record{},
	}
}

// Run brings the schema up to date. Postgres uses the versioned SQL
// migrations; other dialects are migrated from the models.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return AutoMigrate(conn)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
