package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/common/logger"
	"github.com/yashrajoria/luxe-storefront/config"
	"github.com/yashrajoria/luxe-storefront/database"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/repository"
)

// Copies order records from MongoDB into Postgres. Orders already present in Postgres
// are skipped, so the tool can be re-run after a partial failure.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var mongoURI, dbName, dsn string
	var batch int
	flag.StringVar(&mongoURI, "mongo", cfg.MongoURI, "MongoDB URI")
	flag.StringVar(&dbName, "db", cfg.MongoDB, "MongoDB database name")
	flag.StringVar(&dsn, "postgres", cfg.PostgresDSN(), "Postgres DSN")
	flag.IntVar(&batch, "batch", 200, "orders per page")
	flag.Parse()

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	if mongoURI == "" || dbName == "" || dsn == "" {
		log.Fatal("mongo, db and postgres must be set")
	}

	ctx := context.Background()
	client, mdb, err := database.ConnectMongo(ctx, mongoURI, dbName, log)
	if err != nil {
		log.Fatal("mongo connect", zap.Error(err))
	}
	defer database.DisconnectMongo(ctx, client)

	gdb, err := database.ConnectPostgres(dsn, log, &models.Order{})
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer database.ClosePostgres(gdb)

	migrated, skipped, err := migrate(ctx, repository.NewMongoOrderRepository(mdb), repository.NewGormOrderRepository(gdb), batch, log)
	if err != nil {
		log.Fatal("migration aborted", zap.Int("migrated", migrated), zap.Error(err))
	}
	fmt.Printf("Migration complete. migrated=%d skipped=%d\n", migrated, skipped)
}

func migrate(ctx context.Context, src, dst repository.OrderRepository, batch int, log *zap.Logger) (migrated, skipped int, err error) {
	if batch <= 0 {
		batch = 200
	}
	for page := 1; ; page++ {
		orders, total, err := src.FindAll(ctx, page, batch)
		if err != nil {
			return migrated, skipped, fmt.Errorf("read page %d: %w", page, err)
		}
		for i := range orders {
			o := orders[i]
			if _, err := dst.FindByID(ctx, o.ID); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, repository.ErrNotFound) {
				return migrated, skipped, fmt.Errorf("lookup %s: %w", o.ID, err)
			}
			if err := dst.Create(ctx, &o); err != nil {
				log.Warn("failed to write order", zap.String("order_id", o.ID.String()), zap.Error(err))
				continue
			}
			migrated++
			if migrated%100 == 0 {
				log.Info("orders migrated", zap.Int("count", migrated))
			}
		}
		if len(orders) < batch || int64(page*batch) >= total {
			return migrated, skipped, nil
		}
	}
}
