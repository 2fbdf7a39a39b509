package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/microfinance-ledger/internal/cache"
	"github.com/sheikh-saqib/microfinance-ledger/internal/config"
	"github.com/sheikh-saqib/microfinance-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/microfinance-ledger/internal/events/logpub"
	"github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/ledger"
	"github.com/sheikh-saqib/microfinance-ledger/internal/loan"
	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/postgres"
	"github.com/sheikh-saqib/microfinance-ledger/internal/storage/sqlite"
)

// app holds the wired services and everything that must be closed on exit.
type app struct {
	loans   *loan.Service
	ledger  *ledger.Ledger
	closers []io.Closer
}

func (a *app) Close(log *zap.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}
}

type stores struct {
	ledger interfaces.LedgerStore
	loans  interfaces.LoanStore
	closer io.Closer
}

func openStores(ctx context.Context, cfg config.StorageConfig) (stores, error) {
	switch cfg.Driver {
	case "memory":
		return stores{ledger: memory.NewMemoryLedgerStore(), loans: memory.NewMemoryLoanStore()}, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{ledger: s, loans: s, closer: s}, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{ledger: s, loans: s, closer: s}, nil
	default:
		return stores{}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func buildApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	st, err := openStores(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if st.closer != nil {
		a.closers = append(a.closers, st.closer)
	}

	var publisher interfaces.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		a.closers = append(a.closers, p)
		publisher = p
	} else {
		publisher = logpub.New(log)
	}

	ttl, err := cfg.QuoteTTL()
	if err != nil {
		a.Close(log)
		return nil, err
	}
	var quotes interfaces.QuoteCache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "microfinance:")
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, quotes are cached in memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			rc.Close()
			quotes = cache.NewMemoryCache()
		} else {
			a.closers = append(a.closers, rc)
			quotes = rc
		}
	} else {
		quotes = cache.NewMemoryCache()
	}

	a.ledger = ledger.NewLedger(st.ledger, publisher, log.Named("ledger"))
	if err := a.ledger.EnsureAccounts(ctx, ledger.DefaultChart()); err != nil {
		a.Close(log)
		return nil, fmt.Errorf("seed chart of accounts: %w", err)
	}

	a.loans = loan.NewService(st.loans, publisher, log.Named("loan"),
		loan.WithCache(quotes, ttl),
		loan.WithJournal(a.ledger, loan.Accounts{
			Cash:            cfg.Accounts.Cash,
			LoansReceivable: cfg.Accounts.LoansReceivable,
			InterestIncome:  cfg.Accounts.InterestIncome,
		}),
	)
	return a, nil
}
