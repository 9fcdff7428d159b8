package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-token-ledger/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings
// into safe values. database/sql treats MaxOpenConns=0 as "unlimited" and
// MaxIdleConns=0 as "no idle connections", neither of which we want by
// default.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Migrate creates or updates the ledger tables
func (s *pgStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&schema.Balance{},
		&schema.OperatorApproval{},
		&schema.LedgerEvent{},
	)
}

// RecordMutation persists the outcome of one successful ledger call in a
// single transaction. Balance and approval rows are upserted on their natural
// keys; the event is appended to the journal. The caller must not pass
// duplicate (account, token_id) pairs in balances.
func (s *pgStore) RecordMutation(ctx context.Context, balances []schema.Balance, approval *schema.OperatorApproval, event *schema.LedgerEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(balances) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "account"}, {Name: "token_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
			}).Create(&balances).Error
			if err != nil {
				return fmt.Errorf("failed to upsert balances: %w", err)
			}
		}

		if approval != nil {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner"}, {Name: "operator"}},
				DoUpdates: clause.AssignmentColumns([]string{"approved", "updated_at"}),
			}).Create(approval).Error
			if err != nil {
				return fmt.Errorf("failed to upsert approval: %w", err)
			}
		}

		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return fmt.Errorf("failed to append event: %w", err)
			}
		}

		return nil
	})
}

// LoadBalances returns every balance row for ledger rehydration at boot
func (s *pgStore) LoadBalances(ctx context.Context) ([]schema.Balance, error) {
	var balances []schema.Balance
	if err := s.db.WithContext(ctx).Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	return balances, nil
}

// LoadApprovals returns every approval row for ledger rehydration at boot
func (s *pgStore) LoadApprovals(ctx context.Context) ([]schema.OperatorApproval, error) {
	var approvals []schema.OperatorApproval
	if err := s.db.WithContext(ctx).Find(&approvals).Error; err != nil {
		return nil, fmt.Errorf("failed to load approvals: %w", err)
	}
	return approvals, nil
}
