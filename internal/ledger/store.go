// Package ledger persists the append-only general and reserve ledgers and
// answers every balance question with an aggregate query over them.
package ledger

import (
	"context"
	"time"

	"finanzas/internal/models"
	"finanzas/internal/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals is the pair of inflow and outflow sums for one ledger scope.
// For the general ledger In is INCOME and Out is EXPENSE; for a reserve
// ledger In is CONTRIBUTION and Out is WITHDRAWAL.
type Totals struct {
	In  decimal.Decimal `json:"in"`
	Out decimal.Decimal `json:"out"`
}

// Net returns In minus Out.
func (t Totals) Net() decimal.Decimal {
	return t.In.Sub(t.Out)
}

// Add returns the element-wise sum of two totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{In: t.In.Add(o.In), Out: t.Out.Add(o.Out)}
}

// sumRow is the shape of every grouped aggregate query in this package.
type sumRow struct {
	Ref   string
	Kind  string
	Total decimal.Decimal
}

// fold groups sum rows by ref, treating inKind as the positive direction.
func fold(rows []sumRow, inKind string) map[string]Totals {
	out := make(map[string]Totals, len(rows))
	for _, r := range rows {
		t := out[r.Ref]
		// SQLite sums decimal columns as REAL
		amount := r.Total.Round(2)
		if r.Kind == inKind {
			t.In = t.In.Add(amount)
		} else {
			t.Out = t.Out.Add(amount)
		}
		out[r.Ref] = t
	}
	return out
}

// Store reads and appends ledger rows. The zero value is not usable; build
// one with NewStore.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a ledger store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithTx returns a store bound to an open transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, now: s.now}
}

// Append records a general-ledger entry. CreatedAt is stamped in UTC when unset.
func (s *Store) Append(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// AppendReserve records a reserve-ledger entry. CreatedAt is stamped in UTC when unset.
func (s *Store) AppendReserve(ctx context.Context, entry *models.ReserveEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// AccountTotals sums one account's general ledger.
func (s *Store) AccountTotals(ctx context.Context, accountID string) (Totals, error) {
	var rows []sumRow
	err := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Select("account_id AS ref, kind, SUM(amount) AS total").
		Where("account_id = ?", accountID).
		Group("account_id, kind").
		Scan(&rows).Error
	if err != nil {
		return Totals{}, err
	}
	return fold(rows, string(models.MovementIncome))[accountID], nil
}

// AccountTotalsByOwner sums every account of a user in one grouped query,
// keyed by account ID. Accounts without entries are absent from the map.
func (s *Store) AccountTotalsByOwner(ctx context.Context, userID string) (map[string]Totals, error) {
	var rows []sumRow
	err := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Select("ledger_entries.account_id AS ref, ledger_entries.kind AS kind, SUM(ledger_entries.amount) AS total").
		Joins("JOIN accounts ON accounts.id = ledger_entries.account_id").
		Where("accounts.user_id = ?", userID).
		Group("ledger_entries.account_id, ledger_entries.kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return fold(rows, string(models.MovementIncome)), nil
}

// TotalsByAccountType sums a user's general ledger grouped by account type.
func (s *Store) TotalsByAccountType(ctx context.Context, userID string) (map[models.AccountType]Totals, error) {
	var rows []sumRow
	err := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Select("accounts.type AS ref, ledger_entries.kind AS kind, SUM(ledger_entries.amount) AS total").
		Joins("JOIN accounts ON accounts.id = ledger_entries.account_id").
		Where("accounts.user_id = ?", userID).
		Group("accounts.type, ledger_entries.kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[models.AccountType]Totals)
	for ref, t := range fold(rows, string(models.MovementIncome)) {
		out[models.AccountType(ref)] = t
	}
	return out, nil
}

// ReserveTotals sums one reserve's ledger.
func (s *Store) ReserveTotals(ctx context.Context, reserveID string) (Totals, error) {
	var rows []sumRow
	err := s.db.WithContext(ctx).Model(&models.ReserveEntry{}).
		Select("reserve_id AS ref, kind, SUM(amount) AS total").
		Where("reserve_id = ?", reserveID).
		Group("reserve_id, kind").
		Scan(&rows).Error
	if err != nil {
		return Totals{}, err
	}
	return fold(rows, string(models.ReserveContribution))[reserveID], nil
}

// ReserveTotalsByOwner sums every reserve of a user in one grouped query,
// keyed by reserve ID.
func (s *Store) ReserveTotalsByOwner(ctx context.Context, userID string) (map[string]Totals, error) {
	var rows []sumRow
	err := s.db.WithContext(ctx).Model(&models.ReserveEntry{}).
		Select("reserve_entries.reserve_id AS ref, reserve_entries.kind AS kind, SUM(reserve_entries.amount) AS total").
		Joins("JOIN reserves ON reserves.id = reserve_entries.reserve_id").
		Where("reserves.user_id = ?", userID).
		Group("reserve_entries.reserve_id, reserve_entries.kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return fold(rows, string(models.ReserveContribution)), nil
}

// ReserveTotalsByKind sums a user's reserve ledgers grouped by reserve kind.
func (s *Store) ReserveTotalsByKind(ctx context.Context, userID string) (map[models.ReserveKind]Totals, error) {
	var rows []sumRow
	err := s.db.WithContext(ctx).Model(&models.ReserveEntry{}).
		Select("reserves.kind AS ref, reserve_entries.kind AS kind, SUM(reserve_entries.amount) AS total").
		Joins("JOIN reserves ON reserves.id = reserve_entries.reserve_id").
		Where("reserves.user_id = ?", userID).
		Group("reserves.kind, reserve_entries.kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[models.ReserveKind]Totals)
	for ref, t := range fold(rows, string(models.ReserveContribution)) {
		out[models.ReserveKind(ref)] = t
	}
	return out, nil
}

// HasAccountEntries reports whether any general-ledger entry references the account.
func (s *Store) HasAccountEntries(ctx context.Context, accountID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// HasReserveEntries reports whether any reserve-ledger entry references the reserve.
func (s *Store) HasReserveEntries(ctx context.Context, reserveID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ReserveEntry{}).
		Where("reserve_id = ?", reserveID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// AccountEntriesInPeriod returns one page of an account's entries inside the
// period, newest first, with the total number of matching rows. The owning
// account is preloaded.
func (s *Store) AccountEntriesInPeriod(ctx context.Context, accountID string, period Period, page pagination.PageRequest) ([]models.LedgerEntry, int64, error) {
	start, end := period.Bounds()
	base := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("account_id = ? AND created_at >= ? AND created_at < ?", accountID, start, end)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.LedgerEntry
	err := base.Preload("Account").
		Order("created_at DESC").Order("id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ReserveEntriesInPeriod returns one page of a reserve's entries inside the
// period, newest first, with the source account preloaded when present.
func (s *Store) ReserveEntriesInPeriod(ctx context.Context, reserveID string, period Period, page pagination.PageRequest) ([]models.ReserveEntry, int64, error) {
	start, end := period.Bounds()
	base := s.db.WithContext(ctx).Model(&models.ReserveEntry{}).
		Where("reserve_id = ? AND created_at >= ? AND created_at < ?", reserveID, start, end)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ReserveEntry
	err := base.Preload("Account").
		Order("created_at DESC").Order("id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
