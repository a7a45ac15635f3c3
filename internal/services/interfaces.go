package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string, weeklyIncome decimal.Decimal) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// ReconcileResult reports the outcome of forcing an account balance.
// Entry is nil when the balance already matched the target.
type ReconcileResult struct {
	Account *models.Account     `json:"account"`
	Entry   *models.LedgerEntry `json:"entry,omitempty"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID, description string, accountType models.AccountType) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID, accountID, description string, accountType models.AccountType) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
	ReconcileBalance(ctx context.Context, userID, accountID string, target decimal.Decimal) (*ReconcileResult, error)
}

// MovementServicer defines the contract for general-ledger movements.
type MovementServicer interface {
	RegisterMovement(ctx context.Context, userID, accountID string, kind models.MovementKind, amount decimal.Decimal, concept string) (*models.LedgerEntry, error)
	DeleteMovement(ctx context.Context, userID, movementID string) error
	GetAccountMovements(ctx context.Context, userID, accountID string, year, month int, page pagination.PageRequest) (*pagination.PageResponse[models.LedgerEntry], error)
}

// ReserveInput carries the editable fields of a reserve.
type ReserveInput struct {
	Concept      string
	Kind         models.ReserveKind
	GoalAmount   decimal.Decimal
	WeeklyAmount decimal.Decimal
	TargetDate   *time.Time
}

// BulkContributionInput selects the reserves advanced by a bulk contribution.
// KindFilter is a reserve kind token or ALL; empty means ALL.
type BulkContributionInput struct {
	Weeks      int
	Concept    string
	KindFilter string
	AccountID  *string
}

// WithdrawalResult holds both ledger rows written by a withdrawal.
type WithdrawalResult struct {
	ReserveEntry *models.ReserveEntry `json:"reserve_entry"`
	LedgerEntry  *models.LedgerEntry  `json:"ledger_entry"`
}

// ReserveDetail is one reserve with its ledger totals and goal projection.
type ReserveDetail struct {
	ID                    string             `json:"id"`
	Concept               string             `json:"concept"`
	Kind                  models.ReserveKind `json:"kind"`
	GoalAmount            decimal.Decimal    `json:"goal_amount"`
	WeeklyAmount          decimal.Decimal    `json:"weekly_amount"`
	TargetDate            *time.Time         `json:"target_date,omitempty"`
	Contributed           decimal.Decimal    `json:"contributed"`
	Withdrawn             decimal.Decimal    `json:"withdrawn"`
	Reserved              decimal.Decimal    `json:"reserved"`
	Shortfall             decimal.Decimal    `json:"shortfall"`
	SuggestedWeekly       *decimal.Decimal   `json:"suggested_weekly,omitempty"`
	ProjectedCompletionAt *time.Time         `json:"projected_completion_at,omitempty"`
}

// KindTotals is the reserved balance and weekly/monthly commitment for one reserve kind.
type KindTotals struct {
	Reserved decimal.Decimal `json:"reserved"`
	Weekly   decimal.Decimal `json:"weekly"`
	Monthly  decimal.Decimal `json:"monthly"`
}

// ReserveSummary aggregates every reserve of a user.
type ReserveSummary struct {
	TotalReserved decimal.Decimal                   `json:"total_reserved"`
	WeeklyTotal   decimal.Decimal                   `json:"weekly_total"`
	MonthlyTotal  decimal.Decimal                   `json:"monthly_total"`
	ByKind        map[models.ReserveKind]KindTotals `json:"by_kind"`
	Reserves      []ReserveDetail                   `json:"reserves"`
}

// ReserveServicer defines the contract for reserve accounting.
type ReserveServicer interface {
	CreateReserve(ctx context.Context, userID string, in ReserveInput) (*models.Reserve, error)
	UpdateReserve(ctx context.Context, userID, reserveID string, in ReserveInput) (*models.Reserve, error)
	GetReserveByID(ctx context.Context, userID, reserveID string) (*models.Reserve, error)
	GetUserReserves(ctx context.Context, userID, kindFilter string) ([]models.Reserve, error)
	DeleteReserve(ctx context.Context, userID, reserveID string) error
	Contribute(ctx context.Context, userID, reserveID string, amount decimal.Decimal, accountID *string, concept string) (*models.ReserveEntry, error)
	Withdraw(ctx context.Context, userID, reserveID string, amount decimal.Decimal, accountID, concept string) (*WithdrawalResult, error)
	RegisterReserveMovement(ctx context.Context, userID, reserveID string, kind models.ReserveMovementKind, amount decimal.Decimal, accountID *string, concept string) (*models.ReserveEntry, error)
	BulkContribute(ctx context.Context, userID string, in BulkContributionInput) ([]models.ReserveEntry, error)
	GetSummary(ctx context.Context, userID, kindFilter string) (*ReserveSummary, error)
	GetReserveMovements(ctx context.Context, userID, reserveID string, year, month int, page pagination.PageRequest) (*pagination.PageResponse[models.ReserveEntry], error)
	DeleteReserveMovement(ctx context.Context, userID, movementID string) error
}

// BudgetConfigInput carries a requested budget configuration.
type BudgetConfigInput struct {
	WeeklyIncome  decimal.Decimal
	ExpensesPct   int
	SavingsPct    int
	InvestmentPct int
	FreePct       int
}

// BudgetLine is an amount with its share of weekly income.
type BudgetLine struct {
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PlannedLine is the amount a configured percentage allots.
type PlannedLine struct {
	Value      decimal.Decimal `json:"value"`
	Percentage int             `json:"percentage"`
}

// BudgetReserveLine is a reserve counted in a budget category.
type BudgetReserveLine struct {
	ID           string          `json:"id"`
	Concept      string          `json:"concept"`
	WeeklyAmount decimal.Decimal `json:"weekly_amount"`
}

// BudgetBreakdown is the weekly or monthly view of committed reserve contributions.
// Lines are nil when the user has no weekly income.
type BudgetBreakdown struct {
	Expenses           *BudgetLine         `json:"expenses,omitempty"`
	Savings            *BudgetLine         `json:"savings,omitempty"`
	Investment         *BudgetLine         `json:"investment,omitempty"`
	Available          *BudgetLine         `json:"available,omitempty"`
	ExpenseReserves    []BudgetReserveLine `json:"expense_reserves"`
	SavingsReserves    []BudgetReserveLine `json:"savings_reserves"`
	InvestmentReserves []BudgetReserveLine `json:"investment_reserves"`
}

// BudgetPlan is the configured split expressed as amounts.
type BudgetPlan struct {
	WeeklyIncome  decimal.Decimal `json:"weekly_income"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	Expenses      PlannedLine     `json:"expenses"`
	Savings       PlannedLine     `json:"savings"`
	Investment    PlannedLine     `json:"investment"`
	Free          PlannedLine     `json:"free"`
}

// BudgetSummary is the configuration block plus the weekly and monthly breakdowns.
type BudgetSummary struct {
	Config  BudgetPlan      `json:"config"`
	Weekly  BudgetBreakdown `json:"weekly"`
	Monthly BudgetBreakdown `json:"monthly"`
}

// BudgetServicer defines the contract for the budget configuration.
type BudgetServicer interface {
	GetConfig(ctx context.Context, userID string) (*models.BudgetConfig, error)
	SaveConfig(ctx context.Context, userID string, in BudgetConfigInput) (*models.BudgetConfig, error)
	GetSummary(ctx context.Context, userID string) (*BudgetSummary, error)
}

// ProjectionServicer defines the contract for projections.
type ProjectionServicer interface {
	CreateProjection(ctx context.Context, userID, concept string, amount decimal.Decimal) (*models.Projection, error)
	GetUserProjections(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Projection], error)
	GetProjectionByID(ctx context.Context, userID, projectionID string) (*models.Projection, error)
	UpdateProjection(ctx context.Context, userID, projectionID, concept string, amount decimal.Decimal) (*models.Projection, error)
	DeleteProjection(ctx context.Context, userID, projectionID string) error
}

// FinancialSummary is the consolidated net-worth view of a user.
type FinancialSummary struct {
	TotalMoney                    decimal.Decimal  `json:"total_money"`
	AvailableMoney                decimal.Decimal  `json:"available_money"`
	ReservedMoney                 decimal.Decimal  `json:"reserved_money"`
	NetReserves                   decimal.Decimal  `json:"net_reserves"`
	CreditBalance                 decimal.Decimal  `json:"credit_balance"`
	TotalProjections              decimal.Decimal  `json:"total_projections"`
	TotalMoneyWithProjections     decimal.Decimal  `json:"total_money_with_projections"`
	AvailableMoneyWithProjections decimal.Decimal  `json:"available_money_with_projections"`
	Accounts                      []models.Account `json:"accounts"`
}

// SummaryServicer defines the contract for the financial summary.
type SummaryServicer interface {
	GetFinancialSummary(ctx context.Context, userID string) (*FinancialSummary, error)
}
