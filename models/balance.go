package models

// BalanceInfo is a point-in-time view of a position. SettledInterest includes
// interest accrued since the last settlement; nothing is written back.
type BalanceInfo struct {
	Principal          int64
	SettledInterest    int64
	TotalBalance       int64
	LastSettlementTime int64 // unix seconds
}

// DepositResult describes the position after a committed deposit
type DepositResult struct {
	VaultID         int64
	Principal       int64
	SettledInterest int64
	DepositCount    int64
}

// WithdrawResult describes the position after a committed withdrawal,
// including how the amount was split between interest and principal
type WithdrawResult struct {
	VaultID            int64
	Principal          int64
	SettledInterest    int64
	InterestWithdrawn  int64
	PrincipalWithdrawn int64
	WithdrawCount      int64
}
