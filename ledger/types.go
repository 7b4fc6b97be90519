package ledger

import (
	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// QuizID is the externally assigned quiz number.
type QuizID uint64

// Quiz is the persisted state of one quiz. Amounts are smallest token units.
type Quiz struct {
	ID          QuizID
	Price       *uint256.Int // entry fee per subscriber
	Token       string       // token registry name
	PoolBalance *uint256.Int // escrow owed to winners, zero after setWinners
	FeeBalance  *uint256.Int // platform fees plus split remainder, owner-withdrawable
	Collected   *uint256.Int // total pulled from subscribers
	PaidOut     *uint256.Int // total sent out by redeem and withdraw
	Share       *uint256.Int // per-winner share fixed by setWinners
	Subscribers uint64
	WinnerCount uint64
	WinnersSet  bool
}

func newQuiz(id QuizID, price *uint256.Int, tokenRef string) *Quiz {
	return &Quiz{
		ID:          id,
		Price:       price.Clone(),
		Token:       tokenRef,
		PoolBalance: new(uint256.Int),
		FeeBalance:  new(uint256.Int),
		Collected:   new(uint256.Int),
		PaidOut:     new(uint256.Int),
		Share:       new(uint256.Int),
	}
}

// Clone returns a deep copy, so callers cannot mutate ledger state.
func (q *Quiz) Clone() *Quiz {
	c := *q
	c.Price = q.Price.Clone()
	c.PoolBalance = q.PoolBalance.Clone()
	c.FeeBalance = q.FeeBalance.Clone()
	c.Collected = q.Collected.Clone()
	c.PaidOut = q.PaidOut.Clone()
	c.Share = q.Share.Clone()
	return &c
}

// WinnerRecord is a winner's payout state for one quiz.
type WinnerRecord struct {
	WinShare   *uint256.Int // permanent audit value
	Redeemable *uint256.Int // drains to zero on redeem
}

// Winner pairs an account with its record, for listings.
type Winner struct {
	Account account.Address
	WinnerRecord
}

// FeeSplit is the result of splitting one entry price.
type FeeSplit struct {
	Fee       *uint256.Int
	PoolShare *uint256.Int
}

// Payout summarises a setWinners split.
type Payout struct {
	Share     *uint256.Int
	Remainder *uint256.Int
	Winners   int
}
