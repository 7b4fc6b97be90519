package ledger

import "errors"

var (
	// ErrQuizNotFound indicates no quiz exists with the given id.
	ErrQuizNotFound = errors.New("ledger: quiz not found")

	// ErrDuplicateQuiz indicates a quiz with the given id already exists.
	ErrDuplicateQuiz = errors.New("ledger: quiz already exists")

	// ErrInvalidPrice indicates a zero or missing entry price.
	ErrInvalidPrice = errors.New("ledger: price must be greater than zero")

	// ErrDuplicateSubscription indicates the account already subscribed to the quiz.
	ErrDuplicateSubscription = errors.New("ledger: account already subscribed")

	// ErrTransferFailed indicates the token collaborator declined a transfer.
	ErrTransferFailed = errors.New("ledger: token transfer failed")

	// ErrUnauthorized indicates the caller is not the ledger owner.
	ErrUnauthorized = errors.New("ledger: caller is not the owner")

	// ErrAlreadyFinalized indicates winners were already set for the quiz.
	ErrAlreadyFinalized = errors.New("ledger: winners already set")

	// ErrEmptyWinnerList indicates setWinners was called with no winners.
	ErrEmptyWinnerList = errors.New("ledger: winner list is empty")

	// ErrNotAWinner indicates the caller has no winner record for the quiz.
	ErrNotAWinner = errors.New("ledger: caller is not a winner")

	// ErrInvalidFeePercent indicates a platform fee outside [0, 100].
	ErrInvalidFeePercent = errors.New("ledger: fee percent must be between 0 and 100")

	// ErrUnknownToken indicates the quiz token reference does not resolve.
	ErrUnknownToken = errors.New("ledger: unknown token")

	// ErrZeroAddress indicates the zero address was used as an account.
	ErrZeroAddress = errors.New("ledger: zero address")

	// ErrEscrowAccount indicates the escrow account was used as a participant.
	ErrEscrowAccount = errors.New("ledger: escrow account cannot subscribe, win or own")

	// ErrReentrant indicates a token callback re-entered the ledger without
	// the context of the operation that called it.
	ErrReentrant = errors.New("ledger: reentrant call without operation context")

	// ErrOverflow indicates a balance would exceed 256 bits.
	ErrOverflow = errors.New("ledger: balance overflow")

	// ErrCorruptRecord indicates a stored record could not be decoded.
	ErrCorruptRecord = errors.New("ledger: corrupt record")

	// ErrConservationViolation indicates escrowed value does not match balances.
	ErrConservationViolation = errors.New("ledger: value conservation violated")
)
