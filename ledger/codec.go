package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// Buckets.
const (
	bucketQuizzes       = "quizzes"
	bucketSubscriptions = "subscriptions"
	bucketWinners       = "winners"
	bucketMeta          = "meta"
)

var metaOwner = []byte("owner")

const (
	amountSize = 32
	// price + pool + fee + collected + paid_out + share, subscribers(8),
	// winner_count(8), flags(1), token_len(1)
	quizHeaderSize  = 6*amountSize + 8 + 8 + 1 + 1
	maxTokenRefSize = 255
	winnerSize      = 2 * amountSize // win_share + redeemable
	memberKeySize   = 8 + account.AddressSize
)

const flagWinnersSet = 0x01

var subscribedValue = []byte{0x01}

func quizKey(id QuizID) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// memberKey keys subscriptions and winner records: quiz_id(8) || address(20).
// The quiz id prefix lets a scan list one quiz's members.
func memberKey(id QuizID, a account.Address) []byte {
	k := make([]byte, memberKeySize)
	binary.BigEndian.PutUint64(k[:8], uint64(id))
	copy(k[8:], a[:])
	return k
}

func memberAddress(key []byte) (account.Address, error) {
	var a account.Address
	if len(key) != memberKeySize {
		return a, fmt.Errorf("%w: member key is %d bytes", ErrCorruptRecord, len(key))
	}
	copy(a[:], key[8:])
	return a, nil
}

func putAmount(buf []byte, v *uint256.Int) {
	b := v.Bytes32()
	copy(buf, b[:])
}

func getAmount(buf []byte) *uint256.Int {
	return new(uint256.Int).SetBytes32(buf)
}

// encodeQuiz serializes a Quiz. The id is the key and is not repeated.
func encodeQuiz(q *Quiz) ([]byte, error) {
	if len(q.Token) > maxTokenRefSize {
		return nil, fmt.Errorf("%w: token reference longer than %d bytes", ErrUnknownToken, maxTokenRefSize)
	}
	buf := make([]byte, quizHeaderSize+len(q.Token))
	offset := 0
	for _, v := range []*uint256.Int{q.Price, q.PoolBalance, q.FeeBalance, q.Collected, q.PaidOut, q.Share} {
		putAmount(buf[offset:offset+amountSize], v)
		offset += amountSize
	}
	binary.BigEndian.PutUint64(buf[offset:offset+8], q.Subscribers)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], q.WinnerCount)
	offset += 8
	if q.WinnersSet {
		buf[offset] |= flagWinnersSet
	}
	offset++
	buf[offset] = byte(len(q.Token))
	offset++
	copy(buf[offset:], q.Token)
	return buf, nil
}

// decodeQuiz deserializes a Quiz stored under id.
func decodeQuiz(id QuizID, data []byte) (*Quiz, error) {
	if len(data) < quizHeaderSize {
		return nil, fmt.Errorf("%w: quiz %d too short (%d bytes)", ErrCorruptRecord, id, len(data))
	}
	q := &Quiz{ID: id}
	offset := 0
	for _, dst := range []**uint256.Int{&q.Price, &q.PoolBalance, &q.FeeBalance, &q.Collected, &q.PaidOut, &q.Share} {
		*dst = getAmount(data[offset : offset+amountSize])
		offset += amountSize
	}
	q.Subscribers = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	q.WinnerCount = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	q.WinnersSet = data[offset]&flagWinnersSet != 0
	offset++
	tokenLen := int(data[offset])
	offset++
	if len(data) != offset+tokenLen {
		return nil, fmt.Errorf("%w: quiz %d expected %d bytes, got %d", ErrCorruptRecord, id, offset+tokenLen, len(data))
	}
	q.Token = string(data[offset:])
	return q, nil
}

func encodeWinner(r *WinnerRecord) []byte {
	buf := make([]byte, winnerSize)
	putAmount(buf[:amountSize], r.WinShare)
	putAmount(buf[amountSize:], r.Redeemable)
	return buf
}

func decodeWinner(data []byte) (*WinnerRecord, error) {
	if len(data) != winnerSize {
		return nil, fmt.Errorf("%w: winner record expected %d bytes, got %d", ErrCorruptRecord, winnerSize, len(data))
	}
	return &WinnerRecord{
		WinShare:   getAmount(data[:amountSize]),
		Redeemable: getAmount(data[amountSize:]),
	}, nil
}
