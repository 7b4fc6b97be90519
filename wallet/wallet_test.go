package wallet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/quizledger/account"
)

// BIP39 test vector mnemonic.
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testWallet(t *testing.T) *Wallet {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	w, err := NewWallet(seed, account.MainNet)
	require.NoError(t, err)
	return w
}

// ---------------------------------------------------------------------------
// Mnemonic / seed
// ---------------------------------------------------------------------------

func TestGenerateMnemonic(t *testing.T) {
	tests := []struct {
		bits  int
		words int
	}{
		{Mnemonic12Words, 12},
		{Mnemonic24Words, 24},
	}
	for _, tt := range tests {
		m, err := GenerateMnemonic(tt.bits)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(m), tt.words)
		assert.True(t, ValidateMnemonic(m))
	}

	_, err := GenerateMnemonic(160)
	assert.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestSeedFromMnemonic(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	assert.Len(t, seed, 64)

	withPass, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.NotEqual(t, seed, withPass)

	_, err = SeedFromMnemonic("abandon abandon abandon", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

// ---------------------------------------------------------------------------
// Derivation
// ---------------------------------------------------------------------------

func TestDerive_Deterministic(t *testing.T) {
	a, err := testWallet(t).Participant(3)
	require.NoError(t, err)
	b, err := testWallet(t).Participant(3)
	require.NoError(t, err)

	assert.Equal(t, a.Account, b.Account)
	assert.Equal(t, "m/44'/236'/2'/0/3", a.Path)

	fromPub, err := account.FromPublicKey(a.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, a.Account, fromPub)
}

func TestDerive_RolesAreDistinct(t *testing.T) {
	w := testWallet(t)
	owner, err := w.Owner()
	require.NoError(t, err)
	escrow, err := w.Escrow()
	require.NoError(t, err)
	p0, err := w.Participant(0)
	require.NoError(t, err)
	p1, err := w.Participant(1)
	require.NoError(t, err)

	seen := map[account.Address]string{}
	for _, kp := range []*KeyPair{owner, escrow, p0, p1} {
		assert.False(t, kp.Account.IsZero())
		prev, dup := seen[kp.Account]
		assert.False(t, dup, "%s collides with %s", kp.Path, prev)
		seen[kp.Account] = kp.Path
	}
	assert.Equal(t, "m/44'/236'/0'/0/0", owner.Path)
	assert.Equal(t, "m/44'/236'/1'/0/0", escrow.Path)
}

func TestDerive_Errors(t *testing.T) {
	w := testWallet(t)

	_, err := w.Derive(RoleParticipant, MaxIndex+1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = w.Derive(Role(9), 0)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = NewWallet(nil, account.MainNet)
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestNetworkDoesNotChangeAccount(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	main, err := NewWallet(seed, account.MainNet)
	require.NoError(t, err)
	test, err := NewWallet(seed, account.TestNet)
	require.NoError(t, err)

	a, err := main.Owner()
	require.NoError(t, err)
	b, err := test.Owner()
	require.NoError(t, err)
	assert.Equal(t, a.Account, b.Account)
	assert.NotEqual(t, a.Account.Encode(main.Network()), b.Account.Encode(test.Network()))
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleOwner, RoleEscrow, RoleParticipant} {
		got, err := ParseRole(strings.ToUpper(r.String()))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRole("auditor")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Equal(t, "role(7)", Role(7).String())
}

// ---------------------------------------------------------------------------
// Keystore
// ---------------------------------------------------------------------------

func TestEncryptDecryptSeed(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	blob, err := EncryptSeed(seed, "hunter2")
	require.NoError(t, err)
	assert.Len(t, blob, SaltLen+NonceLen+len(seed)+ChecksumLen+16)

	got, err := DecryptSeed(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, seed, got)

	other, err := EncryptSeed(seed, "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, blob, other, "salt and nonce must be fresh")
}

func TestDecryptSeed_Failures(t *testing.T) {
	blob, err := EncryptSeed([]byte("seed material"), "pw")
	require.NoError(t, err)

	_, err = DecryptSeed(blob, "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	tampered := append([]byte{}, blob...)
	tampered[len(tampered)-1] ^= 0xFF
	_, err = DecryptSeed(tampered, "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = DecryptSeed(blob[:10], "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = EncryptSeed(nil, "pw")
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestKeystore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	path := KeystorePath(dir)
	seed := []byte("0123456789abcdef0123456789abcdef")

	_, err := LoadKeystore(path, "pw")
	assert.ErrorIs(t, err, ErrKeystoreNotFound)

	require.NoError(t, SaveKeystore(path, seed, "pw"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := LoadKeystore(path, "pw")
	require.NoError(t, err)
	assert.Equal(t, seed, got)

	err = SaveKeystore(path, seed, "pw")
	assert.ErrorIs(t, err, ErrKeystoreExists)

	_, err = LoadKeystore(path, "nope")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
