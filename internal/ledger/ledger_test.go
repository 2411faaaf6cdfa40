package ledger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/txgen/internal/csvparser"
	"github.com/ginjaninja78/txgen/internal/csvwriter"
	"github.com/ginjaninja78/txgen/internal/generator"
	"github.com/ginjaninja78/txgen/internal/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deposit(client, tx int, amount string) Transaction {
	return Transaction{Kind: types.Deposit, Client: client, Tx: tx, Amount: dec(amount)}
}

func withdrawal(client, tx int, amount string) Transaction {
	return Transaction{Kind: types.Withdrawal, Client: client, Tx: tx, Amount: dec(amount)}
}

func ref(kind types.Kind, client, tx int) Transaction {
	return Transaction{Kind: kind, Client: client, Tx: tx}
}

func requireBalances(t *testing.T, l *Ledger, client int, available, held string, locked bool) {
	t.Helper()

	account, ok := l.Account(client)
	require.True(t, ok, "client %d has no account", client)
	assert.True(t, dec(available).Equal(account.Available), "available: want %s, got %s", available, account.Available)
	assert.True(t, dec(held).Equal(account.Held), "held: want %s, got %s", held, account.Held)
	assert.Equal(t, locked, account.Locked)
	assert.True(t, account.Available.Add(account.Held).Equal(account.Total()))
}

func TestDepositAndWithdraw(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.Apply(deposit(1, 1, "100")))
	require.NoError(t, l.Apply(withdrawal(1, 2, "40.5")))
	requireBalances(t, l, 1, "59.5", "0", false)

	err := l.Apply(withdrawal(1, 3, "60"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	requireBalances(t, l, 1, "59.5", "0", false)

	require.NoError(t, l.Apply(withdrawal(1, 4, "59.5")))
	requireBalances(t, l, 1, "0", "0", false)
}

func TestRejectsBadDeposits(t *testing.T) {
	l := New(nil)

	require.ErrorIs(t, l.Apply(deposit(1, 1, "0")), ErrInvalidAmount)
	require.ErrorIs(t, l.Apply(deposit(1, 1, "-5")), ErrInvalidAmount)

	require.NoError(t, l.Apply(deposit(1, 1, "5")))
	require.ErrorIs(t, l.Apply(deposit(2, 1, "5")), ErrDuplicateTx)

	requireBalances(t, l, 1, "5", "0", false)
	requireBalances(t, l, 2, "0", "0", false)
}

func TestDisputeResolve(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.Apply(deposit(1, 1, "100")))
	require.NoError(t, l.Apply(ref(types.Dispute, 1, 1)))
	requireBalances(t, l, 1, "0", "100", false)

	require.ErrorIs(t, l.Apply(ref(types.Dispute, 1, 1)), ErrAlreadyDisputed)

	require.NoError(t, l.Apply(ref(types.Resolve, 1, 1)))
	requireBalances(t, l, 1, "100", "0", false)

	require.ErrorIs(t, l.Apply(ref(types.Resolve, 1, 1)), ErrNotDisputed)

	// A settled transaction can be disputed again.
	require.NoError(t, l.Apply(ref(types.Dispute, 1, 1)))
	requireBalances(t, l, 1, "0", "100", false)
}

func TestDisputeAfterSpendingGoesNegative(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.Apply(deposit(1, 1, "100")))
	require.NoError(t, l.Apply(withdrawal(1, 2, "80")))
	require.NoError(t, l.Apply(ref(types.Dispute, 1, 1)))

	requireBalances(t, l, 1, "-80", "100", false)
}

func TestChargebackLocksAccount(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.Apply(deposit(1, 1, "100")))
	require.NoError(t, l.Apply(deposit(1, 2, "50")))

	require.ErrorIs(t, l.Apply(ref(types.Chargeback, 1, 1)), ErrNotDisputed)

	require.NoError(t, l.Apply(ref(types.Dispute, 1, 1)))
	require.NoError(t, l.Apply(ref(types.Chargeback, 1, 1)))
	requireBalances(t, l, 1, "50", "0", true)

	require.ErrorIs(t, l.Apply(deposit(1, 3, "10")), ErrAccountLocked)
	require.ErrorIs(t, l.Apply(withdrawal(1, 4, "10")), ErrAccountLocked)
	require.ErrorIs(t, l.Apply(ref(types.Dispute, 1, 2)), ErrAccountLocked)
	requireBalances(t, l, 1, "50", "0", true)
}

func TestReferenceChecks(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.Apply(deposit(1, 1, "10")))

	require.ErrorIs(t, l.Apply(ref(types.Dispute, 1, 99)), ErrUnknownTx)
	require.ErrorIs(t, l.Apply(ref(types.Dispute, 2, 1)), ErrClientMismatch)
	require.ErrorIs(t, l.Apply(ref(types.Resolve, 2, 1)), ErrClientMismatch)
	require.ErrorIs(t, l.Apply(ref(types.Chargeback, 2, 1)), ErrClientMismatch)

	requireBalances(t, l, 1, "10", "0", false)

	stats := l.Stats()
	assert.Equal(t, 1, stats.Applied)
	assert.Equal(t, 4, stats.Rejected)
	assert.Equal(t, 3, stats.Reasons[ErrClientMismatch.Error()])
	assert.Equal(t, 1, stats.Reasons[ErrUnknownTx.Error()])
}

func TestChargedBackTransactionCannotBeDisputed(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.Apply(deposit(1, 1, "10")))
	require.NoError(t, l.Apply(ref(types.Dispute, 1, 1)))
	require.NoError(t, l.Apply(ref(types.Chargeback, 1, 1)))

	// Unlock by hand to reach the transaction-level check.
	account, _ := l.Account(1)
	account.Locked = false
	require.ErrorIs(t, l.Apply(ref(types.Dispute, 1, 1)), ErrChargedBack)
}

func TestReplayAndWriteCSV(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,2,1,1.00005\n" +
		"deposit,1,2,2.0\n" +
		"deposit,1,3,3.12345\n" +
		"withdrawal,2,4,5\n" +
		"dispute,1,3,0\n" +
		"chargeback,1,3,0\n"

	parser, err := csvparser.NewReader(strings.NewReader(input))
	require.NoError(t, err)

	l := New(nil)
	require.NoError(t, l.Replay(parser))

	stats := l.Stats()
	assert.Equal(t, 5, stats.Applied)
	assert.Equal(t, 1, stats.Rejected)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, l.Snapshots()))

	assert.Equal(t, "client,available,held,total,locked\n"+
		"1,2,0,2,true\n"+
		"2,1.0001,0,1.0001,false\n", buf.String())
}

func TestReplayStopsOnMalformedRow(t *testing.T) {
	parser, err := csvparser.NewReader(strings.NewReader("type,client,tx,amount\ndeposit,1,1,5\nrefund,1,2,5\n"))
	require.NoError(t, err)

	l := New(nil)
	err = l.Replay(parser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	requireBalances(t, l, 1, "5", "0", false)
}

func TestReplayGeneratedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.csv")
	gen := generator.NewSeeded(11, generator.Bounds{ClientMax: 20, TxMax: 200, AmountMax: 1000})

	_, err := csvwriter.Write(path, 5000, gen, csvwriter.DefaultOptions())
	require.NoError(t, err)

	parser, err := csvparser.NewStreamingParser(path)
	require.NoError(t, err)
	defer parser.Close()

	l := New(nil)
	require.NoError(t, l.Replay(parser))

	stats := l.Stats()
	assert.Equal(t, 5000, stats.Applied+stats.Rejected)
	assert.Positive(t, stats.Applied)

	for _, s := range l.Snapshots() {
		assert.True(t, s.Available.Add(s.Held).Sub(s.Total).Abs().LessThanOrEqual(dec("0.0002")),
			"client %d: %s + %s != %s", s.Client, s.Available, s.Held, s.Total)
	}
}

func TestFromRowKeepsAmountPrecision(t *testing.T) {
	tx, err := FromRow(types.Row{
		Line:   2,
		Raw:    [4]string{"deposit", "1", "1", "12345.678901234567"},
		Record: types.Record{Type: types.Deposit, Client: 1, Tx: 1, Amount: 12345.678901234567},
	})
	require.NoError(t, err)
	assert.Equal(t, "12345.678901234567", tx.Amount.String())

	tx, err = FromRow(types.Row{Raw: [4]string{"dispute", "1", "1", ""}, Record: types.Record{Type: types.Dispute, Client: 1, Tx: 1}})
	require.NoError(t, err)
	assert.True(t, tx.Amount.IsZero())
}
