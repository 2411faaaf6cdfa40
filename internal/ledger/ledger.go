// =============================================================================
// txgen - Ledger Replay
// =============================================================================
//
// This module replays a transaction file against per-client accounts and
// reports the final balances. It is the consumer the generated files are
// made for.
//
// RULES:
//   deposit     available += amount
//   withdrawal  available -= amount, only if available >= amount
//   dispute     the referenced deposit or withdrawal moves from available
//               to held
//   resolve     a disputed transaction moves back from held to available
//   chargeback  a disputed transaction leaves held; the account is locked
//
//   dispute, resolve and chargeback reference an earlier deposit or
//   withdrawal by its tx id, and must come from the same client. Deposit and
//   withdrawal ids must be unique. Nothing is allowed on a locked account.
//
// A transaction that breaks a rule is rejected and counted; the replay
// carries on. A row that cannot be parsed stops the replay.
//
// =============================================================================

package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/txgen/internal/types"
)

// OutputPlaces is the number of decimal places in reported balances.
const OutputPlaces = 4

// =============================================================================
// TRANSACTIONS
// =============================================================================

// Transaction is one ledger operation.
type Transaction struct {
	Kind   types.Kind
	Client int
	Tx     int

	// Amount is only used by deposits and withdrawals.
	Amount decimal.Decimal
}

// FromRow converts a parsed file row. The amount is taken from the raw text
// so no precision is lost to float conversion.
func FromRow(row types.Row) (Transaction, error) {
	if row.Err != nil {
		return Transaction{}, fmt.Errorf("line %d: %w", row.Line, row.Err)
	}

	tx := Transaction{
		Kind:   row.Record.Type,
		Client: row.Record.Client,
		Tx:     row.Record.Tx,
	}

	if tx.Kind.CarriesAmount() {
		amount, err := decimal.NewFromString(row.Raw[3])
		if err != nil {
			return Transaction{}, fmt.Errorf("line %d: invalid amount %q: %w", row.Line, row.Raw[3], err)
		}
		tx.Amount = amount
	}

	return tx, nil
}

type txState int

const (
	stateSettled txState = iota
	stateDisputed
	stateChargedBack
)

// entry is a stored deposit or withdrawal.
type entry struct {
	client int
	amount decimal.Decimal
	state  txState
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger holds every account and the disputable transaction history.
type Ledger struct {
	accounts map[int]*Account
	history  map[int]*entry
	logger   logrus.FieldLogger
	stats    Stats
}

// Stats counts what happened during a replay.
type Stats struct {
	Applied  int
	Rejected int

	// Reasons counts rejections by their sentinel error text.
	Reasons map[string]int
}

// New returns an empty ledger. A nil logger discards rejection logs.
func New(logger logrus.FieldLogger) *Ledger {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Ledger{
		accounts: make(map[int]*Account),
		history:  make(map[int]*entry),
		logger:   logger,
		stats:    Stats{Reasons: make(map[string]int)},
	}
}

// Apply runs one transaction. A returned error means the transaction was
// rejected and the ledger is unchanged, apart from the client's account
// existing.
func (l *Ledger) Apply(tx Transaction) error {
	account := l.account(tx.Client)

	var err error
	switch tx.Kind {
	case types.Deposit:
		err = l.record(tx, account.deposit)
	case types.Withdrawal:
		err = l.record(tx, account.withdraw)
	case types.Dispute:
		err = l.dispute(tx, account)
	case types.Resolve:
		err = l.resolve(tx, account)
	case types.Chargeback:
		err = l.chargeback(tx, account)
	default:
		err = fmt.Errorf("unknown transaction type %q", tx.Kind)
	}

	if err != nil {
		l.stats.Rejected++
		l.stats.Reasons[reason(err)]++
		return err
	}

	l.stats.Applied++
	return nil
}

func (l *Ledger) account(client int) *Account {
	account, ok := l.accounts[client]
	if !ok {
		account = &Account{Client: client}
		l.accounts[client] = account
	}
	return account
}

// record applies a deposit or withdrawal and stores it for later disputes.
func (l *Ledger) record(tx Transaction, apply func(decimal.Decimal) error) error {
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("tx %d: %w", tx.Tx, ErrInvalidAmount)
	}
	if _, seen := l.history[tx.Tx]; seen {
		return fmt.Errorf("tx %d: %w", tx.Tx, ErrDuplicateTx)
	}

	if err := apply(tx.Amount); err != nil {
		return err
	}

	l.history[tx.Tx] = &entry{client: tx.Client, amount: tx.Amount}
	return nil
}

// referenced looks up the transaction a dispute, resolve or chargeback
// points at.
func (l *Ledger) referenced(tx Transaction) (*entry, error) {
	ref, ok := l.history[tx.Tx]
	if !ok {
		return nil, fmt.Errorf("tx %d: %w", tx.Tx, ErrUnknownTx)
	}
	if ref.client != tx.Client {
		return nil, fmt.Errorf("tx %d belongs to client %d, not %d: %w", tx.Tx, ref.client, tx.Client, ErrClientMismatch)
	}
	return ref, nil
}

func (l *Ledger) dispute(tx Transaction, account *Account) error {
	if err := account.ready(); err != nil {
		return err
	}
	ref, err := l.referenced(tx)
	if err != nil {
		return err
	}

	switch ref.state {
	case stateDisputed:
		return fmt.Errorf("tx %d: %w", tx.Tx, ErrAlreadyDisputed)
	case stateChargedBack:
		return fmt.Errorf("tx %d: %w", tx.Tx, ErrChargedBack)
	}

	if err := account.hold(ref.amount); err != nil {
		return err
	}
	ref.state = stateDisputed
	return nil
}

func (l *Ledger) resolve(tx Transaction, account *Account) error {
	if err := account.ready(); err != nil {
		return err
	}
	ref, err := l.referenced(tx)
	if err != nil {
		return err
	}
	if ref.state != stateDisputed {
		return fmt.Errorf("tx %d: %w", tx.Tx, ErrNotDisputed)
	}

	if err := account.release(ref.amount); err != nil {
		return err
	}
	ref.state = stateSettled
	return nil
}

func (l *Ledger) chargeback(tx Transaction, account *Account) error {
	if err := account.ready(); err != nil {
		return err
	}
	ref, err := l.referenced(tx)
	if err != nil {
		return err
	}
	if ref.state != stateDisputed {
		return fmt.Errorf("tx %d: %w", tx.Tx, ErrNotDisputed)
	}

	if err := account.chargeback(ref.amount); err != nil {
		return err
	}
	ref.state = stateChargedBack
	return nil
}

// reason maps an error to the sentinel it wraps.
func reason(err error) string {
	for _, sentinel := range []error{
		ErrAccountLocked, ErrClientMismatch, ErrInsufficientFunds, ErrInvalidAmount,
		ErrDuplicateTx, ErrUnknownTx, ErrAlreadyDisputed, ErrNotDisputed, ErrChargedBack,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "other"
}

// Stats returns the replay counters.
func (l *Ledger) Stats() Stats {
	return l.stats
}

// Account returns the account of client, if it exists.
func (l *Ledger) Account(client int) (*Account, bool) {
	account, ok := l.accounts[client]
	return account, ok
}

// =============================================================================
// REPLAY
// =============================================================================

// RowSource yields parsed rows. *csvparser.StreamingParser satisfies it.
type RowSource interface {
	Next() bool
	Row() types.Row
	Err() error
}

// Replay applies every row from src in order.
func (l *Ledger) Replay(src RowSource) error {
	for src.Next() {
		row := src.Row()

		tx, err := FromRow(row)
		if err != nil {
			return err
		}

		if err := l.Apply(tx); err != nil {
			l.logger.WithFields(logrus.Fields{
				"line":   row.Line,
				"type":   tx.Kind,
				"client": tx.Client,
				"tx":     tx.Tx,
			}).WithError(err).Debug("transaction rejected")
		}
	}

	if err := src.Err(); err != nil {
		return fmt.Errorf("failed to read transactions: %w", err)
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// Snapshot is a reported account state, rounded to OutputPlaces.
type Snapshot struct {
	Client    int
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Snapshots returns every account ordered by client id.
func (l *Ledger) Snapshots() []Snapshot {
	clients := make([]int, 0, len(l.accounts))
	for client := range l.accounts {
		clients = append(clients, client)
	}
	sort.Ints(clients)

	out := make([]Snapshot, 0, len(clients))
	for _, client := range clients {
		a := l.accounts[client]
		out = append(out, Snapshot{
			Client:    client,
			Available: a.Available.Round(OutputPlaces),
			Held:      a.Held.Round(OutputPlaces),
			Total:     a.Total().Round(OutputPlaces),
			Locked:    a.Locked,
		})
	}
	return out
}

// SnapshotHeader is the header row of WriteCSV.
var SnapshotHeader = []string{"client", "available", "held", "total", "locked"}

// WriteCSV writes snapshots as client,available,held,total,locked rows.
func WriteCSV(w io.Writer, snapshots []Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(SnapshotHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range snapshots {
		if err := cw.Write([]string{
			strconv.Itoa(s.Client),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}); err != nil {
			return fmt.Errorf("failed to write client %d: %w", s.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
