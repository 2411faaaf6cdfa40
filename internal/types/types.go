// =============================================================================
// txgen - Shared Types
// =============================================================================
//
// This package contains the transaction types shared by the generator, the
// CSV writer and reader, the validator and the ledger. Keeping them here
// avoids import cycles between those packages.
//
// =============================================================================

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// TRANSACTION KINDS
// =============================================================================

// Kind is the value of a record's "type" field.
type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
	Dispute    Kind = "dispute"
	Resolve    Kind = "resolve"
	Chargeback Kind = "chargeback"
)

// Kinds lists every transaction kind in selector order.
var Kinds = [...]Kind{Deposit, Withdrawal, Dispute, Resolve, Chargeback}

// ParseKind converts a field value to a Kind. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return true
	}
	return false
}

// CarriesAmount reports whether records of this kind have a nonzero amount.
func (k Kind) CarriesAmount() bool {
	return k == Deposit || k == Withdrawal
}

func (k Kind) String() string { return string(k) }

// =============================================================================
// RECORD
// =============================================================================

// Header is the output header row. Its order matches the field order of
// Record and of Record.Fields.
var Header = []string{"type", "client", "tx", "amount"}

// Record is one synthesized transaction.
type Record struct {
	Type   Kind
	Client int
	Tx     int
	// Amount is zero for dispute, resolve and chargeback.
	Amount float64
}

// Fields returns the textual encoding of the record in Header order.
func (r Record) Fields() []string {
	return r.AppendFields(make([]string, 0, len(Header)))
}

// AppendFields appends the encoded fields to dst and returns the extended
// slice. The writer reuses one buffer across rows with this.
func (r Record) AppendFields(dst []string) []string {
	return append(dst,
		string(r.Type),
		strconv.Itoa(r.Client),
		strconv.Itoa(r.Tx),
		FormatAmount(r.Amount),
	)
}

// FormatAmount renders an amount in the shortest decimal form that
// round-trips, never in exponent notation. Zero renders as "0".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// PARSED ROW
// =============================================================================

// Row is a record read back from a transaction file.
type Row struct {
	// Line is the 1-based line number in the source file.
	Line int

	// Raw holds the trimmed field values in Header order.
	Raw [4]string

	Record Record

	// Err is set when one or more fields failed to parse. Record then holds
	// whatever fields did parse.
	Err error
}
