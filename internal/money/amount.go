// Package money holds the unsigned 256-bit amount type used for every value
// the ledger records, and the platform fee split.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// BasisPointsDenominator is 100% expressed in basis points.
const BasisPointsDenominator = 10000

// Amount is an unsigned 256-bit integer. The zero value is 0.
type Amount struct {
	v uint256.Int
}

// New returns an Amount holding v.
func New(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// FromUint256 copies v into an Amount.
func FromUint256(v *uint256.Int) Amount {
	var a Amount
	if v != nil {
		a.v.Set(v)
	}
	return a
}

// Parse reads a base-10 amount.
func Parse(s string) (Amount, error) {
	var a Amount
	if err := a.setDecimal(s); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) IsZero() bool { return a.v.IsZero() }

// Cmp returns -1, 0 or +1 as a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

func (a Amount) Eq(b Amount) bool { return a.v.Eq(&b.v) }

func (a Amount) Lt(b Amount) bool { return a.v.Lt(&b.v) }

func (a Amount) Gt(b Amount) bool { return a.v.Gt(&b.v) }

// Add returns a+b and whether the sum wrapped past 2^256-1.
func (a Amount) Add(b Amount) (Amount, bool) {
	var z Amount
	_, overflow := z.v.AddOverflow(&a.v, &b.v)
	return z, overflow
}

// Sub returns a-b and whether the difference went below zero.
func (a Amount) Sub(b Amount) (Amount, bool) {
	var z Amount
	_, underflow := z.v.SubOverflow(&a.v, &b.v)
	return z, underflow
}

// Uint256 returns a copy of the underlying integer.
func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

// Bytes32 is the big-endian 32-byte encoding.
func (a Amount) Bytes32() [32]byte { return a.v.Bytes32() }

// LittleEndian32 is the little-endian 32-byte encoding.
func (a Amount) LittleEndian32() [32]byte {
	be := a.v.Bytes32()
	var le [32]byte
	for i := range be {
		le[i] = be[31-i]
	}
	return le
}

func (a Amount) String() string { return a.v.Dec() }

// SplitFee divides gross into the platform fee and the payee's net share:
// fee = floor(gross * basisPoints / 10000), net = gross - fee. The product is
// computed at 512 bits so the result is exact over the whole 256-bit range.
// basisPoints above 10000 are treated as 10000.
func SplitFee(gross Amount, basisPoints uint64) (fee Amount, net Amount) {
	if basisPoints > BasisPointsDenominator {
		basisPoints = BasisPointsDenominator
	}
	bps := uint256.NewInt(basisPoints)
	denom := uint256.NewInt(BasisPointsDenominator)
	fee.v.MulDivOverflow(&gross.v, bps, denom)
	net.v.Sub(&gross.v, &fee.v)
	return fee, net
}

// Value stores the amount as a base-10 string so every dialect round-trips
// the full 256-bit range.
func (a Amount) Value() (driver.Value, error) {
	return a.v.Dec(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		a.v.Clear()
		return nil
	case string:
		return a.setDecimal(v)
	case []byte:
		return a.setDecimal(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("money: negative amount %d", v)
		}
		a.v.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T into Amount", src)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("money: amount must be a decimal string: %w", err)
	}
	return a.setDecimal(s)
}

func (a *Amount) setDecimal(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		a.v.Clear()
		return nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return fmt.Errorf("money: parse %q: %w", s, err)
	}
	a.v.Set(v)
	return nil
}

// GormDataType stores amounts in string columns.
func (Amount) GormDataType() string { return "string" }
