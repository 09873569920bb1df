// Package host declares the collaborators the ledger depends on: the calling
// identity and its attached value, native value transfer and the hash used to
// derive identifiers.
package host

import (
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/onclick/internal/money"
)

// IdentityLength is the byte length of an account identity.
const IdentityLength = 20

// Identity is a 20-byte account address. The zero identity is a valid value.
type Identity [IdentityLength]byte

var errInvalidIdentity = errors.New("invalid_identity")

// ParseIdentity reads a hex identity with or without the 0x prefix.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != IdentityLength*2 {
		return id, fmt.Errorf("%w: %q", errInvalidIdentity, s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("%w: %v", errInvalidIdentity, err)
	}
	return id, nil
}

// MustParseIdentity is ParseIdentity for constants.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identity) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Value stores the identity as its 0x-hex string.
func (id Identity) Value() (driver.Value, error) {
	return id.String(), nil
}

func (id *Identity) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseIdentity(v)
		if err != nil {
			return err
		}
		*id = parsed
	case []byte:
		parsed, err := ParseIdentity(string(v))
		if err != nil {
			return err
		}
		*id = parsed
	default:
		return fmt.Errorf("host: cannot scan %T into Identity", src)
	}
	return nil
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Call carries the invoking identity and the value attached to an operation.
type Call struct {
	Caller Identity
	Value  money.Amount
}

// NewCall builds a Call without attached value.
func NewCall(caller Identity) Call {
	return Call{Caller: caller}
}

// WithValue returns a copy of c carrying value.
func (c Call) WithValue(value money.Amount) Call {
	c.Value = value
	return c
}

// GormDataType stores identities in string columns.
func (Identity) GormDataType() string { return "string" }
