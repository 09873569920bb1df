package domain

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
)

// ID is the 32-byte keccak256 derived intent identifier.
type ID [32]byte

func ParseID(s string) (ID, error) {
	var id ID
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != len(id)*2 {
		return id, fmt.Errorf("invalid intent id %q", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid intent id: %w", err)
	}
	return id, nil
}

func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id ID) Value() (driver.Value, error) {
	return id.String(), nil
}

func (id *ID) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into intent id", src)
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (ID) GormDataType() string { return "string" }
