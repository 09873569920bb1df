package host

import (
	"context"

	"github.com/smallbiznis/onclick/internal/money"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// Transferer moves native value out of the ledger to an identity. Any error
// aborts the calling operation.
type Transferer interface {
	Transfer(ctx context.Context, to Identity, amount money.Amount) error
}

// TransferFunc adapts a function to Transferer.
type TransferFunc func(ctx context.Context, to Identity, amount money.Amount) error

func (f TransferFunc) Transfer(ctx context.Context, to Identity, amount money.Amount) error {
	return f(ctx, to, amount)
}

// LogTransferer records transfers without moving funds. Used when the daemon
// runs without a settlement backend.
type LogTransferer struct {
	log *zap.Logger
}

func NewLogTransferer(log *zap.Logger) *LogTransferer {
	return &LogTransferer{log: log.Named("host.transfer")}
}

func (t *LogTransferer) Transfer(ctx context.Context, to Identity, amount money.Amount) error {
	t.log.Info("transfer",
		zap.String("to", to.String()),
		zap.String("amount", amount.String()),
	)
	return nil
}

// Hasher derives 32-byte identifiers.
type Hasher interface {
	Sum256(data []byte) [32]byte
}

// Keccak256 is the legacy Keccak-256 hash (pre-NIST padding).
type Keccak256 struct{}

func (Keccak256) Sum256(data []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	h.Sum(out[:0])
	return out
}
