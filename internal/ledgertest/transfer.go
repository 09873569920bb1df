package ledgertest

import (
	"context"
	"sync"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
)

type Transfer struct {
	To     host.Identity
	Amount money.Amount
}

// RecordingTransferer remembers every transfer it accepts. After FailWith it
// rejects transfers until FailWith(nil).
type RecordingTransferer struct {
	mu        sync.Mutex
	transfers []Transfer
	fail      error
}

func (r *RecordingTransferer) Transfer(ctx context.Context, to host.Identity, amount money.Amount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.transfers = append(r.transfers, Transfer{To: to, Amount: amount})
	return nil
}

func (r *RecordingTransferer) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *RecordingTransferer) Transfers() []Transfer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Transfer, len(r.transfers))
	copy(out, r.transfers)
	return out
}

// Total sums what was sent to id.
func (r *RecordingTransferer) Total(id host.Identity) money.Amount {
	var total money.Amount
	for _, tr := range r.Transfers() {
		if tr.To == id {
			total, _ = total.Add(tr.Amount)
		}
	}
	return total
}
