package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	ledgerdomain "github.com/smallbiznis/onclick/internal/ledger/domain"
	"github.com/smallbiznis/onclick/internal/money"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"gorm.io/gorm"
)

// Flow names a settle path for metrics.
type Flow string

const (
	FlowDonation     Flow = "donation"
	FlowPurchase     Flow = "purchase"
	FlowContribution Flow = "contribution"
	FlowIntent       Flow = "intent"
)

type SettleInput struct {
	Payer            host.Identity
	Page             *pagedomain.Page
	Gross            money.Amount
	MessageReference string
	ProductID        *uint64
	// CreditPage adds net to amountRaised and counts a supporter.
	CreditPage bool
}

// Settlement is the staged outcome of one settle sequence.
type Settlement struct {
	Transaction *ledgerdomain.Transaction
	Fee         money.Amount
	Net         money.Amount
}

// Settler stages the fee split, counters, treasury accrual and ledger
// append on tx. It never transfers; callers stage their event and then
// transfer Net last.
type Settler interface {
	Settle(ctx context.Context, tx *gorm.DB, in SettleInput) (*Settlement, error)
}

type Service interface {
	Donate(ctx context.Context, call host.Call, handle, messageReference string) (uint64, error)
	Purchase(ctx context.Context, call host.Call, handle string, productID uint64) (uint64, error)
	Contribute(ctx context.Context, call host.Call, handle, messageReference string) (uint64, error)
	Withdraw(ctx context.Context, call host.Call, handle string, amount money.Amount) error
}

// TransferEvent builds the payload shared by the donation style events.
func TransferEvent(typ events.EventType, payer host.Identity, page *pagedomain.Page, s *Settlement, messageReference string) events.Event {
	return events.Event{
		Type: typ,
		Payload: map[string]any{
			"from":              payer.String(),
			"to":                page.Owner.String(),
			"handle":            page.Handle,
			"amount":            s.Net.String(),
			"fee":               s.Fee.String(),
			"transaction_id":    s.Transaction.ID,
			"message_reference": messageReference,
		},
	}
}
