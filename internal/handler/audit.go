package handler

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"stakeLedger/internal/keys"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
)

// onAudit appends an immutable record for proxy, ownership and bridge events.
func (p *Processor) onAudit(ctx context.Context, s *ledger.Session, ev model.Event) error {
	meta := ev.Meta()
	rec := model.AuditRecord{
		ID:              keys.LogEntry(meta.TxHash, meta.LogIndex),
		Kind:            ev.Name(),
		DepositPool:     meta.Recipient(),
		BlockNumber:     meta.BlockNumber,
		BlockTimestamp:  meta.Timestamp,
		TransactionHash: meta.TxHash,
	}

	switch e := ev.(type) {
	case model.AdminChanged:
		rec.Addresses = map[string]common.Address{"previous_admin": e.PreviousAdmin, "new_admin": e.NewAdmin}
	case model.BeaconUpgraded:
		rec.Addresses = map[string]common.Address{"beacon": e.Beacon}
	case model.Initialized:
		rec.Version = e.Version
	case model.OwnershipTransferred:
		rec.Addresses = map[string]common.Address{"previous_owner": e.PreviousOwner, "new_owner": e.NewOwner}
	case model.Upgraded:
		rec.Addresses = map[string]common.Address{"implementation": e.Implementation}
	case model.OverplusBridged:
		rec.Amount = amountOrZero(e.Amount)
		rec.UniqueID = e.UniqueID
	default:
		return fmt.Errorf("not an audit event: %T", ev)
	}

	_, err := s.AppendAudit(ctx, rec)
	return err
}
