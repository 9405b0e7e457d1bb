package shared

import (
	"errors"
	"strings"
)

var (
	ErrInvalidEntryKind = errors.New("invalid entry kind")
)

// EntryKind distinguishes revenue rows from expense rows
type EntryKind string

const (
	EntryKindRevenue EntryKind = "REVENUE"
	EntryKindExpense EntryKind = "EXPENSE"
)

// ParseEntryKind accepts the canonical names and the Portuguese table names
func ParseEntryKind(s string) (EntryKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REVENUE", "RECEITA", "RECEITAS":
		return EntryKindRevenue, nil
	case "EXPENSE", "DESPESA", "DESPESAS":
		return EntryKindExpense, nil
	}
	return "", ErrInvalidEntryKind
}

// EntryStatus is the settlement state recorded by the back-office screens
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusSettled   EntryStatus = "SETTLED"
	EntryStatusCancelled EntryStatus = "CANCELLED"
)

var settledLabels = map[string]bool{
	"PAGO": true, "PAGA": true, "PAID": true, "RECEBIDO": true, "RECEBIDA": true,
	"QUITADO": true, "QUITADA": true, "LIQUIDADO": true, "SETTLED": true,
}

var cancelledLabels = map[string]bool{
	"CANCELADO": true, "CANCELADA": true, "CANCELLED": true, "CANCELED": true,
	"ESTORNADO": true, "ESTORNADA": true,
}

// ParseEntryStatus maps the free-text status column to an EntryStatus.
// Unknown values are PENDING.
func ParseEntryStatus(s string) EntryStatus {
	key := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case settledLabels[key]:
		return EntryStatusSettled
	case cancelledLabels[key]:
		return EntryStatusCancelled
	default:
		return EntryStatusPending
	}
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
