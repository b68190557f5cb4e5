package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesWindow aggregates invoices billed in a date window.
type SalesWindow struct {
	Invoices int             `json:"invoices"`
	Total    decimal.Decimal `json:"total"`
}

// Counts are the store-wide record counts shown on the dashboard.
type Counts struct {
	Products        int   `json:"products"`
	Invoices        int   `json:"invoices"`
	OrdersPlaced    int   `json:"orders_placed"`
	OrdersReceived  int   `json:"orders_received"`
	OrdersCancelled int   `json:"orders_cancelled"`
	HoldingLines    int   `json:"holding_lines"`
	HeldUnits       int64 `json:"held_units"`
	PendingTokens   int   `json:"pending_tokens"`
	EmptyTokens     int   `json:"empty_tokens"`
	LowStock        int   `json:"low_stock"`
}

// Summary is the landing page snapshot.
type Summary struct {
	AsOf       time.Time   `json:"as_of"`
	Today      SalesWindow `json:"today"`
	Yesterday  SalesWindow `json:"yesterday"`
	Last7Days  SalesWindow `json:"last_7_days"`
	Last30Days SalesWindow `json:"last_30_days"`
	Counts
}
