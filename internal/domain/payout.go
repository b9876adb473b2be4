package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "Pending"
	TicketStatusApproved TicketStatus = "Approved"
	TicketStatusDenied   TicketStatus = "Denied"
)

var DefaultPayoutRate = decimal.RequireFromString("0.001")

type PayoutTicket struct {
	TicketID     string
	UserID       string
	Username     string
	CampaignID   string
	CampaignName string
	Views        int64
	Rate         decimal.Decimal
	Amount       decimal.Decimal
	Status       TicketStatus
	ChannelID    string
	ChannelName  string
	CreatedAt    time.Time
}

// PayoutAmount is views*rate rounded half away from zero to cents.
func PayoutAmount(views int64, rate decimal.Decimal) decimal.Decimal {
	if views < 0 {
		views = 0
	}
	return decimal.NewFromInt(views).Mul(rate).Round(2)
}

func TicketChannelName(username string) string {
	return strings.ToLower("payout-" + strings.TrimSpace(username))
}

func FormatTicketMessage(t PayoutTicket, mention string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📌 **Payout Request for %s**\n", mention)
	fmt.Fprintf(&b, "📊 **Views:** %d\n", t.Views)
	fmt.Fprintf(&b, "💰 **Requested Amount:** $%s\n", t.Amount.StringFixed(2))
	fmt.Fprintf(&b, "🔍 **Campaign:** %s\n\n", t.CampaignName)
	fmt.Fprintf(&b, "🔹 **Admins & Server Team**, use `/approvepayout @%s` to approve.\n", t.Username)
	fmt.Fprintf(&b, "❌ Use `/closepayout @%s` to deny.", t.Username)
	return b.String()
}
