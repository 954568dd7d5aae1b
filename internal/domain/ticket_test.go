package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{TicketStatusOpen, TicketStatusAssigned, true},
		{TicketStatusOpen, TicketStatusResolved, true},
		{TicketStatusAssigned, TicketStatusResolved, true},
		{TicketStatusResolved, TicketStatusOpen, true},
		{TicketStatusAssigned, TicketStatusOpen, false},
		{TicketStatusResolved, TicketStatusAssigned, false},
		{TicketStatusOpen, TicketStatusOpen, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestAnalyzed(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusOpen}
	require.False(t, ticket.Analyzed())

	category, severity, priority := "Infrastructure", "P1", "High"
	managerID := 4
	ticket.Category = &category
	ticket.Severity = &severity
	ticket.Priority = &priority
	require.False(t, ticket.Analyzed(), "manager still missing")

	ticket.AssignedManagerID = &managerID
	require.True(t, ticket.Analyzed())
}
