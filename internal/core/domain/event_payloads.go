package domain

// TicketSnapshot matches the API response shape for tickets.
type TicketSnapshot struct {
	TicketID     string  `json:"ticketId"`
	EventName    string  `json:"eventName"`
	Price        float64 `json:"price"`
	TimeDuration string  `json:"timeDuration"`
	Date         string  `json:"date"`
	VendorID     string  `json:"vendorId"`
	Status       string  `json:"status"`
	CustomerID   *string `json:"customerId"`
}

// NewTicketSnapshot builds a ticket snapshot from a domain ticket.
func NewTicketSnapshot(ticket *Ticket) TicketSnapshot {
	var customerID *string
	if ticket.CustomerID != "" {
		value := ticket.CustomerID
		customerID = &value
	}

	return TicketSnapshot{
		TicketID:     ticket.ID,
		EventName:    ticket.EventName,
		Price:        ticket.Price,
		TimeDuration: ticket.TimeDuration,
		Date:         ticket.Date,
		VendorID:     ticket.VendorID,
		Status:       string(ticket.Status),
		CustomerID:   customerID,
	}
}

// EventStatusCount is one row of the event × status aggregation.
type EventStatusCount struct {
	EventName string       `json:"eventName"`
	Status    TicketStatus `json:"status"`
	Count     int          `json:"count"`
}
