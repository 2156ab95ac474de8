package domain

const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusInTransit = "in transit"
	StatusDelivered = "delivered"
	StatusReturned  = "returned"
)

var orderStatuses = map[string]bool{
	StatusPending:   true,
	StatusShipped:   true,
	StatusInTransit: true,
	StatusDelivered: true,
	StatusReturned:  true,
}

// statusFlow is the directed transition graph used only when strict status
// flow is enabled. The default behavior validates membership only, so admins
// can jump statuses freely.
var statusFlow = map[string][]string{
	StatusPending:   {StatusShipped},
	StatusShipped:   {StatusInTransit, StatusReturned},
	StatusInTransit: {StatusDelivered, StatusReturned},
	StatusDelivered: {StatusReturned},
	StatusReturned:  {},
}

func ValidStatus(s string) bool { return orderStatuses[s] }

func CanTransition(from, to string) bool {
	for _, next := range statusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}
