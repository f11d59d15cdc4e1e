package report

import (
	"food-court-api/models"
)

// CustomerOrders is the admin view of one customer's pre-orders.
type CustomerOrders struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	TotalItems  int               `json:"total_items"`
	TotalAmount int               `json:"total_amount"`
	Orders      []models.PreOrder `json:"orders"`
}

// GroupByCustomer groups pre-orders by their owner's email, keeping the order
// in which customers first appear. Rows without a loaded user are skipped.
// TotalItems counts order rows; TotalAmount sums price x quantity over lines
// whose menu item is loaded.
func GroupByCustomer(orders []models.PreOrder) []CustomerOrders {
	groups := []CustomerOrders{}
	index := map[string]int{}

	for _, o := range orders {
		if o.User == nil {
			continue
		}
		i, ok := index[o.User.Email]
		if !ok {
			i = len(groups)
			index[o.User.Email] = i
			groups = append(groups, CustomerOrders{
				Name:   o.User.Name,
				Email:  o.User.Email,
				Orders: []models.PreOrder{},
			})
		}

		g := &groups[i]
		g.TotalItems++
		if o.MenuItem != nil {
			g.TotalAmount += o.MenuItem.Price * o.Quantity
		}
		g.Orders = append(g.Orders, o)
	}
	return groups
}
