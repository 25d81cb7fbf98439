package cart

import "github.com/shopspring/decimal"

// LineView is a cart line with its computed total.
type LineView struct {
	LineItem
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is what the cart UI renders. It is recomputed on every request.
type View struct {
	Items      []LineView      `json:"items"`
	ItemsCount int             `json:"items_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Empty      bool            `json:"empty"`
}

func NewView(items []LineItem) View {
	v := View{Items: make([]LineView, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		lt := it.LineTotal()
		v.Items = append(v.Items, LineView{LineItem: it, LineTotal: lt})
		v.ItemsCount += it.Quantity
		v.Subtotal = v.Subtotal.Add(lt)
	}
	v.Empty = len(items) == 0
	return v
}
