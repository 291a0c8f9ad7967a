package domain

import "github.com/Abdelhameed97/bookshare-sub001/internal/money"

// BookSnapshot carries the presentation fields captured with a cart line
// item, so the cart stays renderable even if the listing changes.
type BookSnapshot struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Thumbnail string `json:"thumbnail"`
}

type CartItem struct {
	ID        string       `json:"id"`
	BookID    string       `json:"book_id"`
	UnitPrice money.Money  `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	Book      BookSnapshot `json:"book"`
}

// Orphaned reports whether the backing book no longer exists. Such items
// are dropped on the next cart load.
func (i CartItem) Orphaned() bool {
	return i.BookID == ""
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() money.Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// Subtotal sums line totals; it is invariant under item ordering.
func Subtotal(items []CartItem) money.Money {
	total := money.Zero()
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
