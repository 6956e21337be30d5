package client

import (
	"context"
	"net/http"
	"net/url"
	"slices"
)

type CartState struct {
	Cart            []CartLine
	Coupon          *Coupon
	IsCouponApplied bool
	Subtotal        float64
	Total           float64
}

// WithTotals recomputes Subtotal and Total from the cart lines. Any coupon
// that is set discounts the total.
func (s CartState) WithTotals() CartState {
	var subtotal float64
	for _, l := range s.Cart {
		subtotal += l.Price * float64(l.Quantity)
	}
	total := subtotal
	if s.Coupon != nil {
		total -= total * s.Coupon.DiscountPercentage / 100
	}
	s.Subtotal = subtotal
	s.Total = total
	return s
}

// AddLine bumps the quantity of p or appends it with quantity 1.
func AddLine(cart []CartLine, p Product) []CartLine {
	out := slices.Clone(cart)
	for i := range out {
		if out[i].ID == p.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, CartLine{Product: p, Quantity: 1})
}

func RemoveLine(cart []CartLine, productID string) []CartLine {
	return slices.DeleteFunc(slices.Clone(cart), func(l CartLine) bool { return l.ID == productID })
}

type CartStore struct {
	*Store[CartState]
	api    *Client
	notify Notifier
}

func NewCartStore(api *Client, n Notifier) *CartStore {
	return &CartStore{Store: NewStore(CartState{}), api: api, notify: orNop(n)}
}

func (s *CartStore) setCart(cart []CartLine) {
	s.update(func(st CartState) CartState {
		st.Cart = cart
		return st.WithTotals()
	})
}

func (s *CartStore) FetchCart(ctx context.Context) error {
	var cart []CartLine
	if err := s.api.do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		s.notify.Error(messageOf(err, "Failed to fetch cart items. Please try again."))
		return err
	}
	s.setCart(cart)
	return nil
}

// AddToCart posts the product and merges it locally without refetching.
func (s *CartStore) AddToCart(ctx context.Context, p Product) error {
	if err := s.api.do(ctx, http.MethodPost, "/cart", map[string]string{"productId": p.ID}, nil); err != nil {
		s.notify.Error(messageOf(err, "Failed to add product to cart. Please try again."))
		return err
	}
	s.notify.Success("Product added to cart successfully!")
	s.update(func(st CartState) CartState {
		st.Cart = AddLine(st.Cart, p)
		return st.WithTotals()
	})
	return nil
}

func (s *CartStore) RemoveFromCart(ctx context.Context, productID string) error {
	if err := s.api.do(ctx, http.MethodDelete, "/cart", map[string]string{"productId": productID}, nil); err != nil {
		s.notify.Error(messageOf(err, "Failed to remove product from cart. Please try again."))
		return err
	}
	s.update(func(st CartState) CartState {
		st.Cart = RemoveLine(st.Cart, productID)
		return st.WithTotals()
	})
	return nil
}

// UpdateQuantity removes the line for quantity 0. Any other quantity is
// sent to the server and the cart is then fetched again.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity == 0 {
		return s.RemoveFromCart(ctx, productID)
	}
	if err := s.api.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), map[string]int{"quantity": quantity}, nil); err != nil {
		s.notify.Error(messageOf(err, "Failed to update quantity. Please try again."))
		return err
	}
	return s.FetchCart(ctx)
}

func (s *CartStore) ClearCart(ctx context.Context) error {
	if err := s.api.do(ctx, http.MethodDelete, "/cart", nil, nil); err != nil {
		s.notify.Error(messageOf(err, "Failed to clear cart. Please try again."))
		return err
	}
	s.update(func(st CartState) CartState {
		st.Cart = nil
		st.Coupon = nil
		st.IsCouponApplied = false
		return st.WithTotals()
	})
	return nil
}

// GetMyCoupon loads the user's active coupon. IsCouponApplied stays as it
// was; it only records that the user entered the code.
func (s *CartStore) GetMyCoupon(ctx context.Context) (*Coupon, error) {
	var coupon *Coupon
	if err := s.api.do(ctx, http.MethodGet, "/coupons", nil, &coupon); err != nil {
		s.notify.Error(messageOf(err, "Failed to fetch coupon."))
		return nil, err
	}
	s.update(func(st CartState) CartState {
		st.Coupon = coupon
		return st.WithTotals()
	})
	return coupon, nil
}

func (s *CartStore) ApplyCoupon(ctx context.Context, code string) error {
	var coupon Coupon
	if err := s.api.do(ctx, http.MethodPost, "/coupons/validate", map[string]string{"code": code}, &coupon); err != nil {
		s.notify.Error(messageOf(err, "Failed to apply coupon"))
		return err
	}
	coupon.IsActive = true
	s.update(func(st CartState) CartState {
		st.Coupon = &coupon
		st.IsCouponApplied = true
		return st.WithTotals()
	})
	s.notify.Success("Coupon applied successfully")
	return nil
}

func (s *CartStore) RemoveCoupon() {
	s.update(func(st CartState) CartState {
		st.Coupon = nil
		st.IsCouponApplied = false
		return st.WithTotals()
	})
	s.notify.Success("Coupon removed")
}
