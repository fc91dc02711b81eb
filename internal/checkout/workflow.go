package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/cart"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
)

var (
	ErrEmptyCart          = errors.New("your cart is empty, please add items before placing an order")
	ErrUnsupportedPayment = errors.New("only Cash on Delivery is currently supported")
	ErrNotLoggedIn        = errors.New("please log in to place an order")
	ErrDuplicateOrder     = errors.New("order already placed")
	ErrInProgress         = errors.New("an order is already being placed for this cart")
)

// PaymentCOD is the only payment method accepted at submission.
const PaymentCOD = "cod"

// GuestEmail is recorded on orders placed without a logged-in customer.
const GuestEmail = "customer@example.com"

type State string

const (
	StateIdle       State = "Idle"
	StateSubmitting State = "Submitting"
	StateSuccess    State = "Success"
)

type Customer struct {
	Email    string `json:"email"`
	LoggedIn bool   `json:"loggedIn"`
}

type Shipping struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	House    string `json:"house"`
	Area     string `json:"area"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Country  string `json:"country"`
}

// Address joins the postal fields into the single line stored on the order.
func (s Shipping) Address() string {
	country := s.Country
	if country == "" {
		country = "India"
	}
	return strings.Join([]string{s.House, s.Area, s.City, s.State, country}, ", ")
}

type Request struct {
	Customer      Customer `json:"customer"`
	Shipping      Shipping `json:"shipping"`
	PaymentMethod string   `json:"paymentMethod"`
	// OrderID is normally left empty and generated; a client retrying a
	// submission can send the id it was given to avoid placing twice.
	OrderID string `json:"orderId,omitempty"`
}

type OrderInserter interface {
	Insert(ctx context.Context, o order.Order) (bool, error)
}

type Loyalty interface {
	Discount(ctx context.Context, email string, subtotal decimal.Decimal) (decimal.Decimal, error)
	UseLoyaltyCoupon(ctx context.Context, email string) error
	CheckLoyaltyStatus(ctx context.Context, email string) (bool, error)
}

type FunnelRecorder interface {
	RecordCheckout(ctx context.Context) error
}

type Config struct {
	// Delay simulates payment processing before the order is committed.
	Delay        time.Duration
	RequireLogin bool
}

// Workflow turns a cart session into an order.
type Workflow struct {
	orders  OrderInserter
	loyalty Loyalty
	funnel  FunnelRecorder
	cfg     Config
	now     func() time.Time

	mu     sync.Mutex
	states map[*cart.Session]State
}

func NewWorkflow(orders OrderInserter, loyalty Loyalty, funnel FunnelRecorder, cfg Config) *Workflow {
	return &Workflow{
		orders:  orders,
		loyalty: loyalty,
		funnel:  funnel,
		cfg:     cfg,
		now:     time.Now,
		states:  make(map[*cart.Session]State),
	}
}

// State reports where the session's last checkout attempt ended up.
func (w *Workflow) State(session *cart.Session) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.states[session]; ok {
		return st
	}
	return StateIdle
}

func (w *Workflow) setState(session *cart.Session, st State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.states[session] = st
}

// begin moves the session to Submitting unless it is already there.
func (w *Workflow) begin(session *cart.Session) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.states[session] == StateSubmitting {
		return ErrInProgress
	}
	w.states[session] = StateSubmitting
	return nil
}

func (w *Workflow) validate(session *cart.Session, req Request) error {
	if session.IsEmpty() {
		return ErrEmptyCart
	}
	if !strings.EqualFold(strings.TrimSpace(req.PaymentMethod), PaymentCOD) {
		return ErrUnsupportedPayment
	}
	if w.cfg.RequireLogin && !req.Customer.LoggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

// PlaceOrder validates the request, waits out the processing delay and
// commits the order. Loyalty bookkeeping and clearing the cart happen only
// after a new order was actually stored; any earlier failure leaves the
// cart and coupon untouched.
func (w *Workflow) PlaceOrder(ctx context.Context, session *cart.Session, req Request) (order.Order, error) {
	if w.funnel != nil {
		if err := w.funnel.RecordCheckout(ctx); err != nil {
			log.Printf("[Checkout] Failed to record funnel checkout: %v", err)
		}
	}

	if err := w.validate(session, req); err != nil {
		return order.Order{}, err
	}
	if err := w.begin(session); err != nil {
		return order.Order{}, err
	}

	placed, err := w.submit(ctx, session, req)
	if err != nil {
		w.setState(session, StateIdle)
		return order.Order{}, err
	}

	w.setState(session, StateSuccess)
	return placed, nil
}

func (w *Workflow) submit(ctx context.Context, session *cart.Session, req Request) (order.Order, error) {
	if w.cfg.Delay > 0 {
		timer := time.NewTimer(w.cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return order.Order{}, fmt.Errorf("checkout interrupted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	// The cart may have changed during the delay; order what is there now.
	items := session.Items()
	if len(items) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	loyaltyEmail := ""
	email := GuestEmail
	if req.Customer.LoggedIn && strings.TrimSpace(req.Customer.Email) != "" {
		loyaltyEmail = strings.TrimSpace(req.Customer.Email)
		email = loyaltyEmail
	}

	o := order.Order{
		ID:            req.OrderID,
		CustomerName:  req.Shipping.FullName,
		Email:         email,
		Phone:         req.Shipping.Phone,
		Address:       req.Shipping.Address(),
		Pincode:       req.Shipping.Pincode,
		Items:         make([]order.Item, 0, len(items)),
		PaymentMethod: order.PaymentCashOnDelivery,
		Status:        order.StatusPending,
		Date:          w.now(),
		Discount:      decimal.Zero,
	}
	if o.ID == "" {
		o.ID = order.NewID()
	}
	for _, li := range items {
		o.Items = append(o.Items, order.Item{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Price:     li.Price,
			Image:     li.Image,
		})
	}

	subtotal := o.Subtotal()
	if loyaltyEmail != "" {
		discount, err := w.loyalty.Discount(ctx, loyaltyEmail, subtotal)
		if err != nil {
			return order.Order{}, fmt.Errorf("failed to compute discount: %w", err)
		}
		o.Discount = discount
	}
	o.Total = subtotal.Sub(o.Discount)

	inserted, err := w.orders.Insert(ctx, o)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	if !inserted {
		return order.Order{}, ErrDuplicateOrder
	}

	log.Printf("[Checkout] Order %s placed: %d items, total %s", o.ID, len(o.Items), o.Total.StringFixed(2))

	// The order is committed from here on; bookkeeping failures are logged.
	ctx = context.WithoutCancel(ctx)
	if loyaltyEmail != "" {
		if o.HasDiscount() {
			if err := w.loyalty.UseLoyaltyCoupon(ctx, loyaltyEmail); err != nil {
				log.Printf("[Checkout] Failed to consume coupon for %s: %v", loyaltyEmail, err)
			}
		} else if _, err := w.loyalty.CheckLoyaltyStatus(ctx, loyaltyEmail); err != nil {
			log.Printf("[Checkout] Loyalty check failed for %s: %v", loyaltyEmail, err)
		}
	}

	session.RemoveLines(items)
	return o, nil
}
