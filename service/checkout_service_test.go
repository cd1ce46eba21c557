package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troop-fundraiser/models"
	"troop-fundraiser/session"
)

func validCheckout() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "555-0100",
	}
}

func fillCart(t *testing.T, f *fixture, values session.Values) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.Add(ctx, values, "caramel-corn", 2)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, values, "kettle-corn", 1)
	require.NoError(t, err)
}

func TestCheckoutService_AttributedOrder(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	scout := testScout("s1", "sam-rivera", true)
	scout.Email = "sam@example.com"
	f.addScout(t, scout)
	ctx := context.Background()
	values := newTestValues("buyer")

	_, err := f.attribution.Resolve(ctx, values, "sam-rivera")
	require.NoError(t, err)
	fillCart(t, f, values)

	resp, err := f.checkout.Submit(ctx, values, validCheckout())
	require.NoError(t, err)
	assert.True(t, resp.Persisted)
	assert.Equal(t, "s1", resp.Order.ScoutIDValue())
	assert.Equal(t, models.Money(8250), resp.Order.Total)
	assert.True(t, resp.Order.TotalMatchesItems())
	assert.Equal(t, models.OrderStatusPending, resp.Order.Status)
	assert.Equal(t, models.ChannelOnline, resp.Order.Type)
	assert.NotNil(t, resp.Payment)

	stored, err := f.orders.Get(ctx, resp.Order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, resp.Order.Total, stored.Total)
	assert.Len(t, stored.Items, 2)

	cart, err := f.carts.Get(ctx, values)
	require.NoError(t, err)
	assert.Equal(t, models.CartStateConfirmed, cart.State)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, resp.Order.OrderID, cart.LastOrderID)

	confirmed, err := f.checkout.Confirmation(ctx, values)
	require.NoError(t, err)
	assert.Equal(t, resp.Order.OrderID, confirmed.OrderID)

	msgs := f.sender.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"jane@example.com"}, msgs[0].To)
	assert.Contains(t, msgs[0].Subject, resp.Order.OrderID)
	assert.Contains(t, msgs[0].HTML, "$82.50")
	assert.Equal(t, []string{"s1-parent@example.com", "sam@example.com"}, msgs[1].To)
	assert.Equal(t, "Scout s1 made a sale!", msgs[1].Subject)
}

func TestCheckoutService_Validation(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	ctx := context.Background()
	values := newTestValues("sloppy")
	fillCart(t, f, values)

	_, err := f.checkout.Submit(ctx, values, &models.CheckoutRequest{CustomerEmail: "not-an-email"})
	require.Error(t, err)
	fields, ok := models.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "customerName")
	assert.Contains(t, fields, "customerEmail")
	assert.Contains(t, fields, "customerPhone")

	cart, err := f.carts.Get(ctx, values)
	require.NoError(t, err)
	assert.Equal(t, models.CartStatePopulated, cart.State)
	assert.Len(t, cart.Lines, 2)
	assert.Empty(t, f.sender.Messages())
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	_, err := f.checkout.Submit(context.Background(), newTestValues("empty"), validCheckout())
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCheckoutService_InProgress(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	ctx := context.Background()
	values := newTestValues("double-click")
	fillCart(t, f, values)

	cart, err := f.carts.Get(ctx, values)
	require.NoError(t, err)
	submittedAt := time.Now()
	cart.State = models.CartStateSubmitting
	cart.SubmittedAt = &submittedAt
	require.NoError(t, session.SetJSON(ctx, values, session.KeyCart, cart))

	_, err = f.checkout.Submit(ctx, values, validCheckout())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = f.carts.Add(ctx, values, "kettle-corn", 1)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
}

func TestCheckoutService_UnresolvedReferral(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	ctx := context.Background()
	values := newTestValues("lost-link")

	_, err := f.attribution.Resolve(ctx, values, "sam-rivra")
	require.NoError(t, err)
	fillCart(t, f, values)

	req := validCheckout()
	req.SupportingScout = "  Sam Rivera "
	resp, err := f.checkout.Submit(ctx, values, req)
	require.NoError(t, err)
	assert.Nil(t, resp.Order.ScoutID)
	assert.Equal(t, "sam-rivra", resp.Order.ReferralSlug)
	assert.Equal(t, "Sam Rivera", resp.Order.SupportingScout)

	msgs := f.sender.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].HTML, "Your purchase supports Sam Rivera.")
}

func TestCheckoutService_Donation(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	ctx := context.Background()

	values := newTestValues("donor")
	fillCart(t, f, values)
	req := validCheckout()
	req.IsDonation = true
	resp, err := f.checkout.Submit(ctx, values, req)
	require.NoError(t, err)
	assert.True(t, resp.Order.IsDonation)

	cfg, err := DefaultSiteConfig()
	require.NoError(t, err)
	cfg.Donation = nil
	require.NoError(t, f.config.Save(ctx, cfg))

	values = newTestValues("donor-disabled")
	fillCart(t, f, values)
	resp, err = f.checkout.Submit(ctx, values, req)
	require.NoError(t, err)
	assert.False(t, resp.Order.IsDonation)
}

func TestCheckoutService_StorageFailureStillConfirms(t *testing.T) {
	f := newFixture(t, failingBackend{})
	ctx := context.Background()
	values := newTestValues("offline-store")
	fillCart(t, f, values)

	resp, err := f.checkout.Submit(ctx, values, validCheckout())
	require.NoError(t, err)
	assert.False(t, resp.Persisted)
	assert.NotEmpty(t, resp.Order.OrderID)

	confirmed, err := f.checkout.Confirmation(ctx, values)
	require.NoError(t, err)
	assert.Equal(t, resp.Order.OrderID, confirmed.OrderID)
	assert.Len(t, f.sender.Messages(), 1)
}

func TestCheckoutService_NoConfirmation(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	_, err := f.checkout.Confirmation(context.Background(), newTestValues("fresh"))
	assert.ErrorIs(t, err, ErrNoConfirmation)
}

// flakyValues fails cart writes carrying failState, and optionally every delete
type flakyValues struct {
	session.Values
	failState  models.CartState
	failDelete bool
}

var errSessionDown = errors.New("session store unavailable")

func (v *flakyValues) Set(ctx context.Context, key, value string) error {
	if key == session.KeyCart && strings.Contains(value, `"state":"`+string(v.failState)+`"`) {
		return errSessionDown
	}
	return v.Values.Set(ctx, key, value)
}

func (v *flakyValues) Delete(ctx context.Context, keys ...string) error {
	if v.failDelete {
		return errSessionDown
	}
	return v.Values.Delete(ctx, keys...)
}

func TestCheckoutService_CartWriteFailureAfterOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cart is dropped when it cannot be confirmed", func(t *testing.T) {
		f := newFixture(t, newTestBackend(t))
		values := &flakyValues{Values: newTestValues("flaky"), failState: models.CartStateConfirmed}
		fillCart(t, f, values)

		_, err := f.checkout.Submit(ctx, values, validCheckout())
		require.NoError(t, err)

		cart, err := f.carts.Get(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, models.CartStateEmpty, cart.State)
		assert.Empty(t, cart.Lines)

		cart, err = f.carts.Add(ctx, values, "kettle-corn", 1)
		require.NoError(t, err)
		assert.Equal(t, models.CartStatePopulated, cart.State)
	})

	t.Run("cart stuck in checkout can be abandoned", func(t *testing.T) {
		f := newFixture(t, newTestBackend(t))
		values := &flakyValues{Values: newTestValues("stuck"), failState: models.CartStateConfirmed, failDelete: true}
		fillCart(t, f, values)

		_, err := f.checkout.Submit(ctx, values, validCheckout())
		require.NoError(t, err)

		_, err = f.carts.Add(ctx, values, "kettle-corn", 1)
		assert.ErrorIs(t, err, ErrCheckoutInProgress)

		cart, err := f.carts.Abandon(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, models.CartStateAbandoned, cart.State)
		assert.Empty(t, cart.Lines)

		_, err = f.carts.Add(ctx, values, "kettle-corn", 1)
		require.NoError(t, err)
	})

	t.Run("cart stuck in checkout resets once stale", func(t *testing.T) {
		f := newFixture(t, newTestBackend(t))
		values := &flakyValues{Values: newTestValues("stale"), failState: models.CartStateConfirmed, failDelete: true}
		fillCart(t, f, values)

		first, err := f.checkout.Submit(ctx, values, validCheckout())
		require.NoError(t, err)

		_, err = f.checkout.Submit(ctx, values, validCheckout())
		assert.ErrorIs(t, err, ErrCheckoutInProgress)

		f.carts.now = func() time.Time { return time.Now().Add(submitStaleAfter + time.Minute) }
		cart, err := f.carts.Get(ctx, values)
		require.NoError(t, err)
		assert.Empty(t, cart.Lines, "lines of the placed order are not offered again")

		_, err = f.checkout.Submit(ctx, values, validCheckout())
		assert.ErrorIs(t, err, models.ErrEmptyCart)

		orders, err := f.backend.GetOrders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first.Order.OrderID, orders[0].OrderID)
	})
}
