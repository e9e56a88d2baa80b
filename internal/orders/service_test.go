package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinitPatil01/BookStoreApp/internal/users"
)

const testUser = "u1"

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeCart, *fakePublisher) {
	t.Helper()
	st := newFakeStore()
	cart := &fakeCart{}
	pub := &fakePublisher{}
	svc := &Service{
		Store:  st,
		Books:  &fakeCatalog{s: st},
		Users:  fakeUsers{testUser: &users.User{ID: testUser, Email: "u1@example.com"}},
		Cart:   cart,
		Events: pub,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Name:   "test",
	}
	return svc, st, cart, pub
}

func TestCreateOrder(t *testing.T) {
	svc, st, cart, pub := newTestService(t)
	st.addBook("a", "Clean Architecture", 1500, 3)
	st.addBook("b", "The Go Programming Language", 500, 5)

	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{
		{BookID: "a", Qty: 2},
		{BookID: "b", Qty: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, string(StatusPending), resp.Status)
	assert.Equal(t, 2*1500+500, resp.TotalCents)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 1500, resp.Items[0].PriceCents)
	require.NotNil(t, resp.Items[0].Book)
	assert.Equal(t, "Clean Architecture", resp.Items[0].Book.Title)

	assert.Equal(t, 1, st.stock("a"))
	assert.Equal(t, 4, st.stock("b"))
	assert.Equal(t, []string{testUser}, cart.cleared)
	assert.Equal(t, []string{TopicOrderPlaced}, pub.topics())
}

func TestCreateOrderValidation(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 100, 10)

	_, err := svc.CreateOrder(context.Background(), testUser, nil)
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	_, err = svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 0}})
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	_, err = svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "", Qty: 1}})
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	_, err = svc.CreateOrder(context.Background(), "ghost", []ItemInput{{BookID: "a", Qty: 1}})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "missing", Qty: 1}})
	assert.ErrorIs(t, err, ErrBookNotFound)

	// nothing was reserved by the failed attempts
	assert.Equal(t, 10, st.stock("a"))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 3)

	// taking the whole stock is fine
	_, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 3}})
	require.NoError(t, err)
	assert.Equal(t, 0, st.stock("a"))

	// the next copy is not there
	_, err = svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 1}})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "a", stockErr.BookID)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 0, st.stock("a"))
}

func TestCreateOrderRollsBackEarlierReservations(t *testing.T) {
	svc, st, cart, pub := newTestService(t)
	st.addBook("a", "A", 1000, 5)
	st.addBook("b", "B", 2000, 1)

	_, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{
		{BookID: "a", Qty: 2},
		{BookID: "b", Qty: 2}, // fails, must undo the reservation on a
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "b", stockErr.BookID)

	assert.Equal(t, 5, st.stock("a"))
	assert.Equal(t, 1, st.stock("b"))
	assert.Empty(t, cart.cleared)
	assert.Empty(t, pub.topics())
}

func TestCreateOrderCartClearFailureIsSwallowed(t *testing.T) {
	svc, st, cart, _ := newTestService(t)
	st.addBook("a", "A", 1000, 2)
	cart.err = errors.New("redis down")

	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 1}})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)

	// the order stands
	got, err := svc.GetOrderByID(context.Background(), resp.OrderID, testUser)
	require.NoError(t, err)
	assert.Equal(t, resp.OrderID, got.OrderID)
}

func TestPriceSnapshotSurvivesCatalogPriceChange(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1500, 10)

	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 2}})
	require.NoError(t, err)

	st.setPrice("a", 9900)

	got, err := svc.GetOrderByID(context.Background(), resp.OrderID, testUser)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1500, got.Items[0].PriceCents, "snapshot must not follow catalog price")
	assert.Equal(t, 3000, got.TotalCents)
	assert.Equal(t, 9900, got.Items[0].Book.PriceCents, "book summary shows the current price")
}

func TestCancelOrder(t *testing.T) {
	svc, st, _, pub := newTestService(t)
	st.addBook("a", "A", 1000, 5)
	st.addBook("b", "B", 2000, 5)

	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{
		{BookID: "a", Qty: 2},
		{BookID: "b", Qty: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, st.stock("a"))
	assert.Equal(t, 4, st.stock("b"))

	cancelled, err := svc.CancelOrder(context.Background(), resp.OrderID, testUser)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, 5, st.stock("a"))
	assert.Equal(t, 5, st.stock("b"))

	status, err := svc.GetOrderStatus(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, status)
	assert.Contains(t, pub.topics(), TopicOrderCancelled)

	// cancelling again is a no-op, not an error, and must not double-restore
	cancelled, err = svc.CancelOrder(context.Background(), resp.OrderID, testUser)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, 5, st.stock("a"))
	assert.Equal(t, 5, st.stock("b"))
}

func TestCancelOrderNonPending(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 5)

	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 2}})
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), resp.OrderID, StatusConfirmed)
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), resp.OrderID, testUser)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, 3, st.stock("a"), "stock untouched for a non-pending cancel")
}

func TestCancelOrderNotFound(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 5)

	_, err := svc.CancelOrder(context.Background(), "nope", testUser)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// an order belonging to someone else is not yours to cancel
	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 1}})
	require.NoError(t, err)
	_, err = svc.CancelOrder(context.Background(), resp.OrderID, "someone-else")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderStatusNeverTouchesInventory(t *testing.T) {
	svc, st, _, pub := newTestService(t)
	st.addBook("a", "A", 1000, 5)

	resp, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 2}})
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), resp.OrderID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, string(StatusConfirmed), updated.Status)
	assert.Equal(t, 3, st.stock("a"))

	// even an administrative move to CANCELLED does not restore stock;
	// only the cancel path does
	_, err = svc.UpdateOrderStatus(context.Background(), resp.OrderID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 3, st.stock("a"))
	assert.Contains(t, pub.topics(), TopicOrderStatusChanged)

	_, err = svc.UpdateOrderStatus(context.Background(), "nope", StatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCalculateOrderTotalSkipsMissingBooks(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 5)

	total, err := svc.CalculateOrderTotal(context.Background(), []ItemInput{
		{BookID: "a", Qty: 2},
		{BookID: "missing", Qty: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, 2000, total)
}

func TestCalculateOrderTotalUsesCurrentPrice(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 5)

	_, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 1}})
	require.NoError(t, err)
	st.setPrice("a", 2500)

	total, err := svc.CalculateOrderTotal(context.Background(), []ItemInput{{BookID: "a", Qty: 2}})
	require.NoError(t, err)
	assert.Equal(t, 5000, total, "preview follows the catalog, not snapshots")
}

func TestConcurrentOrdersSingleCopy(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 1}})
		}(i)
	}
	wg.Wait()

	var okCount, stockErrCount int
	for _, err := range errs {
		var stockErr *InsufficientStockError
		switch {
		case err == nil:
			okCount++
		case errors.As(err, &stockErr):
			stockErrCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, okCount, "exactly one order wins the last copy")
	assert.Equal(t, 1, stockErrCount)
	assert.Equal(t, 0, st.stock("a"))
}

func TestGetOrdersByUserID(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	st.addBook("a", "A", 1000, 10)

	first, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 1}})
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), testUser, []ItemInput{{BookID: "a", Qty: 2}})
	require.NoError(t, err)

	list, err := svc.GetOrdersByUserID(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].OrderID, list[1].OrderID}
	assert.Contains(t, ids, first.OrderID)
	assert.Contains(t, ids, second.OrderID)
}
