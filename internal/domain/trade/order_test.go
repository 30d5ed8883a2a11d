package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

func newDraft(t *testing.T) *Order {
	t.Helper()
	creator := uuid.New()
	o, err := NewOrder("ORD2024010001", OrderTypeOrder, uuid.New(), &creator)
	require.NoError(t, err)
	return o
}

func line(qty int, price int64) OrderLine {
	return OrderLine{ProductID: uuid.New(), ProductCode: "SHIRT-01", ProductName: "Shirt", Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func assertTotalsInvariant(t *testing.T, o *Order) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.TotalPrice)
	}
	assert.True(t, o.Subtotal.Equal(sum), "subtotal %s != %s", o.Subtotal, sum)
	expected := o.Subtotal.Add(o.Tax).Add(o.ShippingCost).Sub(o.Discount)
	assert.True(t, o.TotalAmount.Equal(expected), "total %s != %s", o.TotalAmount, expected)
}

func TestNewOrder(t *testing.T) {
	o := newDraft(t)
	assert.Equal(t, OrderStatusDraft, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, OrderStatusDraft, o.StatusHistory[0].Status)

	_, err := NewOrder("ORD2024010001", OrderTypeOrder, uuid.Nil, nil)
	assert.Error(t, err)

	_, err = NewOrder("ORD2024010001", "invoice", uuid.New(), nil)
	assert.Error(t, err)
}

func TestOrder_TotalsInvariant(t *testing.T) {
	o := newDraft(t)

	item, err := o.AddItem(line(10, 200))
	require.NoError(t, err)
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(2000)))
	assertTotalsInvariant(t, o)

	second, err := o.AddItem(line(3, 150))
	require.NoError(t, err)
	assertTotalsInvariant(t, o)

	require.NoError(t, o.SetCharges(Charges{
		Tax:          decimal.NewFromInt(245),
		Discount:     decimal.NewFromInt(100),
		ShippingCost: decimal.NewFromInt(50),
	}))
	assertTotalsInvariant(t, o)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(2645)))

	_, err = o.RemoveItem(second.ID)
	require.NoError(t, err)
	assertTotalsInvariant(t, o)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(2195)))
}

func TestOrder_ItemsOnlyOnDraft(t *testing.T) {
	o := newDraft(t)
	item, err := o.AddItem(line(1, 10))
	require.NoError(t, err)
	require.NoError(t, o.UpdateStatus(OrderStatusPending, nil, ""))

	_, err = o.AddItem(line(1, 10))
	assert.True(t, shared.IsKind(err, shared.KindConflict))
	_, err = o.RemoveItem(item.ID)
	assert.True(t, shared.IsKind(err, shared.KindConflict))
}

func TestOrder_StatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusDraft, OrderStatusPending, true},
		{OrderStatusDraft, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusInProduction, true},
		{OrderStatusInProduction, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusInProduction, true},
		{OrderStatusReady, OrderStatusDelivered, true},
		{OrderStatusInProduction, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_LifecycleScenario(t *testing.T) {
	o := newDraft(t)
	_, err := o.AddItem(line(10, 200))
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(2000)))

	actor := uuid.New()
	require.NoError(t, o.UpdateStatus(OrderStatusPending, &actor, ""))
	require.NoError(t, o.UpdateStatus(OrderStatusConfirmed, &actor, ""))
	require.NoError(t, o.UpdateStatus(OrderStatusInProduction, &actor, "cutting started"))
	require.NotNil(t, o.ProductionStartDate)
	started := *o.ProductionStartDate

	require.NoError(t, o.UpdateStatus(OrderStatusReady, &actor, ""))
	require.NotNil(t, o.ActualCompletionDate)
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, o.UpdateStatus(OrderStatusInProduction, &actor, "rework"))
	assert.Equal(t, started, *o.ProductionStartDate)

	assert.Len(t, o.StatusHistory, 6)
	last := o.StatusHistory[len(o.StatusHistory)-1]
	assert.Equal(t, OrderStatusInProduction, last.Status)
	assert.Equal(t, &actor, last.ChangedBy)
	assert.Equal(t, "rework", last.Notes)

	require.NoError(t, o.UpdatePayment(decimal.NewFromInt(2000)))
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
}

func TestOrder_UpdateStatusRejectsInvalid(t *testing.T) {
	o := newDraft(t)
	err := o.UpdateStatus(OrderStatusDelivered, nil, "")
	assert.True(t, shared.IsKind(err, shared.KindConflict))

	err = o.UpdateStatus("shipped", nil, "")
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.Len(t, o.StatusHistory, 1)
}

func TestOrder_Payment(t *testing.T) {
	o := newDraft(t)
	_, err := o.AddItem(line(4, 250))
	require.NoError(t, err)

	assert.Error(t, o.UpdatePayment(decimal.Zero))
	assert.Error(t, o.UpdatePayment(decimal.NewFromInt(-5)))

	require.NoError(t, o.UpdatePayment(decimal.NewFromInt(400)))
	assert.Equal(t, PaymentStatusPartial, o.PaymentStatus)

	prev := o.PaidAmount
	require.NoError(t, o.UpdatePayment(decimal.NewFromInt(600)))
	assert.True(t, o.PaidAmount.GreaterThan(prev))
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(100)
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(decimal.Zero, total))
	assert.Equal(t, PaymentStatusPartial, DerivePaymentStatus(decimal.NewFromInt(1), total))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(total, total))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(decimal.NewFromInt(150), total))
}

func TestOrder_MarkOverdue(t *testing.T) {
	o := newDraft(t)
	_, err := o.AddItem(line(1, 100))
	require.NoError(t, err)

	now := time.Now()
	assert.False(t, o.MarkOverdue(now))

	due := now.Add(-time.Hour)
	o.SetPaymentDueDate(&due)
	assert.True(t, o.MarkOverdue(now))
	assert.Equal(t, PaymentStatusOverdue, o.PaymentStatus)
	assert.False(t, o.MarkOverdue(now))

	require.NoError(t, o.UpdatePayment(decimal.NewFromInt(40)))
	assert.Equal(t, PaymentStatusPartial, o.PaymentStatus)
}

func TestOrder_StockRelease(t *testing.T) {
	o := newDraft(t)
	l := line(5, 10)
	_, err := o.AddItem(l)
	require.NoError(t, err)
	l2 := l
	l2.Quantity = 2
	_, err = o.AddItem(l2)
	require.NoError(t, err)

	assert.Nil(t, o.TakeStockRelease())

	o.MarkStockReserved()
	release := o.TakeStockRelease()
	assert.Equal(t, map[uuid.UUID]int{l.ProductID: 7}, release)
	assert.False(t, o.StockReserved)
	assert.Nil(t, o.TakeStockRelease())
}

func TestOrder_CanDelete(t *testing.T) {
	o := newDraft(t)
	assert.NoError(t, o.CanDelete())

	require.NoError(t, o.UpdateStatus(OrderStatusPending, nil, ""))
	err := o.CanDelete()
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindConflict))
}

func TestOrder_QualityCheckBlocksDelivery(t *testing.T) {
	o := newDraft(t)
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusInProduction} {
		require.NoError(t, o.UpdateStatus(s, nil, ""))
	}
	require.NoError(t, o.UpdateStatus(OrderStatusReady, nil, ""))
	require.NoError(t, o.RecordQualityCheck(false, nil, "stitching loose"))

	err := o.UpdateStatus(OrderStatusDelivered, nil, "")
	assert.True(t, shared.IsKind(err, shared.KindConflict))

	require.NoError(t, o.RecordQualityCheck(true, nil, "fixed"))
	require.NoError(t, o.UpdateStatus(OrderStatusDelivered, nil, ""))
	assert.NotNil(t, o.ActualDeliveryDate)
}

func TestOrder_Cancel(t *testing.T) {
	o := newDraft(t)
	require.NoError(t, o.UpdateStatus(OrderStatusCancelled, nil, "customer withdrew"))
	assert.Equal(t, "customer withdrew", o.CancellationReason)
	assert.True(t, o.Status.IsTerminal())
	assert.Error(t, o.UpdatePayment(decimal.NewFromInt(1)))
}
