package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusReady, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPreparing, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatus("lost"), false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel("pedidos_ya")
	if err != nil || ch != ChannelPedidosYa {
		t.Fatalf("expected pedidos_ya, got %q (%v)", ch, err)
	}
	if _, err := ParseChannel("fax"); err == nil {
		t.Fatalf("expected error for unknown channel")
	}
	if !ChannelWhatsApp.IsDirect() || ChannelUberEats.IsDirect() {
		t.Fatalf("unexpected direct channel classification")
	}
}

func TestParseClosedEnums(t *testing.T) {
	if _, err := ParseProjectionModel("arima"); err == nil {
		t.Fatalf("expected error for unknown model")
	}
	if g, err := ParseBucketGranularity("week"); err != nil || g != BucketGranularityWeek {
		t.Fatalf("expected week granularity, got %q (%v)", g, err)
	}
	if _, err := ParsePaymentMethod("ach"); err == nil {
		t.Fatalf("expected error for unsupported payment method")
	}
	if len(PackagingTiers()) != 3 {
		t.Fatalf("expected three packaging tiers")
	}
}
