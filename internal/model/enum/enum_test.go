package enum

import "testing"

func TestOrderSide(t *testing.T) {
	if got, ok := ParseOrderSide(" buy "); !ok || got != OrderSideBuy {
		t.Fatalf("ParseOrderSide(buy) = %v, %t", got, ok)
	}
	if got, ok := ParseOrderSide("SELL"); !ok || got != OrderSideSell {
		t.Fatalf("ParseOrderSide(SELL) = %v, %t", got, ok)
	}
	if _, ok := ParseOrderSide("hold"); ok {
		t.Fatal("ParseOrderSide(hold) should fail")
	}

	if OrderSideBuy.Opposite() != OrderSideSell || OrderSideSell.Opposite() != OrderSideBuy {
		t.Fatal("Opposite is not symmetric")
	}
	if !OrderSideBuy.IsAvailable() || OrderSide(0).IsAvailable() || OrderSide(200).IsAvailable() {
		t.Fatal("IsAvailable bounds are wrong")
	}
}

func TestOrderType(t *testing.T) {
	for name, want := range map[string]OrderType{
		"limit":           OrderTypeLimit,
		"IOC":             OrderTypeIOC,
		"post_only":       OrderTypePostOnly,
		"POST_ONLY_SLIDE": OrderTypePostOnlySlide,
	} {
		got, ok := ParseOrderType(name)
		if !ok || got != want {
			t.Fatalf("ParseOrderType(%s) = %v, %t", name, got, ok)
		}
	}
	if _, ok := ParseOrderType("market"); ok {
		t.Fatal("ParseOrderType(market) should fail")
	}

	if !OrderTypePostOnly.IsPostOnly() || !OrderTypePostOnlySlide.IsPostOnly() {
		t.Fatal("post-only variants must report IsPostOnly")
	}
	if OrderTypeLimit.IsPostOnly() || OrderTypeIOC.IsPostOnly() {
		t.Fatal("limit and IOC are not post-only")
	}
}

func TestUpdateMode(t *testing.T) {
	if got, ok := ParseUpdateMode(""); !ok || got != UpdateModePoll {
		t.Fatalf("empty update mode should default to POLL, got %v, %t", got, ok)
	}
	if got, ok := ParseUpdateMode("websocket"); !ok || got != UpdateModeWebsocket {
		t.Fatalf("ParseUpdateMode(websocket) = %v, %t", got, ok)
	}
	if _, ok := ParseUpdateMode("carrier pigeon"); ok {
		t.Fatal("unknown update mode should fail")
	}
}
