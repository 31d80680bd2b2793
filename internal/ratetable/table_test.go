package ratetable

import (
	"testing"

	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestDefaultRates(t *testing.T) {
	table := Default()
	cases := map[enums.Channel]string{
		enums.ChannelUberEats:  "0.30",
		enums.ChannelPedidosYa: "0.28",
		enums.ChannelBis:       "0.25",
		enums.ChannelPhone:     "0",
		enums.ChannelWhatsApp:  "0",
	}
	for ch, want := range cases {
		got, err := table.RateFor(ch)
		if err != nil {
			t.Fatalf("RateFor(%s) error: %v", ch, err)
		}
		if !got.Equal(dec(want)) {
			t.Fatalf("RateFor(%s) = %s want %s", ch, got, want)
		}
	}
}

func TestRateForUnknownAndMissing(t *testing.T) {
	table, err := New(
		map[enums.Channel]decimal.Decimal{enums.ChannelPhone: decimal.Zero},
		map[enums.PackagingTier]decimal.Decimal{
			enums.PackagingTierSmall:  dec("0.15"),
			enums.PackagingTierMedium: dec("0.20"),
			enums.PackagingTierLarge:  dec("0.25"),
		},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = table.RateFor(enums.Channel("fax"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown channel, got %v", err)
	}
	if pkgerrors.As(err).Message() != "unknown channel" {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}

	_, err = table.RateFor(enums.ChannelUberEats)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error for unconfigured built-in channel, got %v", err)
	}
}

func TestCustomChannelFromTable(t *testing.T) {
	table, err := FromStrings(
		map[string]string{"rappi": "0.27", "phone": "0"},
		map[string]string{"small": "0.15", "medium": "0.20", "large": "0.25"},
	)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}
	rate, err := table.RateFor(enums.Channel("rappi"))
	if err != nil || !rate.Equal(dec("0.27")) {
		t.Fatalf("expected custom channel rate 0.27, got %s (%v)", rate, err)
	}
	if got := table.Channels(); len(got) != 2 || got[0] != "phone" || got[1] != "rappi" {
		t.Fatalf("unexpected channels %v", got)
	}
}

func TestFromSnapshotNormalizesNames(t *testing.T) {
	table, err := FromSnapshot(Snapshot{
		CommissionRates: map[string]decimal.Decimal{" Rappi ": dec("0.20"), "PHONE": decimal.Zero},
		Packaging:       map[string]decimal.Decimal{"Small": dec("0.15"), "medium": dec("0.20"), "LARGE": dec("0.25")},
	})
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	rate, err := table.RateFor(enums.Channel("rappi"))
	if err != nil || !rate.Equal(dec("0.20")) {
		t.Fatalf("expected rappi rate 0.20, got %s (%v)", rate, err)
	}
	if got := table.Channels(); len(got) != 2 || got[0] != "phone" || got[1] != "rappi" {
		t.Fatalf("unexpected channels %v", got)
	}
	if cost, err := table.PackagingCost(enums.PackagingTierLarge); err != nil || !cost.Equal(dec("0.25")) {
		t.Fatalf("expected large packaging 0.25, got %s (%v)", cost, err)
	}
}

func TestFromSnapshotRejectsCollidingNames(t *testing.T) {
	_, err := FromSnapshot(Snapshot{
		CommissionRates: map[string]decimal.Decimal{"Rappi": dec("0.20"), "rappi": dec("0.22")},
		Packaging:       map[string]decimal.Decimal{"small": dec("0.15"), "medium": dec("0.20"), "large": dec("0.25")},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	full := map[enums.PackagingTier]decimal.Decimal{
		enums.PackagingTierSmall:  dec("0.15"),
		enums.PackagingTierMedium: dec("0.20"),
		enums.PackagingTierLarge:  dec("0.25"),
	}
	cases := []struct {
		name       string
		commission map[enums.Channel]decimal.Decimal
		packaging  map[enums.PackagingTier]decimal.Decimal
	}{
		{"rate of one", map[enums.Channel]decimal.Decimal{enums.ChannelBis: dec("1")}, full},
		{"negative rate", map[enums.Channel]decimal.Decimal{enums.ChannelBis: dec("-0.1")}, full},
		{"missing tier", map[enums.Channel]decimal.Decimal{enums.ChannelBis: dec("0.25")}, map[enums.PackagingTier]decimal.Decimal{enums.PackagingTierSmall: dec("0.15")}},
		{"negative packaging", map[enums.Channel]decimal.Decimal{}, map[enums.PackagingTier]decimal.Decimal{
			enums.PackagingTierSmall:  dec("-0.15"),
			enums.PackagingTierMedium: dec("0.20"),
			enums.PackagingTierLarge:  dec("0.25"),
		}},
	}
	for _, tc := range cases {
		if _, err := New(tc.commission, tc.packaging); !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", tc.name, err)
		}
	}

	if _, err := FromStrings(map[string]string{"bis": "abc"}, map[string]string{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTierForBoundaries(t *testing.T) {
	cases := map[int]enums.PackagingTier{
		1: enums.PackagingTierSmall,
		2: enums.PackagingTierSmall,
		3: enums.PackagingTierMedium,
		4: enums.PackagingTierMedium,
		5: enums.PackagingTierLarge,
		9: enums.PackagingTierLarge,
	}
	for qty, want := range cases {
		if got := TierFor(qty); got != want {
			t.Fatalf("TierFor(%d) = %s want %s", qty, got, want)
		}
	}
}

func TestPackagingCost(t *testing.T) {
	cost, err := Default().PackagingCost(enums.PackagingTierMedium)
	if err != nil || !cost.Equal(dec("0.20")) {
		t.Fatalf("expected medium 0.20, got %s (%v)", cost, err)
	}
	if _, err := (Table{}).PackagingCost(enums.PackagingTierLarge); !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error from empty table, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := Default()
	rebuilt, err := FromSnapshot(original.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	for _, ch := range original.Channels() {
		a, _ := original.RateFor(ch)
		b, _ := rebuilt.RateFor(ch)
		if !a.Equal(b) {
			t.Fatalf("rate mismatch for %s: %s vs %s", ch, a, b)
		}
	}
}

func TestTableEqual(t *testing.T) {
	a := Default()
	b, err := FromStrings(
		map[string]string{"uber_eats": "0.3", "pedidos_ya": "0.28", "bis": "0.25", "phone": "0", "whatsapp": "0.00"},
		map[string]string{"small": "0.15", "medium": "0.2", "large": "0.25"},
	)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal tables")
	}
	c, err := FromStrings(
		map[string]string{"uber_eats": "0.31", "pedidos_ya": "0.28", "bis": "0.25", "phone": "0", "whatsapp": "0"},
		map[string]string{"small": "0.15", "medium": "0.20", "large": "0.25"},
	)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}
	if a.Equal(c) {
		t.Fatalf("expected tables to differ")
	}
}
