package types_test

import (
	"encoding/json"
	"testing"

	"github.com/xraph/letterpress/types"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    types.Money
		amount   int64
		currency string
	}{
		{"USD", types.USD(10000), 10000, "usd"},
		{"EUR", types.EUR(19900), 19900, "eur"},
		{"GBP", types.GBP(9900), 9900, "gbp"},
		{"Zero", types.Zero("usd"), 0, "usd"},
		{"ZeroUppercase", types.Zero("USD"), 0, "usd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("amount = %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("currency = %q, want %q", tt.money.Currency, tt.currency)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := types.USD(10000)
	b := types.USD(2500)

	if got := a.Add(b); got.Amount != 12500 {
		t.Errorf("Add = %d, want 12500", got.Amount)
	}
	if got := a.Subtract(b); got.Amount != 7500 {
		t.Errorf("Subtract = %d, want 7500", got.Amount)
	}
	if got := b.Multiply(3); got.Amount != 7500 {
		t.Errorf("Multiply = %d, want 7500", got.Amount)
	}
	if got := a.Negate(); got.Amount != -10000 {
		t.Errorf("Negate = %d, want -10000", got.Amount)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		pct    int
		want   int64
	}{
		{"20 percent of $100", 10000, 20, 2000},
		{"50 percent of $1", 100, 50, 50},
		{"rounds half up", 101, 50, 51}, // 50.5 cents -> 51
		{"rounds down below half", 104, 25, 26},
		{"zero percent", 10000, 0, 0},
		{"negative percent treated as zero", 10000, -5, 0},
		{"full discount", 10000, 100, 10000},
		{"over 100 percent not clamped", 10000, 150, 15000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.USD(tt.amount).Percent(tt.pct)
			if got.Amount != tt.want {
				t.Errorf("Percent(%d) of %d = %d, want %d", tt.pct, tt.amount, got.Amount, tt.want)
			}
			if got.Currency != "usd" {
				t.Errorf("currency = %q, want usd", got.Currency)
			}
		})
	}
}

func TestBasisPoints(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int
		want   int64
	}{
		{"10 percent commission on $100", 10000, 1000, 1000},
		{"2.5 percent on $100", 10000, 250, 250},
		{"rounds half up", 101, 5000, 51},
		{"zero bps", 10000, 0, 0},
		{"negative bps treated as zero", 10000, -100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.USD(tt.amount).BasisPoints(tt.bps)
			if got.Amount != tt.want {
				t.Errorf("BasisPoints(%d) of %d = %d, want %d", tt.bps, tt.amount, got.Amount, tt.want)
			}
		})
	}
}

func TestComparisons(t *testing.T) {
	small := types.USD(100)
	large := types.USD(200)

	if !small.LessThan(large) {
		t.Error("expected small < large")
	}
	if !large.GreaterThan(small) {
		t.Error("expected large > small")
	}
	if !small.Equal(types.USD(100)) {
		t.Error("expected equal values to be Equal")
	}
	if small.Equal(types.EUR(100)) {
		t.Error("different currencies must not be Equal")
	}
	if got := small.Min(large); !got.Equal(small) {
		t.Errorf("Min = %v, want %v", got, small)
	}
	if got := small.Max(large); !got.Equal(large) {
		t.Errorf("Max = %v, want %v", got, large)
	}
}

func TestPredicates(t *testing.T) {
	if !types.Zero("usd").IsZero() {
		t.Error("Zero should be IsZero")
	}
	if !types.USD(1).IsPositive() {
		t.Error("USD(1) should be IsPositive")
	}
	if !types.USD(-1).IsNegative() {
		t.Error("USD(-1) should be IsNegative")
	}
}

func TestCurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on currency mismatch")
		}
	}()
	types.USD(100).Add(types.EUR(100))
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name  string
		money types.Money
		major string
		str   string
	}{
		{"dollars", types.USD(10000), "100.00", "$100.00"},
		{"cents only", types.USD(5), "0.05", "$0.05"},
		{"negative", types.USD(-2500), "-25.00", "$-25.00"},
		{"euros", types.EUR(19900), "199.00", "€199.00"},
		{"pounds", types.GBP(9900), "99.00", "£99.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.FormatMajor(); got != tt.major {
				t.Errorf("FormatMajor = %q, want %q", got, tt.major)
			}
			if got := tt.money.String(); got != tt.str {
				t.Errorf("String = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(types.USD(8000))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Amount != 8000 || decoded.Currency != "usd" || decoded.Display != "$80.00" {
		t.Errorf("unexpected JSON: %+v", decoded)
	}
}

func TestSum(t *testing.T) {
	got := types.Sum(types.USD(100), types.USD(200), types.USD(300))
	if got.Amount != 600 {
		t.Errorf("Sum = %d, want 600", got.Amount)
	}

	empty := types.Sum()
	if !empty.IsZero() {
		t.Errorf("empty Sum should be zero, got %d", empty.Amount)
	}
}
