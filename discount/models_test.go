package discount_test

import (
	"testing"
	"time"

	"github.com/xraph/letterpress/discount"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"save20", "SAVE20"},
		{"  SAVE20  ", "SAVE20"},
		{"Save20\n", "SAVE20"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := discount.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	noExpiry := &discount.Code{}
	if noExpiry.Expired(now) {
		t.Error("code without expiry should never expire")
	}

	expired := &discount.Code{ExpiresAt: &past}
	if !expired.Expired(now) {
		t.Error("code with past expiry should be expired")
	}

	live := &discount.Code{ExpiresAt: &future}
	if live.Expired(now) {
		t.Error("code with future expiry should not be expired")
	}
}

func TestExhausted(t *testing.T) {
	tests := []struct {
		name string
		code discount.Code
		want bool
	}{
		{"unlimited", discount.Code{TimesRedeemed: 1000, MaxRedemptions: 0}, false},
		{"under cap", discount.Code{TimesRedeemed: 4, MaxRedemptions: 5}, false},
		{"at cap", discount.Code{TimesRedeemed: 5, MaxRedemptions: 5}, true},
		{"over cap", discount.Code{TimesRedeemed: 6, MaxRedemptions: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Exhausted(); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}
