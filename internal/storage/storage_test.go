package storage

import (
	"strings"
	"testing"
)

func TestFields(t *testing.T) {
	type row struct {
		ID      int64  `db:"id"`
		Name    string `db:"name"`
		Skipped string
		Value   float64 `db:"value"`
	}

	got := fields(row{})
	want := "id,name,value"
	if got != want {
		t.Errorf("fields() = %q, want %q", got, want)
	}
}

func TestCustomerRowFieldsIncludeReferralColumns(t *testing.T) {
	for _, col := range []string{"referral_code", "referral_balance", "referred_by", "referral_bonus_awarded"} {
		if !strings.Contains(customerRowFields, col) {
			t.Errorf("customer fields missing %q: %s", col, customerRowFields)
		}
	}
}
