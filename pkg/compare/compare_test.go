package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yurifrl/csv2qif/pkg/models"
)

func TestEqual(t *testing.T) {
	base := models.LedgerTransaction{Date: "29.12.2015", Amount: -42.02, Description: "ABD", Account: "Expenses:Food"}

	tests := []struct {
		name  string
		other models.LedgerTransaction
		want  bool
	}{
		{"identical", base, true},
		{"other account", models.LedgerTransaction{Date: "29.12.2015", Amount: -42.02, Description: "ABD", Account: models.DefaultAccount}, true},
		{"float noise", models.LedgerTransaction{Date: "29.12.2015", Amount: -42.0200000001, Description: "ABD"}, true},
		{"other date", models.LedgerTransaction{Date: "30.12.2015", Amount: -42.02, Description: "ABD"}, false},
		{"other payee", models.LedgerTransaction{Date: "29.12.2015", Amount: -42.02, Description: "ABC"}, false},
		{"other amount", models.LedgerTransaction{Date: "29.12.2015", Amount: 42.02, Description: "ABD"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(base, tt.other))
			assert.Equal(t, tt.want, Key(base) == Key(tt.other))
		})
	}
}
