package transactionlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/jababank/backend/src/models"
)

func tx(typ string, amount float64, isDebit bool) models.TransactionRecord {
	return models.TransactionRecord{
		ID:          "7",
		Date:        "May 15, 2025",
		Description: "Coffee",
		Type:        typ,
		Amount:      models.NewAmount(amount),
		IsDebit:     models.FlexBool(isDebit),
		FromAccount: "Checking ****4321",
		ToAccount:   "Savings ****1111",
		FromUserID:  3,
		ToUserID:    9,
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name      string
		rec       models.TransactionRecord
		wantText  string
		wantClass string
	}{
		{"withdrawal", tx("withdrawal", 12.5, true), "-$12.50", ClassWithdrawal},
		{"deposit", tx("deposit", 5, false), "+$5.00", ClassDeposit},
		{"transfer", tx("transfer", 3.333, true), "$3.33", ClassTransfer},
		{"type is case-insensitive", tx("DEPOSIT", 1, false), "+$1.00", ClassDeposit},
		{"unknown debit", tx("fee", 1, true), "-$1.00", ClassDebit},
		{"unknown credit", tx("", 2.25, false), "+$2.25", ClassCredit},
		{"negative upstream amount", tx("withdrawal", -40, true), "-$40.00", ClassWithdrawal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, class := FormatAmount(tt.rec)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantClass, class)
		})
	}
}

func TestBuildRowPlaceholders(t *testing.T) {
	row, err := BuildRow(models.TransactionRecord{IsDebit: true})
	require.NoError(t, err)

	assert.Equal(t, "N/A", row.ID)
	assert.Equal(t, "N/A", row.Date)
	assert.Equal(t, "Unknown", row.Description)
	assert.Equal(t, "Other", row.Type)
	assert.Equal(t, "Unknown Account", row.Account)
	assert.Equal(t, "User #?", row.User)
	assert.Equal(t, "-$0.00", row.Amount)
}

func TestBuildRowUserAndAccountFollowDirection(t *testing.T) {
	debit, err := BuildRow(tx("withdrawal", 1, true))
	require.NoError(t, err)
	assert.Equal(t, "User #3", debit.User)
	assert.Equal(t, "Checking ****4321", debit.Account)

	credit, err := BuildRow(tx("deposit", 1, false))
	require.NoError(t, err)
	assert.Equal(t, "User #9", credit.User)
	assert.Equal(t, "Savings ****1111", credit.Account)

	named := tx("deposit", 1, false)
	named.UserName = "Ana Silva"
	row, err := BuildRow(named)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", row.User)
}

func TestBuildRowSanitizesText(t *testing.T) {
	rec := tx("deposit", 1, false)
	rec.Description = `<img src=x onerror=alert(1)>Payroll`
	row, err := BuildRow(rec)
	require.NoError(t, err)
	assert.Equal(t, "Payroll", row.Description)
}

func TestDisplayType(t *testing.T) {
	assert.Equal(t, "Withdrawal", DisplayType("withdrawal"))
	assert.Equal(t, "Other", DisplayType(""))
	assert.Equal(t, "Échange", DisplayType("échange"))
}

func TestBuildTable(t *testing.T) {
	broken := models.TransactionRecord{DecodeErr: errors.New("record 1 is not an object")}
	page := &models.Page{
		Transactions: []models.TransactionRecord{tx("deposit", 1, false), broken, tx("withdrawal", 2, true)},
		Synthetic:    true,
	}

	view := BuildTable(page, false)
	assert.Equal(t, 6, view.ColumnCount())
	require.Len(t, view.Rows, 3)
	assert.False(t, view.Rows[0].Broken)
	assert.True(t, view.Rows[1].Broken)
	assert.Equal(t, "-$2.00", view.Rows[2].Amount)
	assert.True(t, view.Synthetic)

	withUser := BuildTable(page, true)
	assert.Equal(t, []string{"ID", "Date", "User", "Description", "Type", "Amount", "Account"}, withUser.Columns)

	assert.True(t, BuildTable(&models.Page{}, false).Empty())
	assert.True(t, BuildTable(nil, false).Empty())
}
