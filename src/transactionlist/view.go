package transactionlist

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/username/jababank/backend/src/models"
	"github.com/username/jababank/backend/src/security/validation"
)

// CSS classes applied to the amount cell.
const (
	ClassWithdrawal = "withdrawal"
	ClassDeposit    = "deposit"
	ClassTransfer   = "transfer"
	ClassDebit      = "debit"
	ClassCredit     = "credit"
)

var (
	baseColumns     = []string{"ID", "Date", "Description", "Type", "Amount", "Account"}
	userViewColumns = []string{"ID", "Date", "User", "Description", "Type", "Amount", "Account"}
)

// RowView is one rendered table row, with every display decision made.
type RowView struct {
	ID          string
	Date        string
	User        string
	Description string
	Type        string
	Amount      string
	AmountClass string
	Account     string

	// Broken rows render as a single error cell.
	Broken bool
}

// TableView is the view-model for one page.
type TableView struct {
	Columns   []string
	ShowUser  bool
	Rows      []RowView
	Synthetic bool
}

func (t TableView) Empty() bool { return len(t.Rows) == 0 }

func (t TableView) ColumnCount() int { return len(t.Columns) }

// BuildTable turns a page into a TableView. Rows keep source order.
func BuildTable(page *models.Page, showUser bool) TableView {
	cols := baseColumns
	if showUser {
		cols = userViewColumns
	}
	view := TableView{
		Columns:  append([]string(nil), cols...),
		ShowUser: showUser,
	}
	if page == nil {
		return view
	}
	view.Synthetic = page.Synthetic
	view.Rows = make([]RowView, 0, len(page.Transactions))
	for _, tx := range page.Transactions {
		row, err := BuildRow(tx)
		if err != nil {
			row = RowView{Broken: true}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// BuildRow computes the display values for one record. The User column is
// filled regardless of whether the table shows it.
func BuildRow(tx models.TransactionRecord) (RowView, error) {
	if tx.DecodeErr != nil {
		return RowView{}, tx.DecodeErr
	}

	amount, class := FormatAmount(tx)
	return RowView{
		ID:          orDefault(validation.CleanDisplayText(tx.ID.String()), "N/A"),
		Date:        orDefault(validation.CleanDisplayText(string(tx.Date)), "N/A"),
		User:        userLabel(tx),
		Description: orDefault(validation.CleanDisplayText(tx.Description), "Unknown"),
		Type:        DisplayType(tx.Type),
		Amount:      amount,
		AmountClass: class,
		Account:     orDefault(validation.CleanDisplayText(tx.RelevantAccount()), "Unknown Account"),
	}, nil
}

// FormatAmount returns the signed amount text and its CSS class. The sign
// comes from the type, or from the debit flag for unknown types.
func FormatAmount(tx models.TransactionRecord) (string, string) {
	var prefix, class string
	switch strings.ToLower(tx.Type) {
	case "withdrawal":
		prefix, class = "-", ClassWithdrawal
	case "deposit":
		prefix, class = "+", ClassDeposit
	case "transfer":
		prefix, class = "", ClassTransfer
	default:
		if tx.IsDebit {
			prefix, class = "-", ClassDebit
		} else {
			prefix, class = "+", ClassCredit
		}
	}
	return fmt.Sprintf("%s$%s", prefix, tx.Amount.Abs().StringFixed(2)), class
}

// DisplayType capitalizes the first letter of the type; empty becomes "Other".
func DisplayType(t string) string {
	t = validation.CleanDisplayText(t)
	if t == "" {
		t = "other"
	}
	r, size := utf8.DecodeRuneInString(t)
	return string(unicode.ToUpper(r)) + t[size:]
}

func userLabel(tx models.TransactionRecord) string {
	if name := validation.CleanDisplayText(tx.UserName); name != "" {
		return name
	}
	id := tx.ToUserID
	if tx.IsDebit {
		id = tx.FromUserID
	}
	if id == 0 {
		return "User #?"
	}
	return fmt.Sprintf("User #%d", id)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
