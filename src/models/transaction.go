package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedPayload is returned when a response body has no usable
// transactions array.
var ErrMalformedPayload = errors.New("malformed transaction payload")

// TransactionRecord is one ledger event as shown in the transaction list.
// Amount is always a magnitude; the sign shown to the user comes from Type
// and IsDebit.
type TransactionRecord struct {
	ID          FlexString  `json:"id"`
	Date        DisplayDate `json:"date"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Amount      Amount      `json:"amount"`
	IsDebit     FlexBool    `json:"isDebit"`
	FromAccount string      `json:"fromAccount"`
	ToAccount   string      `json:"toAccount"`
	FromUserID  FlexInt     `json:"fromUserId"`
	ToUserID    FlexInt     `json:"toUserId"`
	UserName    string      `json:"userName,omitempty"`

	// DecodeErr is set when the upstream record could not be decoded. The
	// record stays in the page so the row can be reported inline.
	DecodeErr error `json:"-"`
}

// RelevantAccount returns the account label for the side of the transfer
// the viewer is on: the source account for debits, the destination otherwise.
func (t TransactionRecord) RelevantAccount() string {
	if t.IsDebit {
		return t.FromAccount
	}
	return t.ToAccount
}

// PaginationMeta describes where a Page sits in the full result set.
type PaginationMeta struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

func (p *PaginationMeta) UnmarshalJSON(b []byte) error {
	var aux struct {
		TotalItems  FlexInt `json:"totalItems"`
		TotalPages  FlexInt `json:"totalPages"`
		CurrentPage FlexInt `json:"currentPage"`
		PageSize    FlexInt `json:"pageSize"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = PaginationMeta{
		TotalItems:  int(aux.TotalItems),
		TotalPages:  int(aux.TotalPages),
		CurrentPage: int(aux.CurrentPage),
		PageSize:    int(aux.PageSize),
	}
	return nil
}

// SinglePage is the metadata used when an upstream omits pagination.
func SinglePage(n int) PaginationMeta {
	return PaginationMeta{TotalItems: n, TotalPages: 1, CurrentPage: 1, PageSize: n}
}

// Page is one screen of transactions. Records keep the order the source
// returned them in.
type Page struct {
	Transactions []TransactionRecord `json:"transactions"`
	Pagination   *PaginationMeta     `json:"pagination,omitempty"`

	// Synthetic marks pages produced by the mock generator.
	Synthetic bool `json:"-"`
	// Source names the resolver that produced the page.
	Source string `json:"-"`
}

type pagePayload struct {
	Transactions json.RawMessage `json:"transactions"`
	Pagination   *PaginationMeta `json:"pagination"`
}

// DecodePage parses a `{transactions, pagination?}` body. Records that fail
// to decode individually are kept with DecodeErr set.
func DecodePage(r io.Reader) (*Page, error) {
	var payload pagePayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	raw := bytes.TrimSpace(payload.Transactions)
	if len(raw) == 0 || isNull(raw) {
		return nil, fmt.Errorf("%w: transactions field missing", ErrMalformedPayload)
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: transactions is not an array", ErrMalformedPayload)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	page := &Page{
		Transactions: make([]TransactionRecord, 0, len(items)),
		Pagination:   payload.Pagination,
	}
	for i, item := range items {
		page.Transactions = append(page.Transactions, decodeRecord(i, item))
	}
	return page, nil
}

func decodeRecord(index int, raw json.RawMessage) TransactionRecord {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return TransactionRecord{DecodeErr: fmt.Errorf("record %d is not an object", index)}
	}
	var rec TransactionRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return TransactionRecord{DecodeErr: fmt.Errorf("record %d: %w", index, err)}
	}
	return rec
}
