package transactionlist

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/jababank/backend/src/models"
)

const (
	MockTotalItems  = 58
	MockDateLayout  = "Jan 2, 2006"
	mockOwnAccount  = "Checking ****4321"
	mockOtherParty  = "External"
	mockMaxLookback = 30
)

var (
	mockTypes        = []string{"deposit", "withdrawal", "transfer"}
	mockDescriptions = []string{
		"Grocery Store", "Salary Deposit", "ATM Withdrawal", "Online Transfer",
		"Electric Bill", "Restaurant", "Online Shopping", "Gas Station",
	}
)

// MockGenerator produces a fixed-size synthetic ledger for demos and for
// environments without a banking backend.
type MockGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewMockGenerator seeds the generator. A zero seed draws a random one.
func NewMockGenerator(seed uint64) *MockGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &MockGenerator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// WithClock overrides the time source.
func (g *MockGenerator) WithClock(now func() time.Time) *MockGenerator {
	g.mu.Lock()
	g.now = now
	g.mu.Unlock()
	return g
}

// Generate returns the requested window of the synthetic ledger.
func (g *MockGenerator) Generate(req PageRequest, showUser bool) *models.Page {
	size := req.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	pageNum := req.Page
	if pageNum < 1 {
		pageNum = 1
	}

	start := (pageNum - 1) * size
	end := min(start+size, MockTotalItems)

	g.mu.Lock()
	defer g.mu.Unlock()

	txs := make([]models.TransactionRecord, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		txs = append(txs, g.record(i, req.UserID, showUser))
	}

	return &models.Page{
		Transactions: txs,
		Pagination: &models.PaginationMeta{
			TotalItems:  MockTotalItems,
			TotalPages:  (MockTotalItems + size - 1) / size,
			CurrentPage: pageNum,
			PageSize:    size,
		},
		Synthetic: true,
	}
}

func (g *MockGenerator) record(i, userID int, showUser bool) models.TransactionRecord {
	txType := mockTypes[g.rng.IntN(len(mockTypes))]
	amount := decimal.NewFromFloat(10 + g.rng.Float64()*990).Truncate(2)
	isDebit := g.rng.Float64() > 0.5
	daysAgo := g.rng.IntN(mockMaxLookback)
	date := g.now().AddDate(0, 0, -daysAgo).Format(MockDateLayout)

	owner := userID
	if owner <= 0 {
		owner = 1
	}
	counterparty := g.rng.IntN(100) + 1

	rec := models.TransactionRecord{
		ID:          models.FlexString(fmt.Sprint(i + 1)),
		Date:        models.DisplayDate(date),
		Description: mockDescriptions[g.rng.IntN(len(mockDescriptions))],
		Type:        txType,
		Amount:      models.Amount{Decimal: amount},
		IsDebit:     models.FlexBool(isDebit),
	}
	if isDebit {
		rec.FromAccount, rec.ToAccount = mockOwnAccount, mockOtherParty
		rec.FromUserID, rec.ToUserID = models.FlexInt(owner), models.FlexInt(counterparty)
	} else {
		rec.FromAccount, rec.ToAccount = mockOtherParty, mockOwnAccount
		rec.FromUserID, rec.ToUserID = models.FlexInt(counterparty), models.FlexInt(owner)
	}
	if showUser {
		rec.UserName = fmt.Sprintf("Mock User %d", g.rng.IntN(100)+1)
	}
	return rec
}
