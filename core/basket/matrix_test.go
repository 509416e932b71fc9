package basket

import (
	"testing"
	"time"

	"basket-rules/core/types"
)

func tx(user, service, category int, date string) types.Transaction {
	t, err := time.Parse("2006-01-02 15:04:05", date)
	if err != nil {
		panic(err)
	}
	return types.Transaction{UserID: user, ServiceID: service, CategoryID: category, CreateDate: t}
}

// user 7256 buys 9_4 and 46_4 in August 2017 and 9_4 and 38_4 in October 2017
func user7256() []types.Transaction {
	return []types.Transaction{
		tx(7256, 9, 4, "2017-08-06 16:11:00"),
		tx(7256, 46, 4, "2017-08-12 09:30:00"),
		tx(7256, 9, 4, "2017-08-20 10:00:00"),
		tx(7256, 9, 4, "2017-10-01 08:00:00"),
		tx(7256, 38, 4, "2017-10-15 18:45:00"),
	}
}

func TestBuildSeparatesMonthlyBaskets(t *testing.T) {
	m := Build(user7256())

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if got := m.Row("2017-08_7256").Key(); got != "46_4,9_4" {
		t.Errorf("Row(2017-08_7256) = %s, want 46_4,9_4", got)
	}
	if got := m.Row("2017-10_7256").Key(); got != "38_4,9_4" {
		t.Errorf("Row(2017-10_7256) = %s, want 38_4,9_4", got)
	}

	want := map[types.BasketID]map[types.ServiceCategory]uint8{
		"2017-08_7256": {"9_4": 1, "46_4": 1, "38_4": 0},
		"2017-10_7256": {"9_4": 1, "46_4": 0, "38_4": 1},
	}
	for b, cells := range want {
		for s, v := range cells {
			if got := m.Cell(b, s); got != v {
				t.Errorf("Cell(%s, %s) = %d, want %d", b, s, got, v)
			}
		}
	}
}

func TestMatrixIsBinary(t *testing.T) {
	b := NewBuilder()
	for _, tr := range user7256() {
		b.Add(tr)
	}
	if got := b.Count("2017-08_7256", "9_4"); got != 2 {
		t.Fatalf("Count() before binarizing = %d, want 2", got)
	}

	m := b.Build()
	for _, basket := range m.Baskets() {
		for _, service := range m.Services() {
			if c := m.Cell(basket, service); c > 1 {
				t.Errorf("Cell(%s, %s) = %d, want 0 or 1", basket, service, c)
			}
		}
	}
	if got := m.Count("9_4"); got != 2 {
		t.Errorf("Count(9_4) = %d, want 2", got)
	}
}

func TestEveryTransactionMapsToOneBasketAndService(t *testing.T) {
	txs := append(user7256(),
		tx(25446, 2, 0, "2017-08-06 16:11:00"),
		tx(25446, 2, 0, "2018-01-01 00:00:00"),
		tx(10618, 0, 8, "2017-08-30 23:59:59"),
	)
	m := Build(txs)

	for _, tr := range txs {
		if m.Cell(tr.Basket(), tr.ServiceCategory()) != 1 {
			t.Errorf("transaction %+v not reflected in basket %s", tr, tr.Basket())
		}
	}

	st := m.Stats()
	if st.Baskets != 5 || st.Services != 5 || st.Users != 3 || st.Transactions != len(txs) {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.Density <= 0 || st.Density > 1 {
		t.Errorf("Density = %v, want (0,1]", st.Density)
	}
}

func TestSupportAndCover(t *testing.T) {
	txs := append(user7256(), tx(1, 9, 4, "2017-09-01 00:00:00"), tx(1, 38, 4, "2017-09-02 00:00:00"))
	m := Build(txs)

	tests := []struct {
		name  string
		items types.Itemset
		want  float64
	}{
		{name: "empty itemset covers all", items: types.NewItemset(), want: 1},
		{name: "single service", items: types.NewItemset("9_4"), want: 1},
		{name: "pair", items: types.NewItemset("9_4", "38_4"), want: 2.0 / 3.0},
		{name: "disjoint pair", items: types.NewItemset("46_4", "38_4"), want: 0},
		{name: "unknown service", items: types.NewItemset("99_9"), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Support(tt.items); got != tt.want {
				t.Errorf("Support(%s) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestEmptyMatrix(t *testing.T) {
	m := Build(nil)
	if m.Len() != 0 || len(m.Services()) != 0 {
		t.Fatalf("expected empty matrix, got %d x %d", m.Len(), len(m.Services()))
	}
	if m.Support(types.NewItemset("1_1")) != 0 {
		t.Error("Support on empty matrix must be 0")
	}
	if m.Cell("2017-08_1", "1_1") != 0 {
		t.Error("Cell on empty matrix must be 0")
	}
}

func TestBitset(t *testing.T) {
	a := NewBitset(130)
	b := NewBitset(130)
	for _, i := range []int{0, 63, 64, 129} {
		a.Set(i)
	}
	b.Set(64)
	b.Set(100)

	if a.Count() != 4 {
		t.Errorf("Count() = %d, want 4", a.Count())
	}
	and := a.And(b)
	if and.Count() != 1 || !and.Has(64) {
		t.Errorf("And() = %v", and)
	}
	if a.Has(200) || a.Has(-1) {
		t.Error("Has() out of range must be false")
	}
}
