// Package basket groups transactions into monthly per-user baskets and builds
// the boolean basket x service incidence matrix the miners work on.
package basket

import (
	"time"

	"go.uber.org/zap"

	"basket-rules/core/determinism"
	"basket-rules/core/types"
	"basket-rules/internal/logging"
)

// Builder accumulates purchase counts per (basket, service).
type Builder struct {
	counts       map[types.BasketID]map[types.ServiceCategory]int
	users        map[int]struct{}
	transactions int
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		counts: make(map[types.BasketID]map[types.ServiceCategory]int),
		users:  make(map[int]struct{}),
	}
}

// Add records one purchase.
func (b *Builder) Add(tx types.Transaction) {
	id := tx.Basket()
	row, ok := b.counts[id]
	if !ok {
		row = make(map[types.ServiceCategory]int)
		b.counts[id] = row
	}
	row[tx.ServiceCategory()]++
	b.users[tx.UserID] = struct{}{}
	b.transactions++
}

// Count returns how many times service was bought in basket.
func (b *Builder) Count(basket types.BasketID, service types.ServiceCategory) int {
	return b.counts[basket][service]
}

// Build binarizes the counts into a Matrix. Any count above zero becomes 1;
// missing combinations are 0.
func (b *Builder) Build() *Matrix {
	start := time.Now()

	services := make(map[types.ServiceCategory]struct{})
	for _, row := range b.counts {
		for s := range row {
			services[s] = struct{}{}
		}
	}

	m := &Matrix{
		baskets:      determinism.SortedKeys(b.counts),
		services:     determinism.SortedKeys(services),
		basketIndex:  make(map[types.BasketID]int, len(b.counts)),
		serviceIndex: make(map[types.ServiceCategory]int, len(services)),
		users:        len(b.users),
		transactions: b.transactions,
	}
	for i, id := range m.baskets {
		m.basketIndex[id] = i
	}
	for j, s := range m.services {
		m.serviceIndex[s] = j
	}

	m.rows = make([][]int, len(m.baskets))
	m.columns = make([]Bitset, len(m.services))
	for j := range m.columns {
		m.columns[j] = NewBitset(len(m.baskets))
	}
	for i, id := range m.baskets {
		row := b.counts[id]
		cols := make([]int, 0, len(row))
		for _, s := range determinism.SortedKeys(row) {
			if row[s] <= 0 {
				continue
			}
			j := m.serviceIndex[s]
			cols = append(cols, j)
			m.columns[j].Set(i)
		}
		m.rows[i] = cols
	}

	logging.Stage("basket").Debug("Built incidence matrix",
		zap.Int("baskets", len(m.baskets)),
		zap.Int("services", len(m.services)),
		zap.Int("users", m.users),
		zap.Int("transactions", m.transactions),
		logging.Elapsed(start))
	return m
}

// Build groups txs by basket and service and returns the incidence matrix.
func Build(txs []types.Transaction) *Matrix {
	b := NewBuilder()
	for _, tx := range txs {
		b.Add(tx)
	}
	return b.Build()
}

// Matrix is the boolean incidence matrix: rows are baskets, columns are
// services, both in ascending order.
type Matrix struct {
	baskets      []types.BasketID
	services     []types.ServiceCategory
	basketIndex  map[types.BasketID]int
	serviceIndex map[types.ServiceCategory]int

	// rows[i] holds the column indices set in basket i
	rows [][]int

	// columns[j] holds the rows where service j is set
	columns []Bitset

	users        int
	transactions int
}

// Stats summarizes a matrix.
type Stats struct {
	Baskets      int     `json:"baskets"`
	Services     int     `json:"services"`
	Users        int     `json:"users"`
	Transactions int     `json:"transactions"`
	Density      float64 `json:"density"`
}

// Len returns the number of baskets.
func (m *Matrix) Len() int {
	return len(m.baskets)
}

// Baskets returns the row keys in order.
func (m *Matrix) Baskets() []types.BasketID {
	out := make([]types.BasketID, len(m.baskets))
	copy(out, m.baskets)
	return out
}

// Services returns the column keys in order.
func (m *Matrix) Services() []types.ServiceCategory {
	out := make([]types.ServiceCategory, len(m.services))
	copy(out, m.services)
	return out
}

// HasService reports whether the service appears in any basket.
func (m *Matrix) HasService(s types.ServiceCategory) bool {
	_, ok := m.serviceIndex[s]
	return ok
}

// Cell returns 1 when basket contains service, else 0.
func (m *Matrix) Cell(basket types.BasketID, service types.ServiceCategory) uint8 {
	i, ok := m.basketIndex[basket]
	if !ok {
		return 0
	}
	j, ok := m.serviceIndex[service]
	if !ok {
		return 0
	}
	if m.columns[j].Has(i) {
		return 1
	}
	return 0
}

// Row returns the services set in basket.
func (m *Matrix) Row(basket types.BasketID) types.Itemset {
	i, ok := m.basketIndex[basket]
	if !ok {
		return types.Itemset{}
	}
	out := make(types.Itemset, len(m.rows[i]))
	for k, j := range m.rows[i] {
		out[k] = m.services[j]
	}
	return out
}

// Column returns the rows containing service, or nil when it is unknown.
// The returned bitset must not be modified.
func (m *Matrix) Column(service types.ServiceCategory) Bitset {
	j, ok := m.serviceIndex[service]
	if !ok {
		return nil
	}
	return m.columns[j]
}

// Cover returns the rows containing every member of items. An empty itemset
// covers every row.
func (m *Matrix) Cover(items types.Itemset) Bitset {
	if len(items) == 0 {
		all := NewBitset(len(m.baskets))
		for i := range m.baskets {
			all.Set(i)
		}
		return all
	}
	var cover Bitset
	for _, item := range items {
		col := m.Column(item)
		if col == nil {
			return NewBitset(len(m.baskets))
		}
		if cover == nil {
			cover = col.And(col)
		} else {
			cover = cover.And(col)
		}
	}
	return cover
}

// Count returns the number of baskets containing service.
func (m *Matrix) Count(service types.ServiceCategory) int {
	col := m.Column(service)
	if col == nil {
		return 0
	}
	return col.Count()
}

// Support returns the fraction of baskets containing every member of items.
func (m *Matrix) Support(items types.Itemset) float64 {
	if len(m.baskets) == 0 {
		return 0
	}
	return float64(m.Cover(items).Count()) / float64(len(m.baskets))
}

// Stats returns matrix dimensions and fill.
func (m *Matrix) Stats() Stats {
	st := Stats{
		Baskets:      len(m.baskets),
		Services:     len(m.services),
		Users:        m.users,
		Transactions: m.transactions,
	}
	if cells := len(m.baskets) * len(m.services); cells > 0 {
		set := 0
		for _, row := range m.rows {
			set += len(row)
		}
		st.Density = float64(set) / float64(cells)
	}
	return st
}
