package counters

// Type identifies a kind of counter placed on a permanent.
type Type string

const (
	// PlusOne is a +1/+1 counter.
	PlusOne Type = "+1/+1"
	// MinusOne is a -1/-1 counter.
	MinusOne Type = "-1/-1"
	// Charge is a generic charge counter.
	Charge Type = "CHARGE"
	// Loyalty is a loyalty counter.
	Loyalty Type = "LOYALTY"
)

// Counters manages the counters of a single permanent, keyed by type.
type Counters struct {
	counts map[Type]int
}

// New creates an empty counter collection.
func New() *Counters {
	return &Counters{counts: make(map[Type]int)}
}

// Add places amount counters of the given type. Non-positive amounts are
// ignored.
func (c *Counters) Add(t Type, amount int) {
	if amount <= 0 {
		return
	}
	c.counts[t] += amount
}

// Remove takes up to amount counters of the given type, flooring at zero.
func (c *Counters) Remove(t Type, amount int) {
	if amount <= 0 {
		return
	}
	if c.counts[t] <= amount {
		delete(c.counts, t)
		return
	}
	c.counts[t] -= amount
}

// Count returns the number of counters of the given type.
func (c *Counters) Count(t Type) int {
	return c.counts[t]
}

// Total returns the total number of counters of all types.
func (c *Counters) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// PowerToughnessDelta returns the net power/toughness modification from
// +1/+1 and -1/-1 counters. The two types are not annihilated here; the
// derive pass only cares about the sum.
func (c *Counters) PowerToughnessDelta() (int, int) {
	delta := c.counts[PlusOne] - c.counts[MinusOne]
	return delta, delta
}

// Copy returns a deep copy of the collection.
func (c *Counters) Copy() *Counters {
	cpy := New()
	for t, n := range c.counts {
		cpy.counts[t] = n
	}
	return cpy
}

// Each calls fn for every counter type present with its count.
func (c *Counters) Each(fn func(t Type, count int)) {
	for t, n := range c.counts {
		fn(t, n)
	}
}
