package mana

import (
	"sync"
)

// Color represents a color of mana.
type Color string

const (
	White Color = "WHITE"
	Blue  Color = "BLUE"
	Black Color = "BLACK"
	Red   Color = "RED"
	Green Color = "GREEN"
)

// Colors lists all mana colors in WUBRG order. Payment algorithms iterate
// this slice so that spillover spending is deterministic.
var Colors = []Color{White, Blue, Black, Red, Green}

// Pool represents a player's mana pool: per-color counts, a wildcard count
// that can pay any colored pip, and a generic count that can only pay
// generic costs. The pool is cleared at every step transition.
type Pool struct {
	mu sync.RWMutex

	colors  map[Color]int
	any     int
	generic int
}

// NewPool creates a new empty mana pool.
func NewPool() *Pool {
	return &Pool{colors: make(map[Color]int)}
}

// Add adds colored mana to the pool.
func (p *Pool) Add(color Color, amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colors[color] += amount
}

// AddAny adds wildcard mana that can be spent as any color.
func (p *Pool) AddAny(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.any += amount
}

// AddGeneric adds mana that can only pay generic costs.
func (p *Pool) AddGeneric(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generic += amount
}

// Amount returns the amount of a specific color currently in the pool.
func (p *Pool) Amount(color Color) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.colors[color]
}

// Any returns the wildcard mana count.
func (p *Pool) Any() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.any
}

// Generic returns the generic-only mana count.
func (p *Pool) Generic() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generic
}

// Total returns the total amount of mana in the pool.
func (p *Pool) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := p.any + p.generic
	for _, n := range p.colors {
		total += n
	}
	return total
}

// IsEmpty reports whether the pool holds no mana at all.
func (p *Pool) IsEmpty() bool {
	return p.Total() == 0
}

// Clear empties the pool. Called by the engine at every step transition.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colors = make(map[Color]int)
	p.any = 0
	p.generic = 0
}

// Copy returns an independent copy of the pool. Payment simulation works on
// a copy so that a failed attempt never mutates the live pool.
func (p *Pool) Copy() *Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cpy := NewPool()
	for c, n := range p.colors {
		cpy.colors[c] = n
	}
	cpy.any = p.any
	cpy.generic = p.generic
	return cpy
}

// spendColor removes colored mana, preferring the matching color and
// falling back to wildcard mana for any shortfall. Returns false if the
// combined amount is insufficient; the pool is not modified in that case.
func (p *Pool) spendColor(color Color, amount int) bool {
	if amount <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	have := p.colors[color]
	if have+p.any < amount {
		return false
	}
	fromColor := amount
	if fromColor > have {
		fromColor = have
	}
	p.colors[color] = have - fromColor
	p.any -= amount - fromColor
	return true
}

// spendGeneric removes mana usable for a generic cost: generic mana first,
// then spillover from colored mana in WUBRG order, then wildcard mana.
// Returns false if the pool cannot cover the amount; no partial spend occurs.
func (p *Pool) spendGeneric(amount int) bool {
	if amount <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.any + p.generic
	for _, n := range p.colors {
		total += n
	}
	if total < amount {
		return false
	}

	remaining := amount
	spend := remaining
	if spend > p.generic {
		spend = p.generic
	}
	p.generic -= spend
	remaining -= spend

	for _, c := range Colors {
		if remaining == 0 {
			break
		}
		spend = remaining
		if spend > p.colors[c] {
			spend = p.colors[c]
		}
		p.colors[c] -= spend
		remaining -= spend
	}

	p.any -= remaining
	return true
}
