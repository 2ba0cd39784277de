package mana

import (
	"fmt"
)

// CanPay reports whether the pool can cover the cost with the given X value
// after the generic component has been reduced by reduction. It runs the
// same algorithm as Pay against a copy of the pool, so the affordability
// verdict and destructive payment always agree.
func CanPay(cost *Cost, pool *Pool, xValue, reduction int) bool {
	if cost == nil {
		return true
	}
	if cost.X && xValue < 0 {
		return false
	}
	return pay(cost, pool.Copy(), xValue, reduction) == nil
}

// Pay spends mana from the pool to cover the cost. Colored pips are paid
// from the matching color with shortfall drawn from wildcard mana; the
// reduced generic component is paid from the generic pool, spilling over
// into colored then wildcard mana. On failure the pool is left untouched.
func Pay(cost *Cost, pool *Pool, xValue, reduction int) error {
	if cost == nil {
		return nil
	}
	if cost.X && xValue < 0 {
		return fmt.Errorf("cost requires an X value")
	}
	// Dry run against a copy first so that a failed payment never leaves
	// the live pool partially drained.
	if err := pay(cost, pool.Copy(), xValue, reduction); err != nil {
		return err
	}
	return pay(cost, pool, xValue, reduction)
}

func pay(cost *Cost, pool *Pool, xValue, reduction int) error {
	for _, color := range Colors {
		need := cost.PipCount(color)
		if !pool.spendColor(color, need) {
			return fmt.Errorf("insufficient %s mana (need %d)", color, need)
		}
	}

	generic := cost.Generic - reduction
	if generic < 0 {
		generic = 0
	}
	if cost.X {
		generic += xValue
	}
	if !pool.spendGeneric(generic) {
		return fmt.Errorf("insufficient mana for generic cost (need %d)", generic)
	}
	return nil
}

// MaxX returns the largest X value the pool can afford for the cost, or -1
// if even X=0 is unaffordable. The search consumes the pool greedily under
// the same payment algorithm used by CanPay and Pay.
func MaxX(cost *Cost, pool *Pool, reduction int) int {
	if cost == nil || !cost.X {
		return 0
	}
	if !CanPay(cost, pool, 0, reduction) {
		return -1
	}
	// The remaining pool after X=0 payment can be spent one-for-one on X.
	probe := pool.Copy()
	if err := pay(cost, probe, 0, reduction); err != nil {
		return -1
	}
	return probe.Total()
}
