package counters

import (
	"testing"
)

func TestAddAndCount(t *testing.T) {
	c := New()
	c.Add(PlusOne, 2)
	c.Add(PlusOne, 1)
	if c.Count(PlusOne) != 3 {
		t.Errorf("expected 3 counters, got %d", c.Count(PlusOne))
	}
}

func TestRemoveFloorsAtZero(t *testing.T) {
	c := New()
	c.Add(Charge, 2)
	c.Remove(Charge, 5)
	if c.Count(Charge) != 0 {
		t.Errorf("expected 0 counters, got %d", c.Count(Charge))
	}
}

func TestPowerToughnessDelta(t *testing.T) {
	c := New()
	c.Add(PlusOne, 3)
	c.Add(MinusOne, 1)
	power, toughness := c.PowerToughnessDelta()
	if power != 2 || toughness != 2 {
		t.Errorf("expected +2/+2, got %+d/%+d", power, toughness)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	c := New()
	c.Add(PlusOne, 1)
	cpy := c.Copy()
	cpy.Add(PlusOne, 4)
	if c.Count(PlusOne) != 1 {
		t.Errorf("copy mutated the original: %d", c.Count(PlusOne))
	}
}
