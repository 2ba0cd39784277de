package mana

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Cost represents a parsed mana cost: colored pips, a generic component and
// an optional X.
type Cost struct {
	Generic int
	Pips    map[Color]int
	X       bool
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseCost parses a mana cost string such as "{1}{G}", "{2}{R}{R}" or
// "{X}{B}". An empty string parses to a free cost.
func ParseCost(costStr string) (*Cost, error) {
	cost := &Cost{Pips: make(map[Color]int)}
	if costStr == "" {
		return cost, nil
	}

	matches := symbolPattern.FindAllStringSubmatch(costStr, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("malformed mana cost %q", costStr)
	}

	for _, match := range matches {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))
		switch symbol {
		case "X":
			cost.X = true
		case "W":
			cost.Pips[White]++
		case "U":
			cost.Pips[Blue]++
		case "B":
			cost.Pips[Black]++
		case "R":
			cost.Pips[Red]++
		case "G":
			cost.Pips[Green]++
		default:
			num, err := strconv.Atoi(symbol)
			if err != nil {
				return nil, fmt.Errorf("unknown mana symbol {%s}", symbol)
			}
			cost.Generic += num
		}
	}
	return cost, nil
}

// MustParse parses a cost string and panics on error. Intended for card
// definitions built from literals.
func MustParse(costStr string) *Cost {
	cost, err := ParseCost(costStr)
	if err != nil {
		panic(err)
	}
	return cost
}

// Copy returns an independent copy of the cost.
func (c *Cost) Copy() *Cost {
	cpy := &Cost{Generic: c.Generic, X: c.X, Pips: make(map[Color]int, len(c.Pips))}
	for color, n := range c.Pips {
		cpy.Pips[color] = n
	}
	return cpy
}

// PipCount returns the number of pips of a given color.
func (c *Cost) PipCount(color Color) int {
	if c.Pips == nil {
		return 0
	}
	return c.Pips[color]
}

// ConvertedValue returns the converted cost for a chosen X value.
func (c *Cost) ConvertedValue(x int) int {
	total := c.Generic
	for _, n := range c.Pips {
		total += n
	}
	if c.X {
		total += x
	}
	return total
}

// String renders the cost back into symbol notation.
func (c *Cost) String() string {
	var sb strings.Builder
	if c.X {
		sb.WriteString("{X}")
	}
	if c.Generic > 0 {
		fmt.Fprintf(&sb, "{%d}", c.Generic)
	}
	symbols := map[Color]string{White: "W", Blue: "U", Black: "B", Red: "R", Green: "G"}
	colors := make([]Color, 0, len(c.Pips))
	for color := range c.Pips {
		colors = append(colors, color)
	}
	sort.Slice(colors, func(i, j int) bool {
		return colorIndex(colors[i]) < colorIndex(colors[j])
	})
	for _, color := range colors {
		for i := 0; i < c.Pips[color]; i++ {
			sb.WriteString("{" + symbols[color] + "}")
		}
	}
	if sb.Len() == 0 {
		return "{0}"
	}
	return sb.String()
}

func colorIndex(color Color) int {
	for i, c := range Colors {
		if c == color {
			return i
		}
	}
	return len(Colors)
}

// Reduced returns a copy of the cost with the generic component reduced by
// the given amount, floored at zero. Colored pips are never reduced.
func (c *Cost) Reduced(generic int) *Cost {
	reduced := c.Copy()
	reduced.Generic -= generic
	if reduced.Generic < 0 {
		reduced.Generic = 0
	}
	return reduced
}
