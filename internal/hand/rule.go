package hand

import "github.com/lox/mahjongdojo/tile"

// RedFives is the number of red fives per number suit
type RedFives struct {
	Man int `json:"m" hcl:"man,optional"`
	Pin int `json:"p" hcl:"pin,optional"`
	Sou int `json:"s" hcl:"sou,optional"`
}

// For returns the allowance of a suit; honors have none
func (r RedFives) For(s tile.Suit) int {
	switch s {
	case tile.Man:
		return r.Man
	case tile.Pin:
		return r.Pin
	case tile.Sou:
		return r.Sou
	}
	return 0
}

// Rule is the scoring rule set
type Rule struct {
	Red                      RedFives `json:"red"`
	HonbaBonus               int      `json:"honbaBonus"`
	RoundedMangan            bool     `json:"roundedMangan"`
	DoubleWindFu             int      `json:"doubleWindFu"`
	AccumulatedYakuman       bool     `json:"accumulatedYakuman"`
	MultipleYakuman          bool     `json:"multipleYakuman"`
	Kokushi13DoubleYakuman   bool     `json:"kokushi13DoubleYakuman"`
	SuankoTankiDoubleYakuman bool     `json:"suankoTankiDoubleYakuman"`
	DaisushiDoubleYakuman    bool     `json:"daisushiDoubleYakuman"`
	PureChurenDoubleYakuman  bool     `json:"pureChurenDoubleYakuman"`
	FinalRound               int      `json:"finalRound"`
}

// DefaultRule is one red five per suit with common tournament options
func DefaultRule() Rule {
	return Rule{
		Red:             RedFives{Man: 1, Pin: 1, Sou: 1},
		HonbaBonus:      100,
		RoundedMangan:   true,
		DoubleWindFu:    2,
		MultipleYakuman: true,
		FinalRound:      4,
	}
}
