package hora

import (
	"fmt"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/tile"
)

// Points is the payment breakdown of a line. For tsumo Dealer is what the
// dealer pays (zero when the winner is the dealer) and NonDealer is what each
// other seat pays. Total includes honba and deposit sticks.
type Points struct {
	Limit     string `json:"limit,omitempty"`
	Base      int    `json:"base"`
	Ron       int    `json:"ron,omitempty"`
	Dealer    int    `json:"dealer,omitempty"`
	NonDealer int    `json:"nonDealer,omitempty"`
	Total     int    `json:"total"`
}

const depositStick = 1000

func score(ctx Context, in hand.Input, r reading, win tile.Tile, src Source) Line {
	v := newView(ctx, in, r, win, src)
	line := Line{Tile: win, Source: src, Fu: v.fu()}

	if ym := v.yakuman(); len(ym) > 0 {
		for _, y := range ym {
			line.Yakuman += y.Yakuman
		}
		line.Yaku = ym
		line.Points = Pay(ctx, src, 0, line.Fu, line.Yakuman)
		return line
	}

	line.Yaku = append(v.yaku(), v.doraYaku()...)
	for _, y := range line.Yaku {
		line.Han += y.Han
	}
	line.Points = Pay(ctx, src, line.Han, line.Fu, 0)
	return line
}

// Pay computes the payments for a hand of han and fu, or of a number of
// yakuman when yakuman is positive.
func Pay(ctx Context, src Source, han, fu, yakuman int) Points {
	p := limit(ctx.Rule, han, fu, yakuman)

	honba := ctx.Table.Continue * ctx.Rule.HonbaBonus
	dealer := ctx.Table.IsDealer()
	switch {
	case src == Ron && dealer:
		p.Ron = roundUp(p.Base*6) + 3*honba
		p.Total = p.Ron
	case src == Ron:
		p.Ron = roundUp(p.Base*4) + 3*honba
		p.Total = p.Ron
	case dealer:
		p.NonDealer = roundUp(p.Base*2) + honba
		p.Total = 3 * p.NonDealer
	default:
		p.Dealer = roundUp(p.Base*2) + honba
		p.NonDealer = roundUp(p.Base) + honba
		p.Total = p.Dealer + 2*p.NonDealer
	}
	p.Total += ctx.Table.Deposit * depositStick
	return p
}

func limit(rule hand.Rule, han, fu, yakuman int) Points {
	if yakuman == 0 && han >= 13 && rule.AccumulatedYakuman {
		return Points{Limit: "kazoe-yakuman", Base: 8000}
	}
	switch {
	case yakuman == 1:
		return Points{Limit: "yakuman", Base: 8000}
	case yakuman > 1:
		return Points{Limit: fmt.Sprintf("%dx-yakuman", yakuman), Base: 8000 * yakuman}
	case han >= 11:
		return Points{Limit: "sanbaiman", Base: 6000}
	case han >= 8:
		return Points{Limit: "baiman", Base: 4000}
	case han >= 6:
		return Points{Limit: "haneman", Base: 3000}
	case han == 5:
		return Points{Limit: "mangan", Base: 2000}
	}
	base := fu << (han + 2)
	if base >= 2000 || (rule.RoundedMangan && (han == 4 && fu == 30 || han == 3 && fu == 60)) {
		return Points{Limit: "mangan", Base: 2000}
	}
	return Points{Base: base}
}

func roundUp(n int) int {
	return (n + 99) / 100 * 100
}
