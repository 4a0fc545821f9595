package hora

import (
	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/shanten"
	"github.com/lox/mahjongdojo/tile"
)

const (
	kindWhite = 31
	kindGreen = 32
	kindRed   = 33
)

// view is a reading scored for one winning tile and source
type view struct {
	ctx    Context
	r      reading
	groups []group
	win    tile.Tile
	src    Source
	menzen bool
	melds  int
	dora   []tile.Tile
	ura    []tile.Tile
	tiles  []tile.Tile
	all    shanten.Counts
}

func newView(ctx Context, in hand.Input, r reading, win tile.Tile, src Source) *view {
	v := &view{
		ctx:    ctx,
		r:      r,
		win:    win,
		src:    src,
		menzen: in.IsConcealed(),
		melds:  len(in.Melds),
		dora:   in.Dora,
		ura:    in.Ura,
	}
	v.groups = append([]group(nil), r.groups...)
	// a triplet finished by a discard is not concealed
	if src == Ron && r.at >= 0 && v.groups[r.at].kind == triplet {
		v.groups[r.at].closed = false
	}
	v.tiles = append(append(append([]tile.Tile(nil), in.Concealed...), win), in.MeldTiles()...)
	v.all = tile.Counts(v.tiles)
	return v
}

func (v *view) every(pred func(k int) bool) bool {
	for k, n := range v.all {
		if n > 0 && !pred(k) {
			return false
		}
	}
	return true
}

func (v *view) count(pred func(g group) bool) int {
	n := 0
	for _, g := range v.groups {
		if pred(g) {
			n++
		}
	}
	return n
}

func isHonorKind(k int) bool    { return k >= 27 }
func isTerminalKind(k int) bool { return k < 27 && (k%9 == 0 || k%9 == 8) }
func isDragonKind(k int) bool   { return k >= kindWhite }
func isWindKind(k int) bool     { return k >= 27 && k < kindWhite }

func isGreenKind(k int) bool {
	switch k {
	case 19, 20, 21, 23, 25, kindGreen:
		return true
	}
	return false
}

func (v *view) seatWind() int  { return v.ctx.Table.Seat.Tile().Kind() }
func (v *view) roundWind() int { return v.ctx.Table.Round.Tile().Kind() }

func (v *view) isValuePair(k int) bool {
	return isDragonKind(k) || k == v.seatWind() || k == v.roundWind()
}

// suits reports which number suits appear and whether honors do
func (v *view) suits() (numbers int, honors bool) {
	var seen [3]bool
	for k, n := range v.all {
		if n == 0 {
			continue
		}
		if k >= 27 {
			honors = true
			continue
		}
		seen[k/9] = true
	}
	for _, s := range seen {
		if s {
			numbers++
		}
	}
	return numbers, honors
}

func (v *view) yakuman() []Yaku {
	var out []Yaku
	rule := v.ctx.Rule
	add := func(name string, double bool) {
		n := 1
		if double {
			n = 2
		}
		out = append(out, Yaku{Name: name, Yakuman: n})
	}

	if v.ctx.Options.Tenhou && v.src == Tsumo {
		if v.ctx.Table.IsDealer() {
			add("tenhou", false)
		} else {
			add("chiihou", false)
		}
	}
	if v.r.form == Orphans {
		add("kokushi", v.r.wait == waitThirteen && rule.Kokushi13DoubleYakuman)
		return v.capYakuman(out)
	}

	if v.every(isHonorKind) {
		add("tsuuiisou", false)
	}
	if v.every(isTerminalKind) {
		add("chinroutou", false)
	}
	if v.every(isGreenKind) {
		add("ryuuiisou", false)
	}

	if v.r.form == Regular {
		if v.count(func(g group) bool { return g.isSet() && g.closed }) == 4 {
			add("suuankou", v.r.wait == waitTanki && rule.SuankoTankiDoubleYakuman)
		}
		if v.count(func(g group) bool { return g.isSet() && isDragonKind(g.first) }) == 3 {
			add("daisangen", false)
		}
		switch winds := v.count(func(g group) bool { return g.isSet() && isWindKind(g.first) }); {
		case winds == 4:
			add("daisuushii", rule.DaisushiDoubleYakuman)
		case winds == 3 && isWindKind(v.r.pair):
			add("shousuushii", false)
		}
		if v.count(func(g group) bool { return g.kind == quad }) == 4 {
			add("suukantsu", false)
		}
		if ok, pure := v.chuuren(); ok {
			add("chuuren", pure && rule.PureChurenDoubleYakuman)
		}
	}
	return v.capYakuman(out)
}

// capYakuman keeps only the largest yakuman when they may not stack
func (v *view) capYakuman(out []Yaku) []Yaku {
	if v.ctx.Rule.MultipleYakuman || len(out) < 2 {
		return out
	}
	best := out[0]
	for _, y := range out[1:] {
		if y.Yakuman > best.Yakuman {
			best = y
		}
	}
	return []Yaku{best}
}

var churenBase = [9]int{3, 1, 1, 1, 1, 1, 1, 1, 3}

// chuuren reports nine gates and whether the hand waited on all nine tiles
func (v *view) chuuren() (ok, pure bool) {
	if v.melds > 0 {
		return false, false
	}
	numbers, honors := v.suits()
	if numbers != 1 || honors {
		return false, false
	}
	suit := v.win.Kind() / 9 * 9
	pure = true
	for r, need := range churenBase {
		n := v.r.counts[suit+r]
		if n < need {
			return false, false
		}
		before := n
		if suit+r == v.r.win {
			before--
		}
		if before != need {
			pure = false
		}
	}
	return true, pure
}

func (v *view) pinfu() bool {
	if !v.menzen || v.r.form != Regular || v.melds > 0 {
		return false
	}
	if v.count(func(g group) bool { return g.kind != run }) > 0 {
		return false
	}
	return !v.isValuePair(v.r.pair) && v.r.wait == waitRyanmen
}

// peikou counts pairs of identical concealed runs
func (v *view) peikou() int {
	if !v.menzen {
		return 0
	}
	runs := make(map[int]int)
	for _, g := range v.groups {
		if g.kind == run && !g.open {
			runs[g.first]++
		}
	}
	n := 0
	for _, c := range runs {
		n += c / 2
	}
	return n
}

func (v *view) hasSet(k int) bool {
	return v.count(func(g group) bool { return g.isSet() && g.first == k }) > 0
}

func (v *view) hasRun(first int) bool {
	return v.count(func(g group) bool { return g.kind == run && g.first == first }) > 0
}

func (v *view) yaku() []Yaku {
	var out []Yaku
	add := func(name string, closedHan, openHan int) {
		han := closedHan
		if !v.menzen {
			han = openHan
		}
		if han > 0 {
			out = append(out, Yaku{Name: name, Han: han})
		}
	}
	opts := v.ctx.Options

	switch opts.Riichi {
	case hand.RiichiSingle:
		add("riichi", 1, 0)
	case hand.RiichiDouble:
		add("double-riichi", 2, 0)
	}
	if opts.Riichi.Active() && opts.Ippatsu {
		add("ippatsu", 1, 0)
	}
	if v.src == Tsumo {
		add("menzen-tsumo", 1, 0)
	}
	if opts.Haitei {
		if v.src == Tsumo {
			add("haitei", 1, 1)
		} else {
			add("houtei", 1, 1)
		}
	}
	if opts.Rinshan && v.src == Tsumo {
		add("rinshan", 1, 1)
	}
	if opts.Chankan && v.src == Ron {
		add("chankan", 1, 1)
	}
	if v.every(func(k int) bool { return !isYaochuuKind(k) }) {
		add("tanyao", 1, 1)
	}
	switch numbers, honors := v.suits(); {
	case numbers == 1 && !honors:
		add("chinitsu", 6, 5)
	case numbers == 1 && honors:
		add("honitsu", 3, 2)
	}
	allYaochuu := v.every(isYaochuuKind)

	if v.r.form == SevenPairs {
		add("chiitoitsu", 2, 0)
		if allYaochuu {
			add("honroutou", 2, 2)
		}
		return out
	}

	if v.pinfu() {
		add("pinfu", 1, 0)
	}
	switch v.peikou() {
	case 2:
		add("ryanpeikou", 3, 0)
	case 1:
		add("iipeikou", 1, 0)
	}

	for _, d := range []struct {
		kind int
		name string
	}{{kindWhite, "haku"}, {kindGreen, "hatsu"}, {kindRed, "chun"}} {
		if v.hasSet(d.kind) {
			add(d.name, 1, 1)
		}
	}
	if v.hasSet(v.seatWind()) {
		add("seat-wind", 1, 1)
	}
	if v.hasSet(v.roundWind()) {
		add("round-wind", 1, 1)
	}

	sets := v.count(func(g group) bool { return g.isSet() })
	if sets == 4 {
		add("toitoi", 2, 2)
	}
	if v.count(func(g group) bool { return g.isSet() && g.closed }) == 3 {
		add("sanankou", 2, 2)
	}
	if v.count(func(g group) bool { return g.kind == quad }) == 3 {
		add("sankantsu", 2, 2)
	}

	for r := range 9 {
		if r <= 6 && v.hasRun(r) && v.hasRun(9+r) && v.hasRun(18+r) {
			add("sanshoku-doujun", 2, 1)
			break
		}
	}
	for r := range 9 {
		if v.hasSet(r) && v.hasSet(9+r) && v.hasSet(18+r) {
			add("sanshoku-doukou", 2, 2)
			break
		}
	}
	for s := range 3 {
		if v.hasRun(s*9) && v.hasRun(s*9+3) && v.hasRun(s*9+6) {
			add("ittsu", 2, 1)
			break
		}
	}

	runs := 4 - sets
	outside := isYaochuuKind(v.r.pair) && v.count(func(g group) bool { return !g.hasYaochuu() }) == 0
	switch _, honors := v.suits(); {
	case outside && runs > 0 && honors:
		add("chanta", 2, 1)
	case outside && runs > 0:
		add("junchan", 3, 2)
	case allYaochuu:
		add("honroutou", 2, 2)
	}

	if v.count(func(g group) bool { return g.isSet() && isDragonKind(g.first) }) == 2 && isDragonKind(v.r.pair) {
		add("shousangen", 2, 2)
	}
	return out
}

func (v *view) doraYaku() []Yaku {
	count := func(indicators []tile.Tile) int {
		n := 0
		for _, ind := range indicators {
			n += v.all[tile.DoraFromIndicator(ind).Kind()]
		}
		return n
	}
	var out []Yaku
	if n := count(v.dora); n > 0 {
		out = append(out, Yaku{Name: "dora", Han: n})
	}
	red := 0
	for _, t := range v.tiles {
		if t.Red {
			red++
		}
	}
	if red > 0 {
		out = append(out, Yaku{Name: "red-dora", Han: red})
	}
	if v.ctx.Options.Riichi.Active() {
		if n := count(v.ura); n > 0 {
			out = append(out, Yaku{Name: "ura-dora", Han: n})
		}
	}
	return out
}
