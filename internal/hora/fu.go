package hora

func (v *view) fu() int {
	switch v.r.form {
	case SevenPairs:
		return 25
	case Orphans:
		return 30
	}
	pinfu := v.pinfu()
	if pinfu && v.src == Tsumo {
		return 20
	}

	fu := 20
	if v.menzen && v.src == Ron {
		fu += 10
	}
	if v.src == Tsumo {
		fu += 2
	}
	for _, g := range v.groups {
		if !g.isSet() {
			continue
		}
		f := 2
		if isYaochuuKind(g.first) {
			f *= 2
		}
		if g.closed {
			f *= 2
		}
		if g.kind == quad {
			f *= 4
		}
		fu += f
	}
	fu += v.pairFu()
	switch v.r.wait {
	case waitKanchan, waitPenchan, waitTanki:
		fu += 2
	}

	fu = (fu + 9) / 10 * 10
	if fu == 20 {
		// open hand with no fu at all
		fu = 30
	}
	return fu
}

func (v *view) pairFu() int {
	k := v.r.pair
	if isDragonKind(k) {
		return 2
	}
	seat, round := k == v.seatWind(), k == v.roundWind()
	switch {
	case seat && round:
		return v.ctx.Rule.DoubleWindFu
	case seat || round:
		return 2
	}
	return 0
}
