package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/tile"
)

func yakuNames(l hora.Line) []string {
	var out []string
	for _, y := range l.Yaku {
		out = append(out, y.Name)
	}
	return out
}

func TestRon(t *testing.T) {
	t.Parallel()

	e := discardFrom(t, "234m456p678s345s5m", "5m", hand.Kamicha)
	s := e.CallRon()
	require.NotEmpty(t, s.Win)
	for _, l := range s.Win {
		assert.Equal(t, hora.Ron, l.Source)
		assert.Equal(t, "5m", l.Tile.String())
	}
	assert.Contains(t, yakuNames(s.Win[0]), "tanyao")
	assert.True(t, s.RoundOver)
	assert.Len(t, s.Input.Concealed, 14)
	assert.Empty(t, s.Discards[hand.Kamicha])
	assert.Nil(t, s.DiscardCheck)
	assert.False(t, s.ReactionPhase)
	assert.True(t, s.Options.Ron)
	assert.Empty(t, s.Input.Ura)
	assert.False(t, s.Table.Honba)
}

func TestRonUnderRiichiRevealsUra(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", wallTail: "2m", turn: hand.Toimen})
	s.Options.Riichi = hand.RiichiSingle
	s.Phases.Ippatsu = true
	e, _ := newTestEngine(t, s)
	e.OpponentDiscard()

	s = e.CallRon()
	require.NotEmpty(t, s.Win)
	names := yakuNames(s.Win[0])
	assert.Contains(t, names, "riichi")
	assert.Contains(t, names, "ippatsu")
	assert.Equal(t, s.UraPending[:1], s.Input.Ura)
	assert.False(t, s.Table.RiichiLastGame)
}

func TestRonRejections(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, fixture(t, layout{concealed: "234m456p678s345s5m"}))
	s := e.CallRon()
	assert.Equal(t, "Cannot ron now", s.Error(ScopeRon))

	e = discardFrom(t, "234m456p678s345s5m", "6m", hand.Kamicha)
	s = e.CallRon()
	assert.Equal(t, "Cannot ron on that tile", s.Error(ScopeRon))
	assert.True(t, s.ReactionPhase)
	assert.False(t, s.RoundOver)
}

func TestRonWithoutYaku(t *testing.T) {
	t.Parallel()

	// the only yaku-less wait never opens a window on its own
	s := fixture(t, layout{concealed: "123m456p789s11z23s", wallTail: "1s", turn: hand.Toimen})
	e, _ := newTestEngine(t, s)
	s = e.OpponentDiscard()
	assert.False(t, s.ReactionPhase)
	assert.Equal(t, hand.Kamicha, s.Turn)
}

func TestTsumo(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", drawn: "2m"})
	e, _ := newTestEngine(t, s)

	s = e.CallTsumo()
	require.NotEmpty(t, s.Win)
	assert.Equal(t, hora.Tsumo, s.Win[0].Source)
	names := yakuNames(s.Win[0])
	assert.Contains(t, names, "menzen-tsumo")
	assert.Contains(t, names, "tanyao")
	assert.True(t, s.RoundOver)
	assert.Nil(t, s.Input.Drawn)
	assert.Len(t, s.Input.Concealed, 14)
	assert.True(t, s.Options.Tsumo)
	assert.NoError(t, s.Verify())
}

func TestTsumoRejections(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", drawn: "9p"})
	e, _ := newTestEngine(t, s)
	s = e.CallTsumo()
	assert.Equal(t, "Cannot tsumo with that tile", s.Error(ScopeTsumo))
	assert.False(t, s.RoundOver)
	assert.False(t, s.Options.Tsumo)

	s = fixture(t, layout{concealed: "234m456p678s345s5m"})
	e, _ = newTestEngine(t, s)
	assert.Equal(t, "No tile to tsumo", e.CallTsumo().Error(ScopeTsumo))

	s = fixture(t, layout{concealed: "234m456p678s345s5m", turn: hand.Toimen})
	e, _ = newTestEngine(t, s)
	assert.Equal(t, "Cannot tsumo, not your turn", e.CallTsumo().Error(ScopeTsumo))
}

func TestRiichi(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "123m456p789s11z23s", drawn: "9p"})
	e, _ := newTestEngine(t, s)

	s = e.CallRiichi()
	require.NotNil(t, s.Selection)
	assert.Equal(t, SelectRiichi, s.Selection.Kind)
	assert.Equal(t, "9p", tile.Format(s.Selection.Approved))
	assert.Equal(t, 1, s.Selection.Need())

	before := e.Snapshot()
	s = e.SelectTile(0)
	assert.Equal(t, "That discard does not keep you in tenpai", s.Error(ScopeRiichi))
	require.NotNil(t, s.Selection)
	assert.Equal(t, before.Input, s.Input)
	assert.Empty(t, s.Discards[hand.Self])
	assert.Equal(t, hand.RiichiNone, s.Options.Riichi)

	s = e.SelectTile(13)
	assert.Nil(t, s.Selection)
	assert.Equal(t, hand.RiichiDouble, s.Options.Riichi)
	assert.True(t, s.Phases.Ippatsu)
	assert.Equal(t, 0, s.RiichiDiscardIndex)
	assert.Equal(t, "9p", tile.Format(s.Discards[hand.Self]))
	assert.Equal(t, hand.Shimocha, s.Turn)
	assert.Empty(t, s.Error(ScopeRiichi))
}

func TestRiichiAfterFirstDiscardIsSingle(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "123m456p789s11z23s", drawn: "9p", selfDiscards: "1p"})
	e, _ := newTestEngine(t, s)
	e.CallRiichi()
	s = e.Discard(13)
	assert.Equal(t, hand.RiichiSingle, s.Options.Riichi)
	assert.Equal(t, 1, s.RiichiDiscardIndex)
}

func TestRiichiRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		l    layout
		msg  string
	}{
		{"no drawn tile", layout{concealed: "123m456p789s11z23s"}, "Cannot call riichi now"},
		{"open hand", layout{
			concealed: "234m456p678s3s",
			drawn:     "3s",
			melds:     []hand.Meld{{Kind: hand.Pon, Tiles: tiles("777z"), Claimed: 1}},
		}, "Cannot call riichi now"},
		{"not tenpai", layout{concealed: "159m159p159s1234z", drawn: "5z"}, "No valid riichi discards"},
		{"not your turn", layout{concealed: "123m456p789s11z23s", drawn: "9p", turn: hand.Toimen}, "Cannot call riichi now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, _ := newTestEngine(t, fixture(t, tt.l))
			s := e.CallRiichi()
			assert.Equal(t, tt.msg, s.Error(ScopeRiichi))
			assert.Nil(t, s.Selection)
		})
	}
}

func TestRiichiNeedsFiveWallTiles(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "123m456p789s11z23s", drawn: "9p"})
	s.Discards[hand.Toimen] = append(s.Discards[hand.Toimen], s.Wall[4:]...)
	s.Wall = s.Wall[:4]
	e, _ := newTestEngine(t, s)
	assert.Equal(t, "Cannot call riichi now", e.CallRiichi().Error(ScopeRiichi))
}

func TestEscapeCancelsRiichi(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "123m456p789s11z23s", drawn: "9p"})
	e, _ := newTestEngine(t, s)
	e.CallRiichi()
	s = e.Escape()
	assert.Nil(t, s.Selection)
	assert.Equal(t, hand.RiichiNone, s.Options.Riichi)

	s = e.Discard(0)
	assert.Equal(t, "1m", tile.Format(s.Discards[hand.Self]))
}
