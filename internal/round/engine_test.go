package round

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/wall"
	"github.com/lox/mahjongdojo/tile"
)

func TestNewGameIsDeterministic(t *testing.T) {
	t.Parallel()

	a, _ := newTestEngine(t, nil)
	b, _ := newTestEngine(t, nil)
	sa := a.NewGame("seed-1")
	sb := b.NewGame("seed-1")

	assert.Equal(t, sa.Wall, sb.Wall)
	assert.Equal(t, sa.Input, sb.Input)
	assert.Equal(t, sa.Hands, sb.Hands)
	assert.Equal(t, sa.Turn, sb.Turn)
	assert.Equal(t, wall.SelfWind("seed-1"), sa.Table.Seat)
	assert.NotEqual(t, sa.Session, sb.Session)
	_, err := uuid.Parse(sa.Session)
	assert.NoError(t, err)

	require.Len(t, sa.Input.Concealed, 13)
	assert.Equal(t, tile.Sorted(sa.Input.Concealed), sa.Input.Concealed)
	assert.Empty(t, sa.Hands[hand.Self])
	assert.Equal(t, wall.TotalTiles, sa.Total())
	assert.True(t, sa.Phases.Tenhou)
}

func TestNewGameWithoutSeedUsesClock(t *testing.T) {
	t.Parallel()

	e, clock := newTestEngine(t, nil)
	s := e.NewGame("")
	assert.Equal(t, fmt.Sprintf("seed-%d", clock.Now().UnixMilli()), s.Seed)
}

func TestAutoplayConservesTiles(t *testing.T) {
	t.Parallel()

	for _, seed := range []string{"auto-1", "auto-2", "auto-3", "auto-4"} {
		e, _ := newTestEngine(t, nil)
		s := e.NewGame(seed)
		for step := 0; step < 1000 && !s.RoundOver && !s.GameOver; step++ {
			switch {
			case s.Turn == hand.Self && !s.ReactionPhase && s.Input.Drawn != nil:
				s = e.DiscardDrawn()
			case s.Turn == hand.Self && !s.ReactionPhase && s.MustDiscard:
				s = e.Discard(0)
			default:
				s = e.Next()
			}
			require.NoError(t, s.Verify(), "seed %s step %d", seed, step)
		}
		assert.True(t, s.RoundOver, "seed %s did not finish", seed)
		assert.Empty(t, s.Wall)
	}
}

func TestDrawClearsTemporaryFuriten(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", wallTail: "9p"})
	s.Furiten = Furiten{Temporary: true, Permanent: true}
	e, _ := newTestEngine(t, s)

	s = e.Draw()
	require.NotNil(t, s.Input.Drawn)
	assert.Equal(t, "9p", s.Input.Drawn.String())
	assert.False(t, s.Furiten.Temporary)
	assert.True(t, s.Furiten.Permanent)
}

func TestDrawRequiresOwnTurnAndEmptySlot(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", drawn: "9p"})
	e, _ := newTestEngine(t, s)
	assert.Equal(t, s.Wall, e.Draw().Wall)

	s = fixture(t, layout{concealed: "234m456p678s345s5m", turn: hand.Toimen})
	e, _ = newTestEngine(t, s)
	assert.Nil(t, e.Draw().Input.Drawn)
}

func TestOpponentDiscardWithoutReactionAdvances(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", wallTail: "9p", turn: hand.Toimen})
	e, _ := newTestEngine(t, s)

	s = e.OpponentDiscard()
	assert.False(t, s.ReactionPhase)
	assert.Nil(t, s.DiscardCheck)
	assert.Equal(t, hand.Kamicha, s.Turn)
	assert.Equal(t, "9p", tile.Format(s.Discards[hand.Toimen]))
}

func TestOpponentDiscardOpensReactionWindow(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s77z34s", wallTail: "7z", turn: hand.Toimen})
	e, _ := newTestEngine(t, s)

	s = e.OpponentDiscard()
	require.True(t, s.ReactionPhase)
	require.NotNil(t, s.DiscardCheck)
	assert.Equal(t, "7z", s.DiscardCheck.Tile.String())
	assert.Equal(t, hand.Toimen, s.DiscardCheck.From)
	assert.Equal(t, hand.Toimen, s.Turn)

	// Next in a reaction window passes
	s = e.Next()
	assert.False(t, s.ReactionPhase)
	assert.Equal(t, hand.Kamicha, s.Turn)
	assert.False(t, s.Furiten.Temporary)
}

func TestRiichiBlocksCallReactions(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s77z34s", wallTail: "7z", turn: hand.Toimen})
	s.Options.Riichi = hand.RiichiSingle
	e, _ := newTestEngine(t, s)

	s = e.OpponentDiscard()
	assert.False(t, s.ReactionPhase)
	assert.Equal(t, hand.Kamicha, s.Turn)
}

func TestPassOnWinningTileSetsTemporaryFuriten(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", wallTail: "9p5m", turn: hand.Kamicha})
	e, _ := newTestEngine(t, s)

	s = e.OpponentDiscard()
	require.True(t, s.ReactionPhase)

	s = e.Pass()
	assert.True(t, s.Furiten.Temporary)
	assert.False(t, s.Furiten.Permanent)
	assert.Equal(t, "Temporary furiten for this turn", s.Error(ScopeRon))
	assert.Equal(t, hand.Self, s.Turn)

	s = e.Draw()
	assert.False(t, s.Furiten.Temporary)
}

func TestPassUnderRiichiIsPermanent(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", wallTail: "5m", turn: hand.Toimen})
	s.Options.Riichi = hand.RiichiSingle
	e, _ := newTestEngine(t, s)

	s = e.OpponentDiscard()
	require.True(t, s.ReactionPhase)
	s = e.Pass()
	assert.True(t, s.Furiten.Permanent)
	assert.False(t, s.Furiten.Temporary)
	assert.Equal(t, "Riichi furiten for the rest of the round", s.Error(ScopeRon))

	s = e.Next()
	assert.True(t, s.Furiten.Permanent)

	for i := 0; s.Turn != hand.Self || s.ReactionPhase; i++ {
		require.Less(t, i, 8, "never reached own turn")
		s = e.Next()
	}
	require.Nil(t, s.Input.Drawn)
	s = e.Draw()
	require.NotNil(t, s.Input.Drawn)
	assert.True(t, s.Furiten.Permanent)
	assert.False(t, s.Furiten.Temporary)
}

func TestDiscardRules(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m"})
	e, _ := newTestEngine(t, s)
	s = e.Discard(0)
	assert.Equal(t, "Draw a tile first", s.Error(ScopeDiscard))
	assert.Empty(t, s.Discards[hand.Self])

	s = fixture(t, layout{concealed: "234m456p678s345s5m", drawn: "9p"})
	s.Options.Riichi = hand.RiichiSingle
	e, _ = newTestEngine(t, s)
	s = e.Discard(0)
	assert.Equal(t, "Can't modify riichi hand", s.Error(ScopeRiichi))
	assert.Empty(t, s.Discards[hand.Self])

	s = e.Discard(13)
	assert.Equal(t, "9p", tile.Format(s.Discards[hand.Self]))
	assert.Equal(t, hand.Shimocha, s.Turn)
	assert.Nil(t, s.Input.Drawn)
}

func TestDiscardEndsFirstTurnAndIppatsu(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", drawn: "9p"})
	s.Phases = Phases{Tenhou: true, Ippatsu: true, Rinshan: true}
	e, _ := newTestEngine(t, s)

	s = e.Discard(0)
	assert.Equal(t, Phases{}, s.Phases)
	assert.Equal(t, "2m", tile.Format(s.Discards[hand.Self]))
	assert.Equal(t, "345m4569p345678s", tile.Format(s.Input.Concealed))
}

func TestCheckFuritenOnOwnDiscards(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", selfDiscards: "2m", wallTail: "5m", turn: hand.Kamicha})
	e, _ := newTestEngine(t, s)

	s = e.CheckFuriten()
	require.True(t, s.Furiten.Self)

	s = e.OpponentDiscard()
	require.True(t, s.ReactionPhase, "chi keeps the window open")
	s = e.CallRon()
	assert.Equal(t, "Furiten on your own discards", s.Error(ScopeRon))
	assert.False(t, s.RoundOver)
}

func TestExhaustiveDrawAndNextRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		concealed string
		riichi    bool
		tenpai    bool
		cont      int
		deposit   int
	}{
		{"tenpai", "234m456p678s345s5m", false, true, 0, 0},
		{"noten", "159m159p159s1234z", false, false, 1, 0},
		{"riichi tenpai", "234m456p678s345s5m", true, true, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := fixture(t, layout{concealed: tt.concealed, emptyWall: true, turn: hand.Shimocha})
			if tt.riichi {
				s.Options.Riichi = hand.RiichiSingle
			}
			e, _ := newTestEngine(t, s)

			s = e.Next()
			require.True(t, s.RoundOver)
			assert.Equal(t, tt.tenpai, s.Table.Tenpai)
			assert.Equal(t, !tt.tenpai, s.Table.Honba)

			s = e.Next()
			assert.False(t, s.RoundOver)
			assert.Equal(t, 2, s.Table.RoundCount)
			assert.Equal(t, hand.WindNorth, s.Table.Seat)
			assert.Equal(t, tt.cont, s.Table.Continue)
			assert.Equal(t, tt.deposit, s.Table.Deposit)
			assert.Equal(t, "test", s.Session)
			assert.Equal(t, hand.RiichiNone, s.Options.Riichi)
			assert.Equal(t, wall.TotalTiles, s.Total())
		})
	}
}

func TestFinalRoundEndsGame(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "159m159p159s1234z", emptyWall: true, turn: hand.Shimocha})
	s.Table.RoundCount = s.Rule.FinalRound
	e, _ := newTestEngine(t, s)

	s = e.RoundOver()
	assert.True(t, s.GameOver)
	assert.False(t, s.RoundOver)

	s = e.Next()
	assert.False(t, s.GameOver)
	assert.Equal(t, 1, s.Table.RoundCount)
	assert.NotEqual(t, "test", s.Session)
}

func TestErrorsExpire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := fixture(t, layout{concealed: "234m456p678s345s5m"})
	e, clock := newTestEngine(t, s, WithErrorTTL(3*time.Second))

	s = e.CallRiichi()
	assert.Equal(t, "Cannot call riichi now", s.Error(ScopeRiichi))

	clock.Advance(2 * time.Second).MustWait(ctx)
	assert.NotEmpty(t, e.Pass().Error(ScopeRiichi))

	clock.Advance(time.Second).MustWait(ctx)
	assert.Empty(t, e.Pass().Error(ScopeRiichi))

	s = e.CallRiichi()
	require.NotEmpty(t, s.Error(ScopeRiichi))
	assert.Nil(t, e.ClearErrors().Errors)
}

func TestSnapshotsAreNotModified(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "234m456p678s345s5m", wallTail: "9p"})
	e, _ := newTestEngine(t, s)
	before := s.Clone()

	e.Draw()
	e.Discard(0)
	assert.Equal(t, before, s)
}

func TestLogShanten(t *testing.T) {
	t.Parallel()

	s := fixture(t, layout{concealed: "159m159p159s1234z"})
	e, _ := newTestEngine(t, s)
	e.LogShanten()
	s = e.LogShanten()
	assert.Equal(t, []int{3, 3}, s.ShantenHistory)
	assert.InDelta(t, 3.0, s.AverageShanten, 1e-9)

	s = fixture(t, layout{concealed: "234m456p678s345s5m"})
	e, _ = newTestEngine(t, s)
	s = e.LogShanten()
	assert.Equal(t, []int{0}, s.ShantenHistory)
}

func TestCustomNewGame(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, nil, WithRule(hand.DefaultRule()))
	want := tiles("123m456p789s1122z")
	s, err := e.CustomNewGame(want)
	require.NoError(t, err)
	assert.Equal(t, tile.Sorted(want), s.Input.Concealed)
	assert.NoError(t, s.Verify())

	_, err = e.CustomNewGame(tiles("11111m23456789p"))
	assert.Error(t, err)
	_, err = e.CustomNewGame(tiles("123m"))
	assert.Error(t, err)
}

func TestPersistsLatestSnapshot(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	e, _ := newTestEngine(t, nil, WithStore(store))
	e.NewGame("seed-2")
	s := e.Next()
	e.Flush()

	saved := store.records()
	require.NotEmpty(t, saved)
	require.LessOrEqual(t, len(saved), 2)
	last := saved[len(saved)-1]
	assert.Equal(t, Revision, last.Revision)
	assert.Same(t, s, last.Store)
}

func TestSlowStoreDoesNotBlockTransitions(t *testing.T) {
	t.Parallel()

	store := &blockingStore{entered: make(chan struct{}, 1), release: make(chan struct{})}
	e, _ := newTestEngine(t, nil, WithStore(store))
	t.Cleanup(func() {
		select {
		case <-store.release:
		default:
			close(store.release)
		}
		e.Close()
	})

	first := e.NewGame("slow-1")
	<-store.entered

	done := make(chan *Snapshot)
	go func() {
		e.Next()
		e.Next()
		done <- e.Next()
	}()
	var latest *Snapshot
	select {
	case latest = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("transitions waited for the store")
	}

	close(store.release)
	e.Flush()
	saved := store.records()
	require.Len(t, saved, 2, "pending saves collapse into the newest")
	assert.Same(t, first, saved[0].Store)
	assert.Same(t, latest, saved[1].Store)
}

func TestCloseWritesPendingSnapshot(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	e, _ := newTestEngine(t, nil, WithStore(store))
	s := e.NewGame("close-1")
	e.Close()

	saved := store.records()
	require.NotEmpty(t, saved)
	assert.Same(t, s, saved[len(saved)-1].Store)

	require.NotPanics(t, func() { e.NewGame("close-2") })
	assert.Len(t, store.records(), len(saved))
	e.Close()
}

func TestSaveFailureKeepsTransition(t *testing.T) {
	t.Parallel()

	store := &memStore{saveErr: errors.New("disk full")}
	e, _ := newTestEngine(t, nil, WithStore(store))
	s := e.NewGame("seed-3")
	e.Flush()
	assert.True(t, s.Dealt())
	assert.Same(t, s, e.Snapshot())
	assert.Len(t, store.records(), 1)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	saved := fixture(t, layout{concealed: "234m456p678s345s5m"})
	store := &memStore{loadRec: Record{Revision: Revision, Store: saved}}
	e, _ := newTestEngine(t, nil, WithStore(store))
	assert.Same(t, saved, e.Restore(context.Background()))

	for _, tt := range []struct {
		name string
		rec  Record
		err  error
	}{
		{"missing", Record{}, ErrNotFound},
		{"failing", Record{}, errors.New("connection refused")},
		{"old revision", Record{Revision: 0, Store: saved}, nil},
	} {
		store := &memStore{loadRec: tt.rec, loadErr: tt.err}
		e, _ := newTestEngine(t, nil, WithStore(store))
		s := e.Restore(context.Background())
		assert.False(t, s.Dealt(), tt.name)
	}
}

func reds(s *Snapshot) int {
	n := 0
	for _, x := range s.AllTiles() {
		if x.Red {
			n++
		}
	}
	return n
}

func TestSetRuleAppliesToNextDeal(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, nil)
	s := e.NewGame("rule-1")
	assert.Zero(t, reds(s))

	rule := testRule()
	rule.Red = hand.RedFives{Man: 1, Pin: 2, Sou: 1}
	s = e.SetRule(rule)
	assert.Equal(t, "rule-1", s.Seed)
	assert.Zero(t, reds(s))
	assert.Equal(t, rule, s.Rule)

	s = e.NewGame("rule-1")
	assert.Equal(t, 4, reds(s))
	assert.NoError(t, s.Verify())
}

func TestLoweringRedFivesMidRound(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, nil, WithRule(hand.DefaultRule()))
	s := e.NewGame("red-1")
	require.Equal(t, 3, reds(s))
	assert.Equal(t, hand.DefaultRule().Red, s.DealtRed)

	var lowered *Snapshot
	require.NotPanics(t, func() { lowered = e.SetRule(testRule()) })
	assert.Equal(t, hand.RedFives{}, lowered.Rule.Red)
	assert.Equal(t, hand.DefaultRule().Red, lowered.DealtRed)
	assert.Equal(t, lowered.DealtRed, lowered.Query().Rule.Red)
	assert.Equal(t, 3, reds(lowered))
	assert.NoError(t, lowered.Verify())

	require.NotPanics(t, func() {
		for range 12 {
			e.Next()
		}
	})

	s = e.NewGame("red-1")
	assert.Zero(t, reds(s))
	assert.Equal(t, hand.RedFives{}, s.DealtRed)
}
