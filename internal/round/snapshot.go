// Package round is the turn and call state machine for one observed seat and
// three scripted opponents. Every intent clones the current snapshot, applies
// the transition to the clone and publishes it; published snapshots are never
// modified again.
package round

import (
	"maps"
	"slices"
	"time"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/tile"
)

// Scope names the control an error message belongs to
type Scope string

const (
	ScopeChi     Scope = "chi"
	ScopePon     Scope = "pon"
	ScopeKan     Scope = "kan"
	ScopeRiichi  Scope = "riichi"
	ScopeRon     Scope = "ron"
	ScopeTsumo   Scope = "tsumo"
	ScopeDiscard Scope = "discard"
)

// Notice is a user-facing message that disappears after Expires
type Notice struct {
	Message string    `json:"message"`
	Expires time.Time `json:"expires"`
}

// DiscardCheck is an opponent discard waiting for the observed seat to react
type DiscardCheck struct {
	Tile tile.Tile `json:"tile"`
	From hand.Seat `json:"from"`
}

// SelectionKind is the sub-state a tile pick feeds into
type SelectionKind string

const (
	SelectChi    SelectionKind = "chi"
	SelectPon    SelectionKind = "pon"
	SelectKan    SelectionKind = "kan"
	SelectRiichi SelectionKind = "riichi"
)

// Selection is an in-progress choice of tiles from the concealed hand.
// Tile is the claimed discard or the drawn fourth copy; it is nil for a kan
// made entirely from concealed tiles. Approved lists the riichi discards that
// keep the hand in tenpai.
type Selection struct {
	Kind           SelectionKind `json:"kind"`
	Tile           *tile.Tile    `json:"tile,omitempty"`
	Open           bool          `json:"open,omitempty"`
	HighlightDrawn bool          `json:"highlightDrawn,omitempty"`
	Sequences      [][3]uint8    `json:"sequences,omitempty"`
	Picked         []int         `json:"picked,omitempty"`
	Approved       []tile.Tile   `json:"approved,omitempty"`
}

// Need is the number of concealed tiles the selection completes with
func (s *Selection) Need() int {
	switch {
	case s.Kind == SelectKan && s.Tile == nil:
		return 4
	case s.Kind == SelectKan:
		return 3
	case s.Kind == SelectRiichi:
		return 1
	}
	return 2
}

func (s *Selection) clone() *Selection {
	if s == nil {
		return nil
	}
	out := *s
	if s.Tile != nil {
		t := *s.Tile
		out.Tile = &t
	}
	out.Sequences = slices.Clone(s.Sequences)
	out.Picked = slices.Clone(s.Picked)
	out.Approved = slices.Clone(s.Approved)
	return &out
}

// Furiten is the set of penalties that block winning on a discard
type Furiten struct {
	Self      bool `json:"self"`      // a current winning tile is in the own discards
	Temporary bool `json:"temporary"` // passed a winning tile since the last own draw
	Permanent bool `json:"permanent"` // passed a winning tile under riichi
}

// Any reports whether ron is blocked
func (f Furiten) Any() bool {
	return f.Self || f.Temporary || f.Permanent
}

// Phases are the windows that turn into win flags when the hand completes
type Phases struct {
	Tenhou  bool `json:"tenhou"`
	Ippatsu bool `json:"ippatsu"`
	Rinshan bool `json:"rinshan"`
}

// Snapshot is the complete state of a round
type Snapshot struct {
	Session string       `json:"session"`
	Rule    hand.Rule    `json:"rule"`
	Table   hand.Table   `json:"table"`
	Input   hand.Input   `json:"input"`
	Options hand.Options `json:"options"`

	// DealtRed is the red-five allowance the current round was dealt with.
	// A rule change only takes effect at the next deal.
	DealtRed hand.RedFives `json:"dealtRed"`

	Seed        string      `json:"seed"`
	Dice        [2]int      `json:"dice"`
	LiveWallCut int         `json:"liveWallCut"`
	Wall        []tile.Tile `json:"wall"`
	KanDraws    []tile.Tile `json:"kanDraws"`
	DoraPending []tile.Tile `json:"doraPending"`
	UraPending  []tile.Tile `json:"uraPending"`
	Haitei      []tile.Tile `json:"haitei"`

	// Hands holds the opponents' concealed tiles by seat; Hands[hand.Self]
	// stays empty because the observed hand lives in Input.
	Hands    [4][]tile.Tile `json:"hands"`
	Discards [4][]tile.Tile `json:"discards"`

	Turn          hand.Seat     `json:"turn"`
	ReactionPhase bool          `json:"reactionPhase"`
	DiscardCheck  *DiscardCheck `json:"discardCheck,omitempty"`
	Selection     *Selection    `json:"selection,omitempty"`
	MustDiscard   bool          `json:"mustDiscard"`

	Furiten            Furiten `json:"furiten"`
	Phases             Phases  `json:"phases"`
	RiichiDiscardIndex int     `json:"riichiDiscardIndex"`

	Win       []hora.Line `json:"win,omitempty"`
	RoundOver bool        `json:"roundOver"`
	GameOver  bool        `json:"gameOver"`

	Errors map[Scope]Notice `json:"errors,omitempty"`

	ShantenHistory []int   `json:"shantenHistory,omitempty"`
	AverageShanten float64 `json:"averageShanten"`
}

// Empty is the snapshot before the first deal
func Empty(rule hand.Rule) *Snapshot {
	return &Snapshot{
		Rule:               rule,
		Table:              hand.DefaultTable(),
		Options:            hand.DefaultOptions(),
		RiichiDiscardIndex: -1,
	}
}

// Dealt reports whether a round has been set up
func (s *Snapshot) Dealt() bool {
	return s.Seed != ""
}

// Clone returns a deep copy
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Input = s.Input.Clone()
	out.Wall = slices.Clone(s.Wall)
	out.KanDraws = slices.Clone(s.KanDraws)
	out.DoraPending = slices.Clone(s.DoraPending)
	out.UraPending = slices.Clone(s.UraPending)
	out.Haitei = slices.Clone(s.Haitei)
	for i := range s.Hands {
		out.Hands[i] = slices.Clone(s.Hands[i])
		out.Discards[i] = slices.Clone(s.Discards[i])
	}
	if s.DiscardCheck != nil {
		dc := *s.DiscardCheck
		out.DiscardCheck = &dc
	}
	out.Selection = s.Selection.clone()
	if s.Win != nil {
		out.Win = make([]hora.Line, len(s.Win))
		for i, l := range s.Win {
			l.Yaku = slices.Clone(l.Yaku)
			out.Win[i] = l
		}
	}
	out.Errors = maps.Clone(s.Errors)
	out.ShantenHistory = slices.Clone(s.ShantenHistory)
	return &out
}

// Error returns the message for a scope, or "" when there is none
func (s *Snapshot) Error(scope Scope) string {
	return s.Errors[scope].Message
}

// Total counts every physical tile in the round. Revealed dora and ura
// indicators are views of the pending queues and are not counted again.
func (s *Snapshot) Total() int {
	n := len(s.Wall) + len(s.KanDraws) + len(s.DoraPending) + len(s.UraPending) + len(s.Haitei)
	for i := range s.Hands {
		n += len(s.Hands[i]) + len(s.Discards[i])
	}
	n += len(s.Input.Combined()) + len(s.Input.MeldTiles())
	return n
}

// AllTiles lists every physical tile in the round
func (s *Snapshot) AllTiles() []tile.Tile {
	out := make([]tile.Tile, 0, s.Total())
	out = append(out, s.Wall...)
	out = append(out, s.KanDraws...)
	out = append(out, s.DoraPending...)
	out = append(out, s.UraPending...)
	out = append(out, s.Haitei...)
	for i := range s.Hands {
		out = append(out, s.Hands[i]...)
		out = append(out, s.Discards[i]...)
	}
	out = append(out, s.Input.Combined()...)
	return append(out, s.Input.MeldTiles()...)
}

// AllDiscards flattens every seat's discard pile
func (s *Snapshot) AllDiscards() []tile.Tile {
	var out []tile.Tile
	for _, d := range s.Discards {
		out = append(out, d...)
	}
	return out
}

// Query builds the evaluator input for the observed hand as it stands
func (s *Snapshot) Query() outcome.Query {
	rule := s.Rule
	rule.Red = s.DealtRed
	return outcome.Query{
		Table:    s.Table,
		Input:    s.Input.Clone(),
		Options:  s.Options,
		Rule:     rule,
		Discards: s.AllDiscards(),
	}
}

// FullHand is the concealed hand followed by the drawn tile, the order that
// discard indexes refer to
func (s *Snapshot) FullHand() []tile.Tile {
	return s.Input.Combined()
}
