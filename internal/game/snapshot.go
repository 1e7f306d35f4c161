package game

import "github.com/lox/minicasino/internal/cards"

// PlayerSeat names the player's hand in events and snapshots
const PlayerSeat = "Player"

// CardView is one card as a presentation layer may show it. Face-down cards
// carry the zero Card so hidden information never leaves the table.
type CardView struct {
	Card     cards.Card
	FaceDown bool
}

// HandView is a participant's hand as seen from the player's seat
type HandView struct {
	Name        string
	Cards       []CardView
	Score       int
	ScoreHidden bool
}

// IDs returns the card identifiers, "BACK" for face-down cards
func (h HandView) IDs() []string {
	out := make([]string, len(h.Cards))
	for i, cv := range h.Cards {
		if cv.FaceDown {
			out[i] = "BACK"
			continue
		}
		out[i] = cv.Card.ID()
	}
	return out
}

// NewHandView builds a view of hand with the card at hidden face down.
// Pass a negative index when every card is face up.
func NewHandView(name string, hand cards.Hand, score int, hidden int) HandView {
	hv := HandView{Name: name, Score: score, Cards: make([]CardView, len(hand))}
	for i, c := range hand {
		if i == hidden {
			hv.Cards[i] = CardView{FaceDown: true}
			hv.ScoreHidden = true
			continue
		}
		hv.Cards[i] = CardView{Card: c}
	}
	if hv.ScoreHidden {
		hv.Score = 0
	}
	return hv
}

// Snapshot is the read-only state handed to presentation layers after every
// transition. It shares no storage with the table.
type Snapshot struct {
	Game    Kind
	RoundID string
	Phase   Phase
	Player  HandView
	Dealer  HandView // Dealer for Blackjack, Banker for Baccarat
	Message string
	Balance int64
	Wager   int64  // Stake of the current or last round, zero when none
	Bet     string // Bet side, empty for Blackjack
	Outcome string // Empty until settled
	Payout  int64  // Amount credited at settlement
}

// CanAct reports whether the player has a decision to make
func (s Snapshot) CanAct() bool {
	return s.Phase == PlayerTurn
}
