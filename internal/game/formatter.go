package game

import (
	"fmt"
	"strings"

	"github.com/lox/minicasino/internal/cards"
	"github.com/muesli/termenv"
)

// FormattingOptions controls how events are rendered as text
type FormattingOptions struct {
	// Profile selects the colour capability of the output. termenv.Ascii
	// produces plain text.
	Profile termenv.Profile
	// ShowBalance appends the balance to settlement lines
	ShowBalance bool
}

// EventFormatter renders events as log lines for text front ends
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format returns the log line for an event, or "" for events that have no
// textual representation
func (ef *EventFormatter) Format(event Event) string {
	switch ev := event.(type) {
	case BetPlacedEvent:
		if ev.Side != "" {
			return fmt.Sprintf("Bet $%d on %s", ev.Amount, strings.ToUpper(ev.Side))
		}
		return fmt.Sprintf("Bet $%d", ev.Amount)
	case RoundStartEvent:
		return ef.bold(fmt.Sprintf("*** %s round %s ***", strings.ToUpper(string(ev.State().Game)), shortID(ev.RoundID)))
	case CardDealtEvent:
		if ev.FaceDown {
			return fmt.Sprintf("%s: [hole card]", ev.Seat)
		}
		return fmt.Sprintf("%s: %s", ev.Seat, ef.FormatCard(ev.Card))
	case HoleRevealedEvent:
		return fmt.Sprintf("Dealer reveals %s", ef.FormatCard(ev.Card))
	case PhaseChangeEvent:
		return ""
	case RoundSettledEvent:
		line := ev.State().Message
		if ef.opts.ShowBalance {
			line += fmt.Sprintf(" (balance $%d)", ev.Result.Balance)
		}
		return ef.bold(line)
	default:
		return ""
	}
}

// FormatHand renders a hand view as "[A♠ 10♥] (21)"
func (ef *EventFormatter) FormatHand(h HandView) string {
	parts := make([]string, len(h.Cards))
	for i, cv := range h.Cards {
		if cv.FaceDown {
			parts[i] = "??"
			continue
		}
		parts[i] = ef.FormatCard(cv.Card)
	}
	out := "[" + strings.Join(parts, " ") + "]"
	if !h.ScoreHidden && len(h.Cards) > 0 {
		out += fmt.Sprintf(" (%d)", h.Score)
	}
	return out
}

// FormatCard renders a card with its suit colour
func (ef *EventFormatter) FormatCard(c cards.Card) string {
	s := ef.opts.Profile.String(c.String())
	if c.IsRed() {
		s = s.Foreground(ef.opts.Profile.Color("#FF6B6B"))
	}
	return s.String()
}

func (ef *EventFormatter) bold(s string) string {
	return ef.opts.Profile.String(s).Bold().String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
