package ws

import (
	"mini-mc-server/internal/item"
)

// Frame types sent by the server.
const (
	TypeContents = "contents"
	TypeSlot     = "slot"
	TypeSlots    = "slots"
	TypeProperty = "property"
	TypeChat     = "chat"
	TypeError    = "error"
	TypeComplete = "complete"
)

// Frame types sent by the client.
const (
	TypeClick     = "click"
	TypeQuickMove = "quickMove"
	TypeTake      = "take"
	TypeCommand   = "command"
	TypeTab       = "tab"
)

type Stack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
	Meta  int    `json:"meta,omitempty"`
}

type SlotStack struct {
	Slot  int    `json:"slot"`
	Stack *Stack `json:"stack"`
}

// ServerMessage is every frame the server writes. Only the fields of the
// frame's type are set.
type ServerMessage struct {
	Type        string      `json:"type"`
	Window      string      `json:"window,omitempty"`
	Title       string      `json:"title,omitempty"`
	Items       []*Stack    `json:"items,omitempty"`
	Slot        *int        `json:"slot,omitempty"`
	Stack       *Stack      `json:"stack,omitempty"`
	Slots       []SlotStack `json:"slots,omitempty"`
	Property    *int        `json:"property,omitempty"`
	Value       *int        `json:"value,omitempty"`
	Text        string      `json:"text,omitempty"`
	Plain       string      `json:"plain,omitempty"`
	Error       string      `json:"error,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

type ClientMessage struct {
	Type   string `json:"type"`
	Slot   int    `json:"slot"`
	Button int    `json:"button"`
	Double bool   `json:"double,omitempty"`
	Amount int    `json:"amount,omitempty"`
	Line   string `json:"line,omitempty"`

	// Point, when set, selects the slot by GUI position instead of Slot.
	Point *[2]float32 `json:"point,omitempty"`
}

func toStack(s *item.ItemStack) *Stack {
	if s.IsEmpty() {
		return nil
	}
	return &Stack{Item: s.Type.String(), Count: s.Count, Meta: s.Meta}
}

func intPtr(v int) *int { return &v }
