package cart

import (
	"fmt"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Op is a cart mutation kind.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpClear   Op = "clear"
	OpConfirm Op = "confirm"
)

// Mutation is a requested change to a cart. Handlers return mutations instead of
// touching the cart so that nothing is committed if they fail.
type Mutation struct {
	Op       Op     `json:"op"`
	ItemKey  string `json:"item_key,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

func Add(itemKey string, quantity int) Mutation {
	return Mutation{Op: OpAdd, ItemKey: domain.NormalizeKey(itemKey), Quantity: quantity}
}

func Remove(itemKey string) Mutation {
	return Mutation{Op: OpRemove, ItemKey: domain.NormalizeKey(itemKey)}
}

func Clear() Mutation {
	return Mutation{Op: OpClear}
}

func Confirm() Mutation {
	return Mutation{Op: OpConfirm}
}

func (m Mutation) String() string {
	switch m.Op {
	case OpAdd:
		return fmt.Sprintf("add %dx %s", m.Quantity, m.ItemKey)
	case OpRemove:
		return "remove " + m.ItemKey
	}
	return string(m.Op)
}

// Outcome reports what one applied mutation did.
type Outcome struct {
	Mutation Mutation

	// Item and Line are set for OpAdd: the catalog entry and the resulting cart line.
	Item domain.CatalogItem
	Line domain.CartLine

	// Removed is set for OpRemove when the line existed.
	Removed bool

	// Totals is set for OpConfirm: the totals of the order that was placed.
	Totals domain.Totals
	// Lines is set for OpConfirm: the lines that were placed.
	Lines []domain.CartLine
}
