// Package cartslot provides the durable key-value slot a cart engine
// persists into. One slot holds one session's serialized line items.
package cartslot

import "context"

// Slot is a single named durable slot. Load returns the stored payload
// and whether the slot held anything at all; an absent slot is not an
// error.
type Slot interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}
