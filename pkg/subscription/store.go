package subscription

import (
	"errors"

	"github.com/ectf-pp/decoder/pkg/flash"
)

// ErrSlotEmpty is returned by Get/GetByChannel when the addressed slot has
// never been committed (its magic word doesn't match CommitMagic). An empty
// slot is the steady state for every channel a decoder hasn't yet been
// subscribed to.
var ErrSlotEmpty = errors.New("subscription: slot not committed")

// ErrChannelNotFound is returned by GetByChannel when no committed slot
// matches the requested channel.
var ErrChannelNotFound = errors.New("subscription: channel not subscribed")

// ErrTableFull is returned when a write can neither replace an existing
// slot for the channel nor find an empty slot to occupy.
var ErrTableFull = errors.New("subscription: no free slot")

// ErrInvalidSlotIndex is returned for an out-of-range slot index.
var ErrInvalidSlotIndex = errors.New("subscription: slot index out of range")

// Store is the fixed-arity subscription table: MaxChannelCount slots, one
// flash page apiece, indexed 0..MaxChannelCount-1. Slot 0 holds the
// build-time-provisioned default channel and is never written by Put at
// runtime; callers enforce that by never routing channel-0 updates here
// (spec §4.5 step "reject channel 0").
type Store struct {
	dev      flash.Device
	baseAddr uint32
}

// NewStore wraps dev, whose pages from baseAddr through
// baseAddr+MaxChannelCount*PageSize hold the subscription table.
func NewStore(dev flash.Device, baseAddr uint32) *Store {
	return &Store{dev: dev, baseAddr: baseAddr}
}

func (s *Store) slotAddr(i int) uint32 {
	return s.baseAddr + uint32(i)*PageSize
}

// Get reads and decodes the slot at index i. It returns ErrSlotEmpty if the
// slot has never been committed.
func (s *Store) Get(i int) (*Slot, error) {
	if i < 0 || i >= MaxChannelCount {
		return nil, ErrInvalidSlotIndex
	}
	page, err := s.dev.ReadPage(s.slotAddr(i))
	if err != nil {
		return nil, err
	}
	slot, err := Decode(page[:EncodedSize])
	if err != nil {
		return nil, err
	}
	if !slot.Committed() {
		return nil, ErrSlotEmpty
	}
	return slot, nil
}

// GetByChannel scans every committed slot for one matching channel.
func (s *Store) GetByChannel(channel uint32) (int, *Slot, error) {
	for i := 0; i < MaxChannelCount; i++ {
		slot, err := s.Get(i)
		if errors.Is(err, ErrSlotEmpty) {
			continue
		}
		if err != nil {
			return -1, nil, err
		}
		if slot.Channel == channel {
			return i, slot, nil
		}
	}
	return -1, nil, ErrChannelNotFound
}

// Put commits slot at index i, stamping its magic word and zero-padding the
// encoding out to a full flash page.
func (s *Store) Put(i int, slot *Slot) error {
	if i < 0 || i >= MaxChannelCount {
		return ErrInvalidSlotIndex
	}
	slot.Magic = CommitMagic
	page := make([]byte, s.dev.PageSize())
	copy(page, slot.Encode())
	return s.dev.WritePage(s.slotAddr(i), page)
}

// PutForChannel implements the two-pass placement rule from spec §4.5: a
// subscription for a channel already present replaces that slot in place;
// otherwise it's placed into the first never-committed slot at index 1 or
// higher (index 0 is reserved for the build-time default channel); if
// neither applies the table is full and the request is a benign rejection,
// not an attack.
func (s *Store) PutForChannel(slot *Slot) error {
	if i, _, err := s.GetByChannel(slot.Channel); err == nil {
		return s.Put(i, slot)
	} else if !errors.Is(err, ErrChannelNotFound) {
		return err
	}

	for i := 1; i < MaxChannelCount; i++ {
		if _, err := s.Get(i); errors.Is(err, ErrSlotEmpty) {
			return s.Put(i, slot)
		}
	}
	return ErrTableFull
}

// ChannelListEntry is one record of the list-subscriptions response body
// (spec §4.9 LIST command).
type ChannelListEntry struct {
	Channel uint32
	Start   uint64
	End     uint64
}

// List returns every committed subscription other than the build-time
// default channel 0, in slot order.
func (s *Store) List() ([]ChannelListEntry, error) {
	var entries []ChannelListEntry
	for i := 0; i < MaxChannelCount; i++ {
		slot, err := s.Get(i)
		if errors.Is(err, ErrSlotEmpty) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if slot.Channel == 0 {
			continue
		}
		entries = append(entries, ChannelListEntry{
			Channel: slot.Channel,
			Start:   slot.Start,
			End:     slot.End,
		})
	}
	return entries, nil
}
