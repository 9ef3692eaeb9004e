package upi

// MaxProcessors is the size of the UPI index space (spec glossary: "UPI:
// 0..14"); index 15 is reserved/unused in the current allocation scheme
// (spec section 3, four disjoint ranges summing to 0..14).
const MaxProcessors = 16

// SlotWords is the number of words per (source, dest) mail slot: the
// absolute address of the operation-specific buffer (spec section 4.7,
// "currently 2").
const SlotWords = 2

// SlotOffset returns the word offset, within the hidden MSP's mail-slot
// segment, of the slot for (source, dest). Slots are installed for every
// (source, dest) pair, per spec section 4.7's resolution of the open
// question about partial vs. full pair coverage: the live behavior (all
// pairs) is canonical, not the stale comment.
func SlotOffset(source, dest int) int {
	return (source*MaxProcessors + dest) * SlotWords
}

// MailSlotSegmentWords is the total size, in words, of the hidden MSP
// segment holding every (source, dest) mail slot.
const MailSlotSegmentWords = MaxProcessors * MaxProcessors * SlotWords
