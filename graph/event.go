package graph

// EventKind identifies a host event delivered to node mailboxes.
type EventKind int

const (
	EventResize EventKind = iota
	EventReload
	EventCapture
)

// Event is a one-way message from the frame driver into a node. Nodes drain
// their mailbox at the start of Render; no callback runs at the poll site.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

// PointerKind identifies a pointer event for the info node.
type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerPress
	PointerRelease
)

// PointerEvent carries pointer coordinates in framebuffer pixels with the
// window's native top-left origin; the info node flips Y.
type PointerEvent struct {
	Kind PointerKind
	X, Y float32
}
