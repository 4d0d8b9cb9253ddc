package armode

import "sync"

// Blocks records launch methods that failed during the current session
// so the selector stops offering them. A mode stays blocked until Reset
// is called; there is no timeout. The flags are intentionally shared
// between viewers on the same page through Shared(): once Scene Viewer
// bounced back for one model it will bounce for all of them.
type Blocks struct {
	mu      sync.Mutex
	blocked map[Mode]bool
}

// NewBlocks returns an empty, independent block set. Tests and embedders
// that want isolation from the process wide set use this.
func NewBlocks() *Blocks {
	return &Blocks{blocked: make(map[Mode]bool)}
}

// Block marks a mode as failed for the rest of the session.
func (b *Blocks) Block(m Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked[m] = true
}

// Blocked reports whether a mode was marked as failed.
func (b *Blocks) Blocked(m Mode) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blocked[m]
}

// Reset clears all block flags. Meant for tests and for embedders that
// model a page reload.
func (b *Blocks) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked = make(map[Mode]bool)
}

var shared = NewBlocks()

// Shared returns the process wide block set used when a PlatformContext
// does not carry its own.
func Shared() *Blocks {
	return shared
}
