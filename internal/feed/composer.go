package feed

import "sync"

// Composer holds the draft text of a message being written. On submit the
// caller takes the draft; if the submit fails the draft is restored so the
// user can retry without retyping.
type Composer struct {
	mu    sync.Mutex
	draft string
}

// Set replaces the draft text.
func (c *Composer) Set(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Take returns the draft and clears it. The caller restores it if the
// submit fails.
func (c *Composer) Take() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text := c.draft
	c.draft = ""
	return text
}

// Restore puts failed-submit text back into the composer.
func (c *Composer) Restore(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the current draft without clearing it.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}
