// Package browserdriver defines the abstract browser-automation capability
// the Action Executor drives, and its two concrete implementations: a
// go-rod-backed driver and a dependency-free recording-replay driver.
package browserdriver

import "context"

// ElementHandle is an opaque reference to a resolved DOM element, valid
// only for the Driver instance that returned it.
type ElementHandle interface {
	// Text returns the element's visible text content.
	Text() (string, error)
}

// PageInventory is the visible-element inventory used for PageSignature
// computation.
type PageInventory struct {
	URL          string
	Title        string
	ElementKeys  []string
}

// Driver is the abstract capability set the Action Executor depends on.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	// Find resolves a selector under the given strategy, returning an
	// ElementHandle or an error satisfying errors.Is(err, ErrElementNotFound).
	Find(ctx context.Context, strategy, selector string) (ElementHandle, error)

	Click(ctx context.Context, el ElementHandle) error
	Fill(ctx context.Context, el ElementHandle, value string) error
	Type(ctx context.Context, el ElementHandle, value string, keystrokeDelayMs int) error
	Select(ctx context.Context, el ElementHandle, value string) error
	Check(ctx context.Context, el ElementHandle, checked bool) error
	Hover(ctx context.Context, el ElementHandle) error
	PressKey(ctx context.Context, key string) error

	Screenshot(ctx context.Context) ([]byte, error)

	// Inventory evaluates a script returning the visible interactive
	// element inventory, for signature computation.
	Inventory(ctx context.Context) (PageInventory, error)

	Close() error
}
