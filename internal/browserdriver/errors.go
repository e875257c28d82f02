package browserdriver

import "errors"

// ErrElementNotFound indicates a Find call found no matching element.
var ErrElementNotFound = errors.New("browserdriver: element not found")

// ErrElementNotVisible indicates a matching element exists but is hidden.
var ErrElementNotVisible = errors.New("browserdriver: element not visible")

// ErrNavigation indicates a navigation failure with no driver response.
var ErrNavigation = errors.New("browserdriver: navigation failed")
