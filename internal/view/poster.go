package view

// Poster runs callbacks on the UI goroutine.
type Poster interface {
	Post(fn func())
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(fn func())

// Post calls f(fn).
func (f PosterFunc) Post(fn func()) { f(fn) }

// Immediate runs callbacks inline. It is only correct when the caller is
// already on the UI goroutine, which is the case in tests and for
// synchronous modules.
var Immediate Poster = PosterFunc(func(fn func()) { fn() })
