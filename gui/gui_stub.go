//go:build !ebiten

package gui

import "context"

// Run reports that the window needs the ebiten build tag.
func Run(ctx context.Context, opts Options) error {
	return ErrUnavailable
}
