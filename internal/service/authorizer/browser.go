package authorizer

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

type BrowserOpener func(url string) error

// the launcher must not write into the wizard's terminal
func init() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenBrowser hands url to the desktop's default handler.
func OpenBrowser(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
