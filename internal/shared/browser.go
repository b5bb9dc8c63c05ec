package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// openers maps GOOS to the command that hands a URL to the desktop's default browser.
var openers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser starts the user's browser on url without waiting for it.
//
// $BROWSER takes precedence over the platform default.
func OpenBrowser(url string) error {
	argv, err := openerFor(runtime.GOOS, os.Getenv("BROWSER"))
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], append(argv[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func openerFor(goos, override string) ([]string, error) {
	if override != "" {
		return []string{override}, nil
	}
	argv, ok := openers[goos]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
	return argv, nil
}
