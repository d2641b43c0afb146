// Package transaction drives the SAP GUI transactions behind a session
// interface: the notification report export, the notification lookup export
// and the navigation reset between them.
package transaction

import (
	"log/slog"

	"sapflow/cli/internal/config"
	"sapflow/cli/internal/sapgui"
)

const (
	commandField = "wnd[0]/tbar[0]/okcd"
	backButton   = "wnd[0]/tbar[0]/btn[3]"
	executeBtn   = "wnd[0]/tbar[1]/btn[8]"

	minBackPresses = 3
)

// ResetToMenu presses the back button until the command field is reachable
// again. At least minBackPresses presses happen regardless of screen state;
// the configured count is clamped to the global cap. Individual press
// failures are tolerated, a stuck modal would fail the next screen write
// anyway.
func ResetToMenu(s sapgui.Session, configured int, log *slog.Logger) {
	limit := configured
	if limit > config.MaxBackPresses {
		limit = config.MaxBackPresses
	}
	if limit < minBackPresses {
		limit = minBackPresses
	}

	pressed := 0
	for pressed < limit {
		if err := s.Press(backButton); err != nil {
			log.Warn("back press failed", "press", pressed+1, "error", err)
		}
		pressed++
		if pressed >= minBackPresses && s.Exists(commandField) {
			break
		}
	}
	log.Debug("navigation reset", "presses", pressed)
}

// startTransaction types a transaction code into the command field and
// submits it.
func startTransaction(s sapgui.Session, tcode string) error {
	if err := s.SetText(commandField, tcode); err != nil {
		return err
	}
	return s.SendVKey(0)
}
