package sapgui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/poll"
)

// Desktop drives top-level windows of the local desktop. It exists so the
// selection logic stays testable; the production implementation lives in
// desktop_windows.go.
type Desktop interface {
	// AttachWindow finds a visible top-level window whose title contains
	// the pattern. A single attempt; callers poll.
	AttachWindow(titlePattern string) (Window, error)
}

// Window is an attached top-level window of the launcher.
type Window interface {
	Focus() error
	// TreeItems lists the entries of the left-hand server tree.
	TreeItems() ([]Element, error)
	// ListRows lists the rows of the connection grid.
	ListRows() ([]Element, error)
}

// Element is one addressable item inside a window.
type Element interface {
	Text() string
	Activate() error
	DoubleActivate() error
}

// logonWindowTitle matches the SAP Logon main window across versions.
const logonWindowTitle = "SAP Logon"

// LogonPicker selects a server and connection directly on the SAP Logon
// selection screen when the scripting engine cannot open the target on its
// own. Matching is fuzzy: labels are normalized and the best-scoring
// candidate above zero wins.
type LogonPicker struct {
	Desktop Desktop
	Timeout time.Duration
	Log     *slog.Logger
}

// OpenConnection clicks the server node on the tree and double-activates the
// best-matching connection row.
func (p *LogonPicker) OpenConnection(ctx context.Context, serverName, connectionName string) error {
	win, err := p.attach(ctx)
	if err != nil {
		return err
	}

	// Best effort; a background window still accepts MSAA actions.
	if err := win.Focus(); err != nil {
		p.logger().Debug("could not focus SAP Logon window", "error", err)
	}

	p.selectServer(win, serverName)
	return p.activateConnection(win, connectionName)
}

func (p *LogonPicker) attach(ctx context.Context) (Window, error) {
	var win Window
	wait := poll.Poller{Interval: 500 * time.Millisecond, Timeout: p.Timeout, Clock: poll.SystemClock}
	err := wait.Wait(ctx, func() (bool, error) {
		w, err := p.Desktop.AttachWindow(logonWindowTitle)
		if err != nil {
			return false, nil
		}
		win = w
		return true, nil
	})
	if err != nil {
		return nil, errs.Connection("SAP Logon window not found for ui fallback", err)
	}
	return win, nil
}

// selectServer is tolerant: when the server node cannot be found the
// connection grid may already show the right entries, so we log and move on.
func (p *LogonPicker) selectServer(win Window, serverName string) {
	target := Normalize(serverName)
	if target == "" {
		return
	}

	items, err := win.TreeItems()
	if err != nil || len(items) == 0 {
		p.logger().Warn("no server tree entries visible in SAP Logon", "error", err)
		return
	}

	best, score := bestMatch(items, target)
	if best == nil || score <= 0 {
		p.logger().Warn("server not found in SAP Logon tree", "server", serverName)
		return
	}

	p.logger().Info("selecting SAP Logon server", "entry", best.Text())
	if err := best.Activate(); err != nil {
		p.logger().Warn("could not select server entry", "error", err)
	}
}

func (p *LogonPicker) activateConnection(win Window, connectionName string) error {
	// Configured names often abbreviate with "..."; treat it as a gap.
	target := Normalize(strings.ReplaceAll(connectionName, "...", " "))
	if target == "" {
		return errs.Connection("SAP_CONNECTION_NAME not configured", nil)
	}

	rows, err := win.ListRows()
	if err != nil {
		return errs.Connection("could not read SAP Logon connection grid", err)
	}
	rows = dedupeByText(rows)
	if len(rows) == 0 {
		return errs.Connection("no connections visible in SAP Logon grid", nil)
	}

	best, score := bestMatch(rows, target)
	if best == nil || score <= 0 {
		return errs.Connection(fmt.Sprintf(
			"connection %q not found in SAP Logon grid; visible: %s",
			connectionName, previewTexts(rows, 10)), nil)
	}

	p.logger().Info("opening SAP connection via double-click", "entry", best.Text())
	if err := best.DoubleActivate(); err != nil {
		return errs.Connection("double-click on connection entry failed", err)
	}
	return nil
}

func (p *LogonPicker) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func bestMatch(items []Element, target string) (Element, int) {
	var best Element
	bestScore := -1
	for _, item := range items {
		if score := Score(item.Text(), target); score > bestScore {
			bestScore = score
			best = item
		}
	}
	return best, bestScore
}

func dedupeByText(items []Element) []Element {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		text := strings.TrimSpace(item.Text())
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, item)
	}
	return out
}

func previewTexts(items []Element, limit int) string {
	texts := make([]string, 0, limit)
	for _, item := range items {
		if len(texts) == limit {
			break
		}
		texts = append(texts, item.Text())
	}
	return strings.Join(texts, ", ")
}
