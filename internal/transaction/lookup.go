package transaction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sapflow/cli/internal/clipboard"
	"sapflow/cli/internal/config"
	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/poll"
	"sapflow/cli/internal/sapgui"
	"sapflow/cli/internal/watcher"
)

const (
	multiSelectButton = "wnd[0]/usr/btn%_QMNUM_%_APP_%-VALU_PUSH"
	pasteButton       = "wnd[1]/tbar[0]/btn[24]"
	acceptButton      = "wnd[1]/tbar[0]/btn[8]"

	lookupExportMenu  = "wnd[0]/mbar/menu[0]/menu[6]"
	spreadsheetOption = "wnd[1]/usr/radSPOPLI-SELFLAG[0,0]"
	exportConfirm     = "wnd[1]/tbar[0]/btn[0]"

	lookupExportName = "brs_sap_gov.xlsx"

	// the selection screen renders the multi-select button late on slow
	// systems
	multiSelectWait = 8 * time.Second

	auditStampLayout = "20060102_150405"
)

// LookupRunner executes the notification lookup transaction for an explicit
// list of notification numbers and exports the result list.
type LookupRunner struct {
	Cfg   *config.Config
	Watch *watcher.Watcher
	Clip  clipboard.Writer
	Clock poll.Clock
	Log   *slog.Logger
}

// Run pastes the notification numbers into the multi-select dialog, executes
// the lookup and saves the list export. It returns the absolute path of the
// exported file; an export timeout fails the run outright.
func (r *LookupRunner) Run(ctx context.Context, s sapgui.Session, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", errs.Validation("no notification numbers to look up")
	}
	clock := r.Clock
	if clock == nil {
		clock = poll.SystemClock
	}

	if err := startTransaction(s, r.Cfg.LookupTcode); err != nil {
		return "", errs.Wrap(errs.ControlNotFound, "start notification lookup", err)
	}

	p := poll.Poller{Interval: watcher.Interval, Timeout: multiSelectWait, Clock: clock}
	if err := p.Wait(ctx, func() (bool, error) {
		return s.Exists(multiSelectButton), nil
	}); err != nil {
		return "", errs.Control(multiSelectButton, err)
	}
	if err := s.Press(multiSelectButton); err != nil {
		return "", err
	}

	if err := clipboard.Inject(r.Clip, ids); err != nil {
		return "", err
	}
	if err := s.Press(pasteButton); err != nil {
		return "", err
	}
	if err := s.Press(acceptButton); err != nil {
		return "", err
	}

	baseline := r.Watch.Snapshot(r.Cfg.LookupExportGlob)

	if err := s.Press(executeBtn); err != nil {
		return "", err
	}
	if err := s.Select(lookupExportMenu); err != nil {
		return "", err
	}
	if s.Exists(spreadsheetOption) {
		if err := s.Select(spreadsheetOption); err != nil {
			return "", err
		}
		if err := s.Press(exportConfirm); err != nil {
			return "", err
		}
	}
	if err := saveExportDialog(s, r.Watch.Dir, lookupExportName); err != nil {
		return "", err
	}

	path, err := r.Watch.AwaitExport(ctx, baseline, r.Cfg.LookupExportGlob, r.Cfg.ExportTimeout)
	if err != nil {
		return "", err
	}

	if copyPath, copyErr := r.auditCopy(path, clock.Now()); copyErr != nil {
		r.Log.Warn("audit copy not written", "error", copyErr)
	} else {
		r.Log.Debug("audit copy written", "file", copyPath)
	}

	r.Log.Info("notification lookup exported", "file", path, "notifications", len(ids))
	return path, nil
}

// auditCopy duplicates the export under a timestamped name so later runs
// overwriting the fixed export file never destroy history.
func (r *LookupRunner) auditCopy(path string, now time.Time) (string, error) {
	name := fmt.Sprintf("%s%s%s", r.Cfg.AuditCopyPrefix, now.Format(auditStampLayout), filepath.Ext(path))
	dst := filepath.Join(filepath.Dir(path), name)

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", err
	}
	return dst, out.Close()
}
