package transaction

import (
	"context"
	"log/slog"
	"time"

	"sapflow/cli/internal/config"
	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/sapgui"
	"sapflow/cli/internal/watcher"
)

const (
	noticeCategoryField = "wnd[0]/usr/ctxtPC_QMART"
	noticeDateLowField  = "wnd[0]/usr/ctxtSD_QMDAT-LOW"
	noticeDateHighField = "wnd[0]/usr/ctxtSD_QMDAT-HIGH"
	noticeCodeLowField  = "wnd[0]/usr/ctxtSC_QMCOD-LOW"
	noticeVariantField  = "wnd[0]/usr/ctxtPC_VARIA"

	noticeExportMenu = "wnd[0]/mbar/menu[0]/menu[4]/menu[1]"

	noticeExportName = "export.xlsx"

	// wideExportGlob is the retry pattern when the save dialog renamed the
	// proposed file.
	wideExportGlob = "*.xlsx"

	// variantCaret lands the cursor past the layout prefix so typed text
	// appends instead of overwriting. Clamped to the variant length.
	variantCaret = 9

	sapDateLayout = "02.01.2006"
)

// NoticeRunner executes the notification report transaction and exports its
// result to the watched directory.
type NoticeRunner struct {
	Cfg   *config.Config
	Watch *watcher.Watcher
	Log   *slog.Logger
}

// Run fills the report selection screen for the [start, end] window, executes
// it and saves the spreadsheet export. Returns the absolute path of the
// exported file.
func (r *NoticeRunner) Run(ctx context.Context, s sapgui.Session, start, end time.Time) (string, error) {
	if err := startTransaction(s, r.Cfg.NoticeTcode); err != nil {
		return "", errs.Wrap(errs.ControlNotFound, "start notification report", err)
	}

	fields := []struct {
		id    string
		value string
	}{
		{noticeCategoryField, r.Cfg.NoticeCategory},
		{noticeDateLowField, start.Format(sapDateLayout)},
		{noticeDateHighField, end.Format(sapDateLayout)},
		{noticeCodeLowField, "*"},
	}
	for _, f := range fields {
		if err := s.SetText(f.id, f.value); err != nil {
			return "", err
		}
	}

	if r.Cfg.ReportVariant != "" {
		if err := s.SetText(noticeVariantField, r.Cfg.ReportVariant); err != nil {
			return "", err
		}
		if err := s.SetFocus(noticeVariantField); err != nil {
			return "", err
		}
		caret := variantCaret
		if len(r.Cfg.ReportVariant) < caret {
			caret = len(r.Cfg.ReportVariant)
		}
		if err := s.SetCaretPosition(noticeVariantField, caret); err != nil {
			r.Log.Warn("variant caret position not applied", "error", err)
		}
	}

	// The wide baseline must cover every spreadsheet already present, or a
	// stale non-matching file would qualify as new on the widened retry.
	baseline := r.Watch.Snapshot(r.Cfg.NoticeExportGlob)
	wideBaseline := r.Watch.Snapshot(wideExportGlob)

	if err := s.Press(executeBtn); err != nil {
		return "", err
	}
	if err := s.Select(noticeExportMenu); err != nil {
		return "", err
	}
	if err := saveExportDialog(s, r.Watch.Dir, noticeExportName); err != nil {
		return "", err
	}

	path, err := r.Watch.AwaitExport(ctx, baseline, r.Cfg.NoticeExportGlob, r.Cfg.ExportTimeout)
	if err != nil && errs.KindOf(err) == errs.ExportTimeout {
		// filename dialogs occasionally rewrite the proposed name; one
		// wider retry catches the renamed artifact
		r.Log.Warn("export not seen under primary pattern, widening", "pattern", r.Cfg.NoticeExportGlob)
		path, err = r.Watch.AwaitExport(ctx, wideBaseline, wideExportGlob, r.Cfg.ExportTimeout)
	}
	if err != nil {
		return "", err
	}

	r.Log.Info("notification report exported", "file", path)
	return path, nil
}
