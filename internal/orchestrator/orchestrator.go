// Package orchestrator sequences a full extraction run: connect to SAP,
// export the notification report, derive the notification list, reset
// navigation, run the lookup export.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/notes"
	"sapflow/cli/internal/sapgui"
)

// RunCommand is the validated input of one extraction run.
type RunCommand struct {
	Start time.Time
	End   time.Time
}

// Validate rejects inverted date windows.
func (c RunCommand) Validate() error {
	if c.Start.IsZero() || c.End.IsZero() {
		return errs.Validation("start and end dates are required")
	}
	if c.End.Before(c.Start) {
		return errs.Validation(fmt.Sprintf("end date %s precedes start date %s",
			c.End.Format("2006-01-02"), c.Start.Format("2006-01-02")))
	}
	return nil
}

// RunResult reports where a run left its artifacts.
type RunResult struct {
	NoticeExport string
	LookupExport string
	RecordCount  int
}

// Connector yields an authenticated SAP session.
type Connector interface {
	Connect(ctx context.Context) (sapgui.Session, error)
}

// NoticeRunner exports the notification report for a date window.
type NoticeRunner interface {
	Run(ctx context.Context, s sapgui.Session, start, end time.Time) (string, error)
}

// LookupRunner exports the lookup result for a notification list.
type LookupRunner interface {
	Run(ctx context.Context, s sapgui.Session, ids []string) (string, error)
}

// Extractor pulls the raw notification numbers out of an exported workbook.
type Extractor func(path string) ([]string, error)

// Resetter returns the session to the main menu between transactions.
type Resetter func(s sapgui.Session)

// Orchestrator wires the run pipeline. All collaborators are required.
type Orchestrator struct {
	Connector Connector
	Notice    NoticeRunner
	Lookup    LookupRunner
	Extract   Extractor
	Reset     Resetter
	Log       *slog.Logger
}

// New builds an orchestrator extracting with the workbook reader.
func New(conn Connector, notice NoticeRunner, lookup LookupRunner, reset Resetter, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Connector: conn,
		Notice:    notice,
		Lookup:    lookup,
		Extract:   notes.ExtractFromWorkbook,
		Reset:     reset,
		Log:       log,
	}
}

// Run executes one full extraction. Stages run strictly in order and the
// first failure aborts the run; a report window with no notifications is a
// failure, not an empty success.
func (o *Orchestrator) Run(ctx context.Context, cmd RunCommand) (*RunResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	log := o.Log
	log.Info("run started",
		"start", cmd.Start.Format("2006-01-02"),
		"end", cmd.End.Format("2006-01-02"))

	sess, err := o.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	noticePath, err := o.Notice.Run(ctx, sess, cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	ids, err := o.Extract(noticePath)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errs.Validation(fmt.Sprintf("no notifications in window %s..%s",
			cmd.Start.Format("2006-01-02"), cmd.End.Format("2006-01-02")))
	}
	log.Info("notifications extracted", "count", len(ids))

	o.Reset(sess)

	lookupPath, err := o.Lookup.Run(ctx, sess, ids)
	if err != nil {
		return nil, err
	}

	log.Info("run finished", "records", len(ids))
	return &RunResult{
		NoticeExport: noticePath,
		LookupExport: lookupPath,
		RecordCount:  len(ids),
	}, nil
}
