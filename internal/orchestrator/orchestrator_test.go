package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/sapgui"
)

type stubSession struct{ sapgui.Session }

type stubConnector struct {
	sess sapgui.Session
	err  error
}

func (c *stubConnector) Connect(ctx context.Context) (sapgui.Session, error) {
	return c.sess, c.err
}

type stubNotice struct {
	path   string
	err    error
	called bool
}

func (n *stubNotice) Run(ctx context.Context, s sapgui.Session, start, end time.Time) (string, error) {
	n.called = true
	return n.path, n.err
}

type stubLookup struct {
	path   string
	err    error
	ids    []string
	called bool
}

func (l *stubLookup) Run(ctx context.Context, s sapgui.Session, ids []string) (string, error) {
	l.called = true
	l.ids = ids
	return l.path, l.err
}

func testOrchestrator(conn *stubConnector, notice *stubNotice, lookup *stubLookup, extract Extractor, resets *int) *Orchestrator {
	return &Orchestrator{
		Connector: conn,
		Notice:    notice,
		Lookup:    lookup,
		Extract:   extract,
		Reset:     func(s sapgui.Session) { *resets++ },
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func validCommand() RunCommand {
	return RunCommand{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestRunCommandValidate(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		cmd     RunCommand
		wantErr bool
	}{
		{"valid window", RunCommand{Start: day, End: day.AddDate(0, 0, 1)}, false},
		{"single day", RunCommand{Start: day, End: day}, false},
		{"inverted", RunCommand{Start: day, End: day.AddDate(0, 0, -1)}, true},
		{"zero start", RunCommand{End: day}, true},
		{"zero end", RunCommand{Start: day}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errs.KindOf(err) != errs.InvalidCommand {
				t.Errorf("kind = %q", errs.KindOf(err))
			}
		})
	}
}

func TestRunHappyPath(t *testing.T) {
	conn := &stubConnector{sess: stubSession{}}
	notice := &stubNotice{path: "/exports/export.xlsx"}
	lookup := &stubLookup{path: "/exports/brs_sap_gov.xlsx"}
	resets := 0
	extract := func(path string) ([]string, error) {
		if path != "/exports/export.xlsx" {
			t.Errorf("extract path = %q", path)
		}
		return []string{"12", "900123"}, nil
	}

	o := testOrchestrator(conn, notice, lookup, extract, &resets)
	res, err := o.Run(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.NoticeExport != "/exports/export.xlsx" || res.LookupExport != "/exports/brs_sap_gov.xlsx" {
		t.Errorf("result paths = %+v", res)
	}
	if res.RecordCount != 2 {
		t.Errorf("record count = %d", res.RecordCount)
	}
	if resets != 1 {
		t.Errorf("resets = %d", resets)
	}
	if len(lookup.ids) != 2 || lookup.ids[0] != "12" {
		t.Errorf("lookup ids = %v", lookup.ids)
	}
}

func TestRunInvalidCommandSkipsConnect(t *testing.T) {
	conn := &stubConnector{err: errors.New("should not be called")}
	notice := &stubNotice{}
	lookup := &stubLookup{}
	resets := 0

	o := testOrchestrator(conn, notice, lookup, nil, &resets)
	_, err := o.Run(context.Background(), RunCommand{})
	if errs.KindOf(err) != errs.InvalidCommand {
		t.Fatalf("kind = %q", errs.KindOf(err))
	}
	if notice.called || lookup.called {
		t.Error("runners invoked on invalid command")
	}
}

func TestRunNoticeFailureStopsPipeline(t *testing.T) {
	conn := &stubConnector{sess: stubSession{}}
	notice := &stubNotice{err: errs.Export("/exports", "export*.xlsx", time.Minute)}
	lookup := &stubLookup{}
	resets := 0

	o := testOrchestrator(conn, notice, lookup, nil, &resets)
	_, err := o.Run(context.Background(), validCommand())
	if errs.KindOf(err) != errs.ExportTimeout {
		t.Fatalf("kind = %q", errs.KindOf(err))
	}
	if lookup.called {
		t.Error("lookup ran after notice failure")
	}
	if resets != 0 {
		t.Error("reset ran after notice failure")
	}
}

func TestRunEmptyNotificationListFails(t *testing.T) {
	conn := &stubConnector{sess: stubSession{}}
	notice := &stubNotice{path: "/exports/export.xlsx"}
	lookup := &stubLookup{}
	resets := 0
	extract := func(path string) ([]string, error) { return nil, nil }

	o := testOrchestrator(conn, notice, lookup, extract, &resets)
	_, err := o.Run(context.Background(), validCommand())
	if errs.KindOf(err) != errs.InvalidCommand {
		t.Fatalf("kind = %q, want %q", errs.KindOf(err), errs.InvalidCommand)
	}
	if lookup.called {
		t.Error("lookup ran on empty list")
	}
}

func TestRunConnectFailure(t *testing.T) {
	conn := &stubConnector{err: errs.Connection("no entry", nil)}
	notice := &stubNotice{}
	lookup := &stubLookup{}
	resets := 0

	o := testOrchestrator(conn, notice, lookup, nil, &resets)
	_, err := o.Run(context.Background(), validCommand())
	if errs.KindOf(err) != errs.ConnectionFailed {
		t.Fatalf("kind = %q", errs.KindOf(err))
	}
	if notice.called {
		t.Error("notice ran without session")
	}
}
