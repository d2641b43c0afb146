package sapgui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/poll"
)

// sapROTName is the running-object-table name the SAP Logon process
// registers its scripting root under.
const sapROTName = "SAPGUI"

// ComLauncher attaches to the SAP Logon scripting engine through COM,
// starting the configured executable when the process is not yet running.
type ComLauncher struct {
	Executable     string
	StartupTimeout time.Duration
}

var _ Launcher = (*ComLauncher)(nil)

// Attach returns the scripting engine, launching SAP Logon if needed and
// waiting up to StartupTimeout for the COM object to register.
func (l *ComLauncher) Attach(ctx context.Context) (Engine, error) {
	// CoInitialize fails harmlessly when the apartment is already
	// initialized; genuine failures resurface on GetActiveObject.
	_ = ole.CoInitialize(0)

	engine, err := scriptingEngine()
	if err == nil {
		return engine, nil
	}

	if startErr := l.start(); startErr != nil {
		return nil, startErr
	}

	p := poll.Poller{Interval: time.Second, Timeout: l.StartupTimeout, Clock: poll.SystemClock}
	waitErr := p.Wait(ctx, func() (bool, error) {
		engine, err = scriptingEngine()
		return err == nil, nil
	})
	if waitErr != nil || err != nil {
		return nil, errs.Connection("could not attach to SAPGUI scripting engine", err)
	}
	return engine, nil
}

func (l *ComLauncher) start() error {
	if l.Executable == "" {
		return errs.Connection("SAP_LOGON_EXECUTABLE not configured", nil)
	}
	if _, err := os.Stat(l.Executable); err != nil {
		return errs.Connection(fmt.Sprintf("SAP Logon executable not found: %s", l.Executable), err)
	}
	cmd := exec.Command(l.Executable)
	if err := cmd.Start(); err != nil {
		return errs.Connection("failed to start SAP Logon", err)
	}
	// The launcher process outlives this run; do not wait on it.
	return cmd.Process.Release()
}

func scriptingEngine() (Engine, error) {
	unknown, err := oleutil.GetActiveObject(sapROTName)
	if err != nil {
		return nil, err
	}
	root, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		return nil, err
	}
	v, err := oleutil.GetProperty(root, "GetScriptingEngine")
	if err != nil {
		root.Release()
		return nil, errs.Connection("SAP GUI scripting disabled; enable it on client and server", err)
	}
	app := v.ToIDispatch()
	if app == nil {
		root.Release()
		return nil, errs.Connection("SAP GUI scripting engine unavailable", nil)
	}
	return &comEngine{app: app}, nil
}

// comEngine wraps the GuiApplication scripting object.
type comEngine struct {
	app *ole.IDispatch
}

func (e *comEngine) Connections() ([]Conn, error) {
	items, err := collectionItems(e.app)
	if err != nil {
		return nil, err
	}
	conns := make([]Conn, 0, len(items))
	for _, item := range items {
		conns = append(conns, &comConn{raw: item})
	}
	return conns, nil
}

func (e *comEngine) Open(description string) (Conn, error) {
	v, err := oleutil.CallMethod(e.app, "OpenConnection", description, true)
	if err != nil {
		return nil, err
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, fmt.Errorf("OpenConnection(%q) returned no connection", description)
	}
	return &comConn{raw: disp}, nil
}

// comConn wraps a GuiConnection scripting object.
type comConn struct {
	raw *ole.IDispatch
}

func (c *comConn) Description() string {
	v, err := oleutil.GetProperty(c.raw, "Description")
	if err != nil {
		return ""
	}
	return v.ToString()
}

// sessionWait is how long a freshly opened connection is given to spawn its
// first session child. SAP opens it asynchronously after the dialog closes.
const sessionWait = 40 * time.Second

func (c *comConn) FirstSession(ctx context.Context) (Session, error) {
	var sess Session
	p := poll.Poller{Interval: 500 * time.Millisecond, Timeout: sessionWait, Clock: poll.SystemClock}
	err := p.Wait(ctx, func() (bool, error) {
		items, err := collectionItems(c.raw)
		if err != nil || len(items) == 0 {
			return false, nil
		}
		sess = &comSession{raw: items[0]}
		return true, nil
	})
	if err != nil {
		return nil, errs.Connection("timed out waiting for SAP session to open", err)
	}
	return sess, nil
}

// collectionItems returns the Children of a scripting object as dispatch
// pointers. SAP collections expose Count and ElementAt.
func collectionItems(parent *ole.IDispatch) ([]*ole.IDispatch, error) {
	cv, err := oleutil.GetProperty(parent, "Children")
	if err != nil {
		return nil, err
	}
	coll := cv.ToIDispatch()
	if coll == nil {
		return nil, fmt.Errorf("children collection unavailable")
	}
	defer coll.Release()

	countV, err := oleutil.GetProperty(coll, "Count")
	if err != nil {
		return nil, err
	}
	count := int(countV.Val)

	items := make([]*ole.IDispatch, 0, count)
	for i := 0; i < count; i++ {
		iv, err := oleutil.CallMethod(coll, "ElementAt", i)
		if err != nil {
			continue
		}
		if disp := iv.ToIDispatch(); disp != nil {
			items = append(items, disp)
		}
	}
	return items, nil
}
