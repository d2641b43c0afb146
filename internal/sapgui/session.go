// Package sapgui drives a live SAP GUI session through its scripting surface.
// It owns the connection strategy chain (reuse, direct open, SAP Logon UI
// fallback), the thin session facade used by transaction runners, and the
// fuzzy matching that locates entries on the SAP Logon selection screen.
package sapgui

import "context"

// Session is the thin facade over one live SAP GUI scripting session.
// Implementations must return an errs.ControlNotFound error carrying the
// control id whenever a lookup fails, so layout changes are diagnosable
// from logs alone.
type Session interface {
	// Exists reports whether a control id resolves on the current screen.
	// It never fails; unresolvable ids simply report false.
	Exists(id string) bool
	SetText(id, value string) error
	Press(id string) error
	Select(id string) error
	SetFocus(id string) error
	SetCaretPosition(id string, pos int) error
	// SendVKey sends a virtual key event to the main window.
	SendVKey(code int) error
	Maximize() error
}

// Login screen control ids. Stable across SAP GUI releases.
const (
	loginUserField     = "wnd[0]/usr/txtRSYST-BNAME"
	loginPasswordField = "wnd[0]/usr/pwdRSYST-BCODE"
	loginClientField   = "wnd[0]/usr/txtRSYST-MANDT"
	loginLanguageField = "wnd[0]/usr/txtRSYST-LANGU"
)

// vkEnter is the virtual key code for Enter.
const vkEnter = 0

// Launcher exposes the SAP Logon process's scripting engine, starting the
// executable when it is not yet running.
type Launcher interface {
	Attach(ctx context.Context) (Engine, error)
}

// Engine is the scripting automation engine of the launcher.
type Engine interface {
	// Connections enumerates the currently open connections.
	Connections() ([]Conn, error)
	// Open opens a connection by its configured description.
	Open(description string) (Conn, error)
}

// Conn is one open connection inside the launcher.
type Conn interface {
	Description() string
	// FirstSession waits for the connection's first session to appear.
	FirstSession(ctx context.Context) (Session, error)
}
