package sapgui

import (
	"context"
	"log/slog"
	"strings"

	"sapflow/cli/internal/errs"
)

// Target names the SAP Logon entry the automation should land on.
type Target struct {
	ServerName     string
	ConnectionName string
}

// Credentials is the login material written to the credential screen when
// the session is not already authenticated.
type Credentials struct {
	Username string
	Password string
	Client   string
	Language string
}

// Connector establishes one SAP session for a run. Strategies are tried in a
// fixed priority order and the first success wins: reuse an open connection,
// open directly through the scripting engine, then drive the SAP Logon
// window itself.
type Connector struct {
	Launcher Launcher
	Picker   *LogonPicker
	Target   Target
	Creds    Credentials
	Log      *slog.Logger
}

// Connect returns a logged-in session or an errs.ConnectionFailed error once
// every strategy is exhausted.
func (c *Connector) Connect(ctx context.Context) (Session, error) {
	log := c.logger()

	strategies := []struct {
		name string
		fn   func(context.Context) (Session, error)
	}{
		{"reuse-existing", c.reuseExisting},
		{"direct-open", c.directOpen},
		{"logon-ui", c.logonFallback},
	}

	var lastErr error
	for _, s := range strategies {
		sess, err := s.fn(ctx)
		if err == nil {
			log.Info("sap connection established", "strategy", s.name)
			if err := c.loginIfNeeded(sess, log); err != nil {
				return nil, err
			}
			if err := sess.Maximize(); err != nil {
				log.Debug("could not maximize sap window", "error", err)
			}
			return sess, nil
		}
		if ctx.Err() != nil {
			return nil, errs.Connection("connection aborted", ctx.Err())
		}
		log.Debug("connection strategy failed", "strategy", s.name, "error", err)
		lastErr = err
	}

	return nil, errs.Connection("connection entry not found", lastErr)
}

// reuseExisting looks for an already-open connection matching the target
// description, skipping login entirely when found.
func (c *Connector) reuseExisting(ctx context.Context) (Session, error) {
	engine, err := c.Launcher.Attach(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := findByDescription(engine, c.Target.ConnectionName)
	if err != nil {
		return nil, err
	}
	return conn.FirstSession(ctx)
}

// directOpen asks the scripting engine to open a connection, preferring the
// full connection description and falling back to the server group entry.
func (c *Connector) directOpen(ctx context.Context) (Session, error) {
	engine, err := c.Launcher.Attach(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, candidate := range []string{c.Target.ConnectionName, c.Target.ServerName} {
		if candidate == "" {
			continue
		}
		conn, err := engine.Open(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.FirstSession(ctx)
	}
	return nil, errs.Connection("could not open SAP connection by description", lastErr)
}

// logonFallback drives the SAP Logon selection screen directly, then attaches
// to the connection that the double-click opened.
func (c *Connector) logonFallback(ctx context.Context) (Session, error) {
	if c.Picker == nil {
		return nil, errs.Connection("logon ui fallback unavailable", nil)
	}
	if err := c.Picker.OpenConnection(ctx, c.Target.ServerName, c.Target.ConnectionName); err != nil {
		return nil, err
	}

	engine, err := c.Launcher.Attach(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := findByDescription(engine, c.Target.ConnectionName)
	if err != nil {
		return nil, err
	}
	return conn.FirstSession(ctx)
}

// loginIfNeeded fills the credential screen when present. A session restored
// from an open connection is already authenticated and shows no user field.
func (c *Connector) loginIfNeeded(sess Session, log *slog.Logger) error {
	if !sess.Exists(loginUserField) {
		log.Debug("sap session already authenticated")
		return nil
	}

	if err := sess.SetText(loginUserField, c.Creds.Username); err != nil {
		return err
	}
	if err := sess.SetText(loginPasswordField, c.Creds.Password); err != nil {
		return err
	}
	if c.Creds.Client != "" && sess.Exists(loginClientField) {
		if err := sess.SetText(loginClientField, c.Creds.Client); err != nil {
			return err
		}
	}
	if c.Creds.Language != "" && sess.Exists(loginLanguageField) {
		if err := sess.SetText(loginLanguageField, c.Creds.Language); err != nil {
			return err
		}
	}
	return sess.SendVKey(vkEnter)
}

func (c *Connector) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func findByDescription(engine Engine, description string) (Conn, error) {
	target := strings.ToLower(strings.TrimSpace(description))
	if target == "" {
		return nil, errs.Connection("connection description not configured", nil)
	}
	conns, err := engine.Connections()
	if err != nil {
		return nil, err
	}
	for _, conn := range conns {
		if strings.Contains(strings.ToLower(conn.Description()), target) {
			return conn, nil
		}
	}
	return nil, errs.Connection("no open connection matches "+description, nil)
}
