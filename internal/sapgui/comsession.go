package sapgui

import (
	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"sapflow/cli/internal/errs"
)

const mainWindow = "wnd[0]"

// comSession adapts one SAP GUI scripting session object (GuiSession) to the
// Session facade. All lookups go through findById on the raw COM object.
type comSession struct {
	raw *ole.IDispatch
}

var _ Session = (*comSession)(nil)

func (s *comSession) find(id string) (*ole.IDispatch, error) {
	v, err := oleutil.CallMethod(s.raw, "findById", id)
	if err != nil {
		return nil, errs.Control(id, err)
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, errs.Control(id, nil)
	}
	return disp, nil
}

func (s *comSession) Exists(id string) bool {
	disp, err := s.find(id)
	if err != nil {
		return false
	}
	disp.Release()
	return true
}

func (s *comSession) SetText(id, value string) error {
	disp, err := s.find(id)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.PutProperty(disp, "text", value)
	return errs.Wrap(errs.ControlNotFound, "set text on "+id, err)
}

func (s *comSession) Press(id string) error {
	disp, err := s.find(id)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.CallMethod(disp, "press")
	return errs.Wrap(errs.ControlNotFound, "press "+id, err)
}

func (s *comSession) Select(id string) error {
	disp, err := s.find(id)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.CallMethod(disp, "select")
	return errs.Wrap(errs.ControlNotFound, "select "+id, err)
}

func (s *comSession) SetFocus(id string) error {
	disp, err := s.find(id)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.CallMethod(disp, "setFocus")
	return errs.Wrap(errs.ControlNotFound, "focus "+id, err)
}

func (s *comSession) SetCaretPosition(id string, pos int) error {
	disp, err := s.find(id)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.PutProperty(disp, "caretPosition", pos)
	return errs.Wrap(errs.ControlNotFound, "caret on "+id, err)
}

func (s *comSession) SendVKey(code int) error {
	disp, err := s.find(mainWindow)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.CallMethod(disp, "sendVKey", code)
	return errs.Wrap(errs.ControlNotFound, "send vkey", err)
}

func (s *comSession) Maximize() error {
	disp, err := s.find(mainWindow)
	if err != nil {
		return err
	}
	defer disp.Release()
	_, err = oleutil.CallMethod(disp, "maximize")
	return errs.Wrap(errs.ControlNotFound, "maximize", err)
}
