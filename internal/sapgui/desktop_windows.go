//go:build windows

package sapgui

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// MSAA-backed desktop driver. SAP Logon predates UI Automation and exposes
// its tree and connection grid cleanly through IAccessible, which inherits
// IDispatch and can therefore be driven with plain COM automation calls.

var (
	user32 = syscall.NewLazyDLL("user32.dll")
	oleacc = syscall.NewLazyDLL("oleacc.dll")

	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")

	procAccessibleObjectFromWindow = oleacc.NewProc("AccessibleObjectFromWindow")
	procAccessibleChildren         = oleacc.NewProc("AccessibleChildren")
)

var iidIAccessible = ole.NewGUID("{618736E0-3C3D-11CF-810C-00AA00389B71}")

const (
	objidClient = 0xFFFFFFFC
	childidSelf = 0

	roleOutlineItem = 0x24
	roleListItem    = 0x22
	roleRow         = 0x1C

	selflagTakeFocus     = 0x1
	selflagTakeSelection = 0x2

	// SAP Logon windows nest MSAA containers a handful of levels deep;
	// anything past this is another application's embedded content.
	maxWalkDepth = 12
)

// NewDesktop returns the MSAA desktop driver.
func NewDesktop() (Desktop, error) {
	return &msaaDesktop{}, nil
}

type msaaDesktop struct{}

func (d *msaaDesktop) AttachWindow(titlePattern string) (Window, error) {
	hwnd := findWindowByTitle(titlePattern)
	if hwnd == 0 {
		return nil, fmt.Errorf("no visible window titled %q", titlePattern)
	}

	var acc *ole.IDispatch
	hr, _, _ := procAccessibleObjectFromWindow.Call(
		uintptr(hwnd),
		uintptr(objidClient),
		uintptr(unsafe.Pointer(iidIAccessible)),
		uintptr(unsafe.Pointer(&acc)),
	)
	if int32(hr) < 0 || acc == nil {
		return nil, fmt.Errorf("AccessibleObjectFromWindow failed: 0x%x", hr)
	}
	return &msaaWindow{hwnd: hwnd, root: acc}, nil
}

func findWindowByTitle(titlePart string) syscall.Handle {
	var found syscall.Handle
	cb := syscall.NewCallback(func(hwnd syscall.Handle, _ uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
		if visible == 0 {
			return 1 // continue
		}
		var buf [512]uint16
		procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		title := syscall.UTF16ToString(buf[:])
		if strings.Contains(title, titlePart) {
			found = hwnd
			return 0 // stop
		}
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return found
}

type msaaWindow struct {
	hwnd syscall.Handle
	root *ole.IDispatch
}

func (w *msaaWindow) Focus() error {
	ok, _, _ := procSetForegroundWindow.Call(uintptr(w.hwnd))
	if ok == 0 {
		return fmt.Errorf("SetForegroundWindow refused")
	}
	return nil
}

func (w *msaaWindow) TreeItems() ([]Element, error) {
	return w.collect(roleOutlineItem)
}

func (w *msaaWindow) ListRows() ([]Element, error) {
	rows, err := w.collect(roleListItem)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}
	// Some SAP Logon builds expose the grid as rows instead of list items.
	return w.collect(roleRow)
}

func (w *msaaWindow) collect(role int) ([]Element, error) {
	var out []Element
	walkAccessible(w.root, 0, func(parent *ole.IDispatch, child any, r int) {
		if r == role {
			out = append(out, &msaaElement{parent: parent, child: child})
		}
	})
	return out, nil
}

// walkAccessible visits every MSAA node below acc. Object children recurse;
// simple children (child-id addressed, like list rows) are visited in place.
func walkAccessible(acc *ole.IDispatch, depth int, visit func(parent *ole.IDispatch, child any, role int)) {
	if depth > maxWalkDepth {
		return
	}

	countV, err := oleutil.GetProperty(acc, "accChildCount")
	if err != nil {
		return
	}
	count := int(countV.Val)
	if count == 0 {
		return
	}

	vars := make([]ole.VARIANT, count)
	var obtained int32
	hr, _, _ := procAccessibleChildren.Call(
		uintptr(unsafe.Pointer(acc)),
		0,
		uintptr(count),
		uintptr(unsafe.Pointer(&vars[0])),
		uintptr(unsafe.Pointer(&obtained)),
	)
	if int32(hr) < 0 {
		return
	}

	for i := 0; i < int(obtained); i++ {
		v := vars[i]
		switch v.VT {
		case ole.VT_DISPATCH:
			disp := v.ToIDispatch()
			if disp == nil {
				continue
			}
			visit(disp, childidSelf, accRole(disp, childidSelf))
			walkAccessible(disp, depth+1, visit)
		case ole.VT_I4:
			id := int(v.Val)
			visit(acc, id, accRole(acc, id))
		}
	}
}

func accRole(acc *ole.IDispatch, child any) int {
	v, err := oleutil.GetProperty(acc, "accRole", child)
	if err != nil {
		return 0
	}
	return int(v.Val)
}

// msaaElement addresses one MSAA node: either an object child (child id
// CHILDID_SELF on its own IAccessible) or a simple child of its parent.
type msaaElement struct {
	parent *ole.IDispatch
	child  any
}

func (e *msaaElement) Text() string {
	v, err := oleutil.GetProperty(e.parent, "accName", e.child)
	if err != nil {
		return ""
	}
	return v.ToString()
}

func (e *msaaElement) Activate() error {
	_, err := oleutil.CallMethod(e.parent, "accSelect", selflagTakeFocus|selflagTakeSelection, e.child)
	return err
}

// DoubleActivate runs the entry's default action, which for SAP Logon
// connection rows opens the connection like a double-click would.
func (e *msaaElement) DoubleActivate() error {
	if err := e.Activate(); err != nil {
		return err
	}
	_, err := oleutil.CallMethod(e.parent, "accDoDefaultAction", e.child)
	return err
}
