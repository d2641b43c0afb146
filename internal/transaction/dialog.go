package transaction

import (
	"path/filepath"
	"strings"

	"sapflow/cli/internal/sapgui"
)

const (
	dialogPathField = "wnd[1]/usr/ctxtDY_PATH"
	dialogNameField = "wnd[1]/usr/ctxtDY_FILENAME"
	dialogReplace   = "wnd[1]/tbar[0]/btn[11]"
	dialogOK        = "wnd[1]/tbar[0]/btn[0]"
	overwriteYes    = "wnd[1]/usr/btnSPOP-OPTION1"
)

// saveExportDialog completes SAP's file save dialog: directory and filename
// go into separate fields, then replace-if-exists. Some layouts show an
// intermediate confirmation before the path fields, and some add an
// overwrite confirmation popup afterwards; both are acknowledged when
// present.
func saveExportDialog(s sapgui.Session, dir, filename string) error {
	if !s.Exists(dialogPathField) && s.Exists(dialogOK) {
		if err := s.Press(dialogOK); err != nil {
			return err
		}
	}
	if err := s.SetText(dialogPathField, windowsPath(dir)); err != nil {
		return err
	}
	if err := s.SetText(dialogNameField, filename); err != nil {
		return err
	}
	if err := s.Press(dialogReplace); err != nil {
		// older releases only expose the plain confirm button
		if err := s.Press(dialogOK); err != nil {
			return err
		}
	}
	if s.Exists(overwriteYes) {
		if err := s.Press(overwriteYes); err != nil {
			return err
		}
	}
	return nil
}

// windowsPath renders dir with backslash separators; the dialog rejects
// forward slashes.
func windowsPath(dir string) string {
	return strings.ReplaceAll(filepath.Clean(dir), "/", `\`)
}
