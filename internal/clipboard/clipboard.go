// Package clipboard feeds value lists to SAP multi-select dialogs through the
// system clipboard, the only bulk input path those dialogs expose.
package clipboard

import (
	"strings"

	"github.com/atotto/clipboard"

	"sapflow/cli/internal/errs"
)

// Writer places text on the system clipboard.
type Writer interface {
	Write(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) Write(text string) error {
	return clipboard.WriteAll(text)
}

// Inject joins values one per line with CRLF terminators, which SAP's paste
// handler requires, and writes the block through w.
func Inject(w Writer, values []string) error {
	if len(values) == 0 {
		return errs.Validation("no values to place on clipboard")
	}
	if err := w.Write(strings.Join(values, "\r\n") + "\r\n"); err != nil {
		return errs.Wrap(errs.ControlNotFound, "clipboard write failed", err)
	}
	return nil
}
