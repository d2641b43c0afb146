//go:build !windows

package sapgui

import "errors"

// NewDesktop reports that the SAP Logon ui fallback is unavailable off
// Windows. The connector then simply exhausts its strategy chain.
func NewDesktop() (Desktop, error) {
	return nil, errors.New("sap logon ui automation requires windows")
}
