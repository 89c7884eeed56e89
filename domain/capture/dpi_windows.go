//go:build windows

package capture

// EnableDPIAwareness marks the process DPI aware so window geometry and GDI
// coordinates both use physical pixels. Call once before any window exists.
func EnableDPIAwareness() error {
	setAware := user32.NewProc("SetProcessDPIAware")
	if err := setAware.Find(); err != nil {
		return err
	}
	r1, _, err := setAware.Call()
	if r1 == 0 {
		return err
	}
	return nil
}
