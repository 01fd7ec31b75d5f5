package browser

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNoBrowser is returned when none of the supported browsers is installed.
var ErrNoBrowser = errors.New("no supported browser detected")

// Installation is the detection result for one browser.
type Installation struct {
	Browser   Browser
	Binary    string
	Installed bool
}

// executable reports whether path exists and may be executed by this user.
// Overridden in tests.
var executable = func(path string) bool {
	return path != "" && unix.Access(path, unix.X_OK) == nil
}

// Detect probes every supported browser. binaries overrides the default
// binary location per browser; a missing key uses DefaultBinary and an
// empty value marks the browser disabled.
func Detect(binaries map[Browser]string) []Installation {
	result := make([]Installation, 0, len(All))
	for _, b := range All {
		bin := b.DefaultBinary()
		if v, ok := binaries[b]; ok {
			bin = v
		}
		result = append(result, Installation{
			Browser:   b,
			Binary:    bin,
			Installed: executable(bin),
		})
	}
	return result
}

// Installed filters a detection result down to installed browsers.
func Installed(list []Installation) []Browser {
	var out []Browser
	for _, inst := range list {
		if inst.Installed {
			out = append(out, inst.Browser)
		}
	}
	return out
}

// DefaultChoice picks the browser preselected for a new launcher: the
// preferred one when installed, otherwise the first installed browser in
// display order.
func DefaultChoice(installed []Browser, preferred Browser) (Browser, error) {
	if len(installed) == 0 {
		return "", ErrNoBrowser
	}
	for _, b := range installed {
		if b == preferred {
			return b, nil
		}
	}
	for _, b := range All {
		for _, i := range installed {
			if i == b {
				return b, nil
			}
		}
	}
	return installed[0], nil
}
