package browser

import (
	"fmt"
	"strings"
)

// WMClassPrefix prefixes the window class of every Ice launcher so the
// desktop groups SSB windows apart from the regular browser.
const WMClassPrefix = "ICE-SSB"

// WMClass returns the window class for the launcher with the given slug.
func WMClass(slug string) string {
	return WMClassPrefix + "-" + slug
}

// LaunchSpec holds what is needed to build a launcher command line.
type LaunchSpec struct {
	Browser    Browser
	Slug       string
	Address    string
	ProfileDir string // empty for a shared chromium-family profile
}

// Args returns the argv for spec. Firefox and GNOME Web require ProfileDir.
func Args(spec LaunchSpec) ([]string, error) {
	if !spec.Browser.Valid() {
		return nil, fmt.Errorf("unknown browser %q", spec.Browser)
	}
	if spec.Address == "" {
		return nil, fmt.Errorf("empty address")
	}
	if spec.Browser.AlwaysIsolated() && spec.ProfileDir == "" {
		return nil, fmt.Errorf("%s requires a profile directory", spec.Browser.DisplayName())
	}

	cmd := spec.Browser.Command()
	switch spec.Browser {
	case Firefox:
		return []string{cmd, "--class", WMClass(spec.Slug), "--profile", spec.ProfileDir, "--no-remote", spec.Address}, nil
	case Epiphany:
		return []string{cmd, "--application-mode", "--profile=" + spec.ProfileDir, spec.Address}, nil
	}

	args := []string{cmd, "--app=" + spec.Address, "--class=" + WMClass(spec.Slug)}
	if spec.ProfileDir != "" {
		args = append(args, "--user-data-dir="+spec.ProfileDir)
	}
	return args, nil
}

// ExecLine renders spec as a desktop-entry Exec= value.
func ExecLine(spec LaunchSpec) (string, error) {
	args, err := Args(spec)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		if spec.Browser == Epiphany && strings.HasPrefix(a, "--profile=") {
			// GNOME Web launchers always quote the profile path.
			parts[i] = "--profile=" + quote(strings.TrimPrefix(a, "--profile="), true)
			continue
		}
		parts[i] = quote(a, false)
	}
	return strings.Join(parts, " "), nil
}

// reserved characters that force quoting in an Exec= argument.
const reserved = " \t\n\"'\\><~|&;$*?#()`"

// quote applies desktop-entry Exec quoting. Literal percent signs are
// doubled so they are not read as field codes. Exec is also a string
// value, so every backslash the quoting adds is itself escaped.
func quote(arg string, force bool) string {
	arg = strings.ReplaceAll(arg, "%", "%%")
	if !force && arg != "" && !strings.ContainsAny(arg, reserved) {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '`', '$':
			b.WriteString(`\\`)
		case '\\':
			b.WriteString(`\\\\`)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
