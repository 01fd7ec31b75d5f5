package browser

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/google/shlex"
)

// startDetached starts argv in its own session and does not wait for it.
// Overridden in tests.
var startDetached = func(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// SplitExec parses a desktop-entry Exec= value into argv. Field codes such
// as %u are dropped and %% is unescaped.
func SplitExec(line string) ([]string, error) {
	fields, err := shlex.Split(unescapeString(line))
	if err != nil {
		return nil, fmt.Errorf("parsing exec line: %w", err)
	}
	argv := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) == 2 && f[0] == '%' && f[1] != '%' {
			continue
		}
		argv = append(argv, strings.ReplaceAll(f, "%%", "%"))
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty exec line")
	}
	return argv, nil
}

// unescapeString undoes desktop-entry string escapes (\s \n \t \r \\).
// Other backslash pairs are left for the Exec quoting rules.
func unescapeString(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' || i+1 == len(v) {
			b.WriteByte(v[i])
			continue
		}
		switch v[i+1] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(v[i+1])
		}
		i++
	}
	return b.String()
}

// Launch starts the command described by an Exec= value.
func Launch(execLine string) error {
	argv, err := SplitExec(execLine)
	if err != nil {
		return err
	}
	if err := startDetached(argv); err != nil {
		return fmt.Errorf("starting %s: %w", argv[0], err)
	}
	return nil
}
