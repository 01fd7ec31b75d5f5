package desktop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Encode writes e in the layout Ice has always produced.
func Encode(w io.Writer, e *Entry) error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.Exec == "" {
		return fmt.Errorf("desktop entry %q has no Exec line", e.Name)
	}
	for _, v := range []string{e.Name, e.Comment, e.Exec, e.Icon, e.Categories, e.Profile} {
		if strings.ContainsAny(v, "\r\n") {
			return ErrInvalidValue
		}
	}

	bw := bufio.NewWriter(w)
	line := func(key, value string) {
		fmt.Fprintf(bw, "%s=%s\n", key, value)
	}

	bw.WriteString("[Desktop Entry]\n")
	line("Version", "1.0")
	line("Name", e.Name)
	line("Comment", e.Comment)
	line("Exec", e.Exec)
	if e.Marker != MarkerNone {
		line(e.Marker.Key(), e.Profile)
	}
	line("Terminal", "false")
	line("X-MultipleArgs", "false")
	line("Type", "Application")
	line("Icon", e.Icon)
	line("Categories", e.Categories)
	line("MimeType", e.MimeType)
	line("StartupWMClass", e.StartupWMClass)
	line("StartupNotify", "true")

	return bw.Flush()
}

// WriteFile writes e to path. The file must not exist yet.
func WriteFile(path string, e *Entry) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := Encode(f, e); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	e.Path = path
	return nil
}
