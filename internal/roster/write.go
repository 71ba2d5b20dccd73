package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Encode writes the header and every record to w. Lines end in CRLF when crlf
// is set. No byte-order mark is written.
func (ro *Roster) Encode(w io.Writer, crlf bool) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = crlf
	if err := cw.Write(ro.Header); err != nil {
		return err
	}
	for _, r := range ro.Records {
		if err := cw.Write(ro.Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write stores the roster at path using the host's newline convention.
// The file is written beside the target and renamed into place, so a failed
// write leaves any previous output intact.
func Write(path string, ro *Roster) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write roster: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := ro.Encode(tmp, runtime.GOOS == "windows"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write roster: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}
