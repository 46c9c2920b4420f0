package tsc

import (
	"fmt"
	"io"
)

// WriteListing prints scripts with command offsets, one command per line.
func WriteListing(w io.Writer, scripts []*Script) error {
	for i, s := range scripts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "#%04d (%d commands)\n", s.ID, s.Len()); err != nil {
			return err
		}
		for off, cmd := range s.Commands {
			if _, err := fmt.Fprintf(w, "  %4d  %-8s %s\n", off, cmd.Op.Family(), cmd); err != nil {
				return err
			}
		}
	}
	return nil
}
