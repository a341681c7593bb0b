package profile

import (
	"fmt"
	"io"
	"strconv"
)

// WriteReport renders a non-interactive flat text report (spec section
// C.1: "profile=path mode just writes a flat text report"), one line per
// relation ordered by descending size followed by the recorded timers.
func (r *Recorder) WriteReport(w io.Writer) error {
	relations := r.LargestRelations()
	widthName, widthSize := columnWidths(relations)

	if _, err := fmt.Fprintf(w, "%-*s  %*s\n", widthName, "RELATION", widthSize, "SIZE"); err != nil {
		return err
	}

	for _, stat := range relations {
		if _, err := fmt.Fprintf(w, "%-*s  %*d\n", widthName, stat.Relation, widthSize, stat.Size); err != nil {
			return err
		}
	}

	timers := r.TimerStats()
	if len(timers) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, t := range timers {
		if _, err := fmt.Fprintf(w, "%s: %s\n", t.Message, t.Elapsed); err != nil {
			return err
		}
	}

	return nil
}

func columnWidths(relations []RelationStat) (int, int) {
	nameWidth := len("RELATION")
	sizeWidth := len("SIZE")

	for _, stat := range relations {
		if n := len(stat.Relation); n > nameWidth {
			nameWidth = n
		}

		if n := len(strconv.Itoa(stat.Size)); n > sizeWidth {
			sizeWidth = n
		}
	}

	return nameWidth, sizeWidth
}
