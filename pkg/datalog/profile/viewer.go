package profile

import (
	stdio "io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// Viewer is the interactive terminal paging view (spec section C.1,
// "interactive mode is the supplemented feature"), adapted from
// go-corset's pkg/util/termio raw-mode terminal idiom and the refresh
// loop in original_source/samples/path/driver_ncurses.cpp, which likewise
// redraws a table of relations on each keypress rather than streaming
// output.
type Viewer struct {
	recorder *Recorder
	out      stdio.Writer
	cursor   int
}

// NewViewer constructs a Viewer over recorder, writing to stdout.
func NewViewer(recorder *Recorder) *Viewer {
	return &Viewer{recorder: recorder, out: os.Stdout}
}

// Run switches the controlling terminal into raw mode and pages through
// the recorder's relation sizes until the user presses 'q'. It returns an
// error if stdout is not a terminal.
func (v *Viewer) Run() error {
	fd := int(os.Stdout.Fd())

	if !term.IsTerminal(fd) {
		return stdioErrNotATerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}

	defer term.Restore(fd, state)

	var key [1]byte

	for {
		v.render()

		if _, err := os.Stdin.Read(key[:]); err != nil {
			return err
		}

		switch key[0] {
		case 'q', 'Q', 0x03: // 0x03 is ^C
			return nil
		case 'j':
			v.cursor++
		case 'k':
			if v.cursor > 0 {
				v.cursor--
			}
		}
	}
}

func (v *Viewer) render() {
	v.out.Write([]byte("\x1b[2J\x1b[H")) //nolint:errcheck

	relations := v.recorder.LargestRelations()
	if v.cursor >= len(relations) {
		v.cursor = max(0, len(relations)-1)
	}

	nameWidth, sizeWidth := columnWidths(relations)

	writeLine(v.out, "souffle profile  (j/k to move, q to quit)\r\n")
	writeLine(v.out, "\r\n")

	for i, stat := range relations {
		marker := "  "
		if i == v.cursor {
			marker = "> "
		}

		writeLine(v.out, marker+padRight(stat.Relation, nameWidth)+"  "+padLeft(strconv.Itoa(stat.Size), sizeWidth)+"\r\n")
	}
}

func writeLine(w stdio.Writer, s string) {
	w.Write([]byte(s)) //nolint:errcheck
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}

	return s
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = " " + s
	}

	return s
}

type notATerminalError struct{}

func (notATerminalError) Error() string { return "profile: stdout is not a terminal" }

var stdioErrNotATerminal = notATerminalError{}
