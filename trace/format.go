package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arbiterlabs/arbiter/op"
)

// header/footer constants, spec.md §6: "header line `# trace v1
// seed=<n> strategy=<name>`; body is one decision per line ...;
// terminated by `# end`."
const (
	headerPrefix = "# trace v1"
	footerLine   = "# end"
)

// Write serializes t to w: the `# trace v1 seed=<n> strategy=<name>`
// header, one `<kind>:<op-id>:<value>` line per decision, then `# end`.
// The two-field `<kind>:<value>` line form is neither written nor read.
func Write(w io.Writer, t Trace) error {
	if _, err := fmt.Fprintf(w, "%s seed=%d strategy=%s\n", headerPrefix, t.Seed, t.Strategy); err != nil {
		return err
	}
	for _, p := range t.Points {
		if _, err := fmt.Fprintf(w, "%s:%d:%s\n", p.Kind, p.Operation, p.Value); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, footerLine); err != nil {
		return err
	}
	return nil
}

// ParseError reports a malformed trace file; it names the offending
// line so a human can locate it quickly.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d (%q): %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read parses a trace file previously produced by Write.
func Read(r io.Reader) (Trace, error) {
	var t Trace
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	if !sc.Scan() {
		return t, &ParseError{Line: 0, Text: "", Err: fmt.Errorf("empty trace file")}
	}
	lineNo++
	header := sc.Text()
	if !strings.HasPrefix(header, headerPrefix) {
		return t, &ParseError{Line: lineNo, Text: header, Err: fmt.Errorf("missing %q header", headerPrefix)}
	}
	for _, field := range strings.Fields(strings.TrimPrefix(header, headerPrefix)) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "seed":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return t, &ParseError{Line: lineNo, Text: header, Err: err}
			}
			t.Seed = n
		case "strategy":
			t.Strategy = v
		}
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == footerLine {
			return t, nil
		}
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			return t, &ParseError{Line: lineNo, Text: line, Err: fmt.Errorf("expected <kind>:<op-id>:<value>")}
		}
		opID, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return t, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		t.Points = append(t.Points, Point{
			Kind:      op.PointKind(parts[0]),
			Operation: op.ID(opID),
			Value:     parts[2],
			WallIndex: len(t.Points),
		})
	}
	if err := sc.Err(); err != nil {
		return t, &ParseError{Line: lineNo, Text: "", Err: err}
	}
	return t, &ParseError{Line: lineNo, Text: "", Err: fmt.Errorf("missing %q footer", footerLine)}
}
