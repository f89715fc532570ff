package gtf

import "fmt"

// MalformedLineError reports a line with too few columns or a coordinate
// that is not an integer.
type MalformedLineError struct {
	LineNum int
	Line    string
	Reason  string
	Err     error
}

func (e *MalformedLineError) Error() string {
	msg := "malformed GTF line"
	if e.LineNum > 0 {
		msg = fmt.Sprintf("%s %d", msg, e.LineNum)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedLineError) Unwrap() error { return e.Err }

// MalformedAttributeError reports an attribute token that cannot be split
// into a key and a value.
type MalformedAttributeError struct {
	LineNum    int
	Attributes string
	Token      string
}

func (e *MalformedAttributeError) Error() string {
	if e.LineNum > 0 {
		return fmt.Sprintf("malformed GTF attribute on line %d: %q", e.LineNum, e.Token)
	}
	return fmt.Sprintf("malformed GTF attribute: %q", e.Token)
}

// MissingFileError reports an input that does not exist or cannot be read.
// Kind names the input, e.g. "annotation" or "canonical".
type MissingFileError struct {
	Kind string
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("open %s file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error { return e.Err }

// WithLineNum sets the line number on parse errors returned by ParseLine.
// Other errors are returned unchanged.
func WithLineNum(err error, n int) error {
	switch e := err.(type) {
	case *MalformedLineError:
		e.LineNum = n
	case *MalformedAttributeError:
		e.LineNum = n
	}
	return err
}
