package highlight

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/Iron-Ham/diffwatch/internal/errors"
)

// Highlight markers: red background, black text, then reset.
const (
	Start = "\x1b[41m\x1b[30m"
	End   = "\x1b[0m"
)

// replacement is what preserve mode shows for a changed byte that is not a
// character on its own.
const replacement = "\uFFFD"

// Mode selects what happens to bytes that are not valid UTF-8.
type Mode int

const (
	// ModeDrop discards them: undecodable output becomes empty text and a
	// changed non-ASCII byte is left out of the highlighted view.
	ModeDrop Mode = iota
	// ModePreserve replaces them with U+FFFD so the content stays visible.
	ModePreserve
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeDrop:
		return "drop"
	case ModePreserve:
		return "preserve"
	default:
		return "unknown"
	}
}

// Result is the outcome of one Diff.
type Result struct {
	// Text is the display string, with markers around changed bytes.
	Text string
	// Changed counts positions that differed or were appended.
	Changed int
	// Dropped counts changed bytes left out because they are not a character.
	Dropped int
	// Err is an *errors.EncodingError when the assembled text could not be
	// decoded. Text is empty in that case.
	Err error
}

// Highlighter produces positional diffs of command output.
type Highlighter struct {
	Mode Mode
}

// New creates a Highlighter with the given invalid UTF-8 handling.
func New(mode Mode) *Highlighter {
	return &Highlighter{Mode: mode}
}

// Decode converts raw command output to text.
func (h *Highlighter) Decode(raw []byte) (string, error) {
	return h.decode(raw, "output")
}

func (h *Highlighter) decode(raw []byte, source string) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	if h.Mode == ModePreserve {
		out, err := unicode.UTF8.NewDecoder().Bytes(raw)
		if err != nil {
			return "", errors.NewEncodingError(source, firstInvalid(raw)).WithCause(err)
		}
		return string(out), nil
	}

	return "", errors.NewEncodingError(source, firstInvalid(raw))
}

// Diff compares next against prev byte by byte at the same index. Bytes that
// match are copied; bytes that differ, and bytes past the end of prev, are
// wrapped in Start/End. There is no alignment: an insertion shifts and
// highlights everything after it.
//
// An empty prev means there is nothing to compare against, so the decoded
// output is returned without markers.
func (h *Highlighter) Diff(prev string, next []byte) Result {
	if prev == "" {
		text, err := h.Decode(next)
		return Result{Text: text, Err: err}
	}

	var res Result
	var buf bytes.Buffer
	buf.Grow(len(next))

	for i, b := range next {
		if i < len(prev) && prev[i] == b {
			buf.WriteByte(b)
			continue
		}

		res.Changed++
		if b >= utf8.RuneSelf {
			// A lone byte from a multi-byte sequence is not a character.
			if h.Mode == ModePreserve {
				buf.WriteString(Start)
				buf.WriteString(replacement)
				buf.WriteString(End)
			} else {
				res.Dropped++
			}
			continue
		}

		buf.WriteString(Start)
		buf.WriteByte(b)
		buf.WriteString(End)
	}

	res.Text, res.Err = h.decode(buf.Bytes(), "highlight")
	return res
}

// firstInvalid returns the index of the first byte that does not start a
// valid UTF-8 sequence, or -1 if b is valid.
func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
