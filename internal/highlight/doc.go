// Package highlight marks the bytes of a command's output that changed since
// the previous run.
//
// The comparison is positional: byte i of the new output is compared with
// byte i of the previous output and nothing else. Changed bytes are wrapped
// in [Start] and [End], which render as black text on a red background.
//
//	h := highlight.New(highlight.ModeDrop)
//	res := h.Diff("abc", []byte("abd"))
//	// res.Text == "ab" + highlight.Start + "d" + highlight.End
//
// # Invalid UTF-8
//
// Output that is not valid UTF-8 cannot be shown as text. In [ModeDrop] it
// is shown as empty and Diff reports an EncodingError; a changed byte that
// is not a character by itself is omitted. [ModePreserve] substitutes
// U+FFFD in both cases instead.
package highlight
