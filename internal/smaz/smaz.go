// Package smaz implements the fixed-dictionary string compression Godot
// applies to messages inside optimized translation resources. The codebook
// is a closed contract shared with the engine: entry N here must be entry N
// in the engine's table or produced files become unreadable in game.
package smaz

import (
	"errors"
	"fmt"
)

// ErrCorruptStream reports a compressed stream that cannot be decoded.
var ErrCorruptStream = errors.New("smaz: corrupt stream")

const (
	// codeVerbatimByte escapes a single raw byte.
	codeVerbatimByte = 254
	// codeVerbatimRun escapes a run of raw bytes, length-prefixed as len-1.
	codeVerbatimRun = 255
	// maxVerbatimRun is the longest run a single escape can carry.
	maxVerbatimRun = 256
)

// codebook is the fixed substitution table. Codes 0–253 resolve to these
// entries; 254 and 255 are the verbatim escapes above.
var codebook = [254]string{
	" ", "the", "e", "t", "a", "of", "o", "and", "i", "n", "s", "e ", "r", " th",
	" t", "in", "he", "th", "h", "he ", "to", "\r\n", "l", "s ", "d", " a", "an",
	"er", "c", " o", "d ", "on", " of", "re", "of ", "t ", ", ", "is", "u", "at",
	"   ", "n ", "or", "which", "f", "m", "as", "it", "that", "\n", "was", "en",
	"  ", " w", "es", " an", " i", "\r", "f ", "g", "p", "nd", " s", "nd ", "ed ",
	"w", "ed", "http://", "for", "te", "ing", "y ", "The", " c", "ti", "r ", "his",
	"st", " in", "ar", "nt", ",", " to", "y", "ng", " h", "with", "le", "al", "to ",
	"b", "ou", "be", "were", " b", "se", "o ", "ent", "ha", "ng ", "their", "\"",
	"hi", "from", " f", "in ", "de", "ion", "me", "v", ".", "ve", "all", "re ",
	"ri", "ro", "is ", "co", "f t", "are", "ea", ". ", "her", " m", "er ", " p",
	"es ", "by", "they", "di", "ra", "ic", "not", "s, ", "d t", "at ", "ce", "la",
	"h ", "ne", "as ", "tio", "on ", "n t", "io", "we", " a ", "om", ", a", "s o",
	"ur", "li", "ll", "ch", "had", "this", "e t", "g ", "e\r\n", " wh", "ere",
	" co", "e o", "a ", "us", " d", "ss", "\n\r\n", "\r\n\r", "=\"", " be", " e",
	"s a", "ma", "one", "t t", "or ", "but", "el", "so", "l ", "e s", "s,", "no",
	"ter", " io", "ons", "res", "ing ", "men", "th ", "pe", "nce", "tho", "every",
	"ould", "out", "ver", "pro", "ati", "ack", "est", "ill", "ity", "ent ", "our",
	"ld ", "ay", "ho", "im", "ect", "ough", "ess", "ant", "ain", "ound", "age",
	"ice", "has", "ite", "ble", "ine", "ive", "ure", "ost", "per", "ort", "ers",
	"ome", "end", "you", "art", "ous", "use", "ange", "how", "than", "its", "ry",
	"ated", "ell", "ast", "ud", "ith", "ide", "ake", "ally", "ep", "ab", "ies",
	"ight", "ward", "und", "ans",
}

var (
	codeFor  map[string]byte
	maxEntry int
)

func init() {
	codeFor = make(map[string]byte, len(codebook))
	for i, s := range codebook {
		codeFor[s] = byte(i)
		if len(s) > maxEntry {
			maxEntry = len(s)
		}
	}
}

// Decompress expands a compressed stream back into raw bytes. It fails with
// an error wrapping ErrCorruptStream when a verbatim unit overruns the input.
func Decompress(src []byte) ([]byte, error) {
	dst := make([]byte, 0, len(src)*2)
	for i := 0; i < len(src); {
		switch c := src[i]; c {
		case codeVerbatimByte:
			if i+1 >= len(src) {
				return nil, fmt.Errorf("%w: truncated verbatim byte at offset %d", ErrCorruptStream, i)
			}
			dst = append(dst, src[i+1])
			i += 2
		case codeVerbatimRun:
			if i+1 >= len(src) {
				return nil, fmt.Errorf("%w: truncated verbatim run at offset %d", ErrCorruptStream, i)
			}
			n := int(src[i+1]) + 1
			if i+2+n > len(src) {
				return nil, fmt.Errorf("%w: verbatim run of %d bytes overruns input at offset %d", ErrCorruptStream, n, i)
			}
			dst = append(dst, src[i+2:i+2+n]...)
			i += 2 + n
		default:
			dst = append(dst, codebook[c]...)
			i++
		}
	}
	return dst, nil
}

// Compress encodes raw bytes with a greedy longest-match scan over the
// codebook. Bytes with no codebook match accumulate into a verbatim run that
// is flushed when a match is found, the run fills up, or the input ends.
// The output is deterministic for a given input.
func Compress(src []byte) []byte {
	dst := make([]byte, 0, len(src))
	verbatim := make([]byte, 0, maxVerbatimRun)

	flush := func() {
		if len(verbatim) == 0 {
			return
		}
		if len(verbatim) == 1 {
			dst = append(dst, codeVerbatimByte, verbatim[0])
		} else {
			dst = append(dst, codeVerbatimRun, byte(len(verbatim)-1))
			dst = append(dst, verbatim...)
		}
		verbatim = verbatim[:0]
	}

	for i := 0; i < len(src); {
		code, n := longestMatch(src[i:])
		if n > 0 {
			flush()
			dst = append(dst, code)
			i += n
			continue
		}
		verbatim = append(verbatim, src[i])
		if len(verbatim) == maxVerbatimRun {
			flush()
		}
		i++
	}
	flush()
	return dst
}

// longestMatch returns the code of the longest codebook entry prefixing src,
// or n == 0 when nothing matches. Longest match wins; the codebook has no
// duplicate entries, so no further tie-break is needed.
func longestMatch(src []byte) (code byte, n int) {
	limit := maxEntry
	if len(src) < limit {
		limit = len(src)
	}
	for n := limit; n > 0; n-- {
		if c, ok := codeFor[string(src[:n])]; ok {
			return c, n
		}
	}
	return 0, 0
}
