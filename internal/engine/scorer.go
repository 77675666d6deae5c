package engine

import "strings"

// Axis letters in intake order: E/I, S/N, T/F, J/P.
// A strictly positive axis score picks the first letter; zero and negative
// pick the second, so exact ties resolve to I, N, F, P. This matches the
// historical intake behavior and existing stored profiles depend on it.

// ScoreLetters derives the 4-letter personality code from per-question
// letter responses. Unrecognized responses are ignored.
func ScoreLetters(responses []string) string {
	var ei, sn, tf, jp int
	for _, r := range responses {
		switch strings.ToUpper(strings.TrimSpace(r)) {
		case "E":
			ei++
		case "I":
			ei--
		case "S":
			sn++
		case "N":
			sn--
		case "T":
			tf++
		case "F":
			tf--
		case "J":
			jp++
		case "P":
			jp--
		}
	}
	return ScoreAxes(ei, sn, tf, jp)
}

// ScoreAxes derives the 4-letter code from pre-summed per-axis scores.
func ScoreAxes(ei, sn, tf, jp int) string {
	pick := func(score int, pos, neg byte) byte {
		if score > 0 {
			return pos
		}
		return neg
	}
	return string([]byte{
		pick(ei, 'E', 'I'),
		pick(sn, 'S', 'N'),
		pick(tf, 'T', 'F'),
		pick(jp, 'J', 'P'),
	})
}
