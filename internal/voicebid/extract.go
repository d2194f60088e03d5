// Package voicebid implements the voice bidding core: extracting a monetary
// amount from a spoken transcript and driving one listen/confirm/submit
// attempt cycle against the auction's live price.
package voicebid

import (
	"regexp"
	"strconv"
	"strings"
)

// fillerPattern strips the words bidders speak around the amount.
var fillerPattern = regexp.MustCompile(`my bid is|i bid|bid|dollar|dollars|\$`)

var digitRun = regexp.MustCompile(`[0-9]+`)

// ExtractAmount parses a spoken transcript into a whole-dollar bid amount.
// Only digit runs are recognized ("150", not "a hundred fifty"); when the
// transcript contains several numbers the first one wins. The second return
// is false when no positive amount could be recognized.
func ExtractAmount(transcript string) (float64, bool) {
	clean := fillerPattern.ReplaceAllString(strings.ToLower(transcript), "")

	run := digitRun.FindString(clean)
	if run == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(run, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}
