package respond

import (
	"slices"
	"strconv"
	"strings"
)

const (
	formatJSON = "json"
	formatCBOR = "cbor"
)

var (
	jsonTypes = []string{"application/json", "application/problem+json"}
	cborTypes = []string{"application/cbor", "application/problem+cbor"}
)

type mediaRange struct {
	typ string
	q   float64
}

// parseAccept splits an Accept header into media ranges. Ranges without a
// slash are dropped; a missing or malformed q parameter means q=1.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		typ := strings.ToLower(strings.TrimSpace(params[0]))
		if !strings.Contains(typ, "/") {
			continue
		}
		q := 1.0
		for _, p := range params[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && v >= 0 && v <= 1 {
				q = v
			}
		}
		ranges = append(ranges, mediaRange{typ: typ, q: q})
	}
	return ranges
}

// quality returns the q-value the most specific matching range assigns to
// any of candidates, with that range's specificity: a problem type, then a
// base type, then application/*, then */*. Specificity is -1 when nothing matches.
func quality(ranges []mediaRange, candidates []string) (float64, int) {
	best, specificity := 0.0, -1
	for _, mr := range ranges {
		s := -1
		switch {
		case slices.Contains(candidates, mr.typ) && strings.Contains(mr.typ, "problem+"):
			s = 3
		case slices.Contains(candidates, mr.typ):
			s = 2
		case mr.typ == "application/*":
			s = 1
		case mr.typ == "*/*":
			s = 0
		}
		if s > specificity || (s == specificity && s >= 0 && mr.q > best) {
			best, specificity = mr.q, s
		}
	}
	return best, specificity
}

// selectFormat picks CBOR when the client rates it higher than JSON, or rates
// both equally but names CBOR more specifically. JSON wins every other tie.
func selectFormat(accept string) string {
	if strings.TrimSpace(accept) == "" {
		return formatJSON
	}
	ranges := parseAccept(accept)
	cborQ, cborSpec := quality(ranges, cborTypes)
	jsonQ, jsonSpec := quality(ranges, jsonTypes)
	switch {
	case cborQ > jsonQ:
		return formatCBOR
	case cborQ == jsonQ && cborQ > 0 && cborSpec > jsonSpec:
		return formatCBOR
	}
	return formatJSON
}
