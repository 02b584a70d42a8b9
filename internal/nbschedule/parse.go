package nbschedule

import (
	"strconv"
	"strings"

	"nodebrain/internal/nberrors"
)

// Parse reads the literal segment-list format "a_b:c_d,e_f,..." (spec
// §4.7): an optional "domainStart_domainEnd:" prefix giving the known
// domain, followed by comma-separated "start_end" True segments. Without
// a colon, the whole string is the segment list and the domain is
// derived from the segments' own extremes (FromSegments).
func Parse(s string) (*BFI, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return New(), nil
	}

	domainText := ""
	segText := s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		domainText = s[:i]
		segText = s[i+1:]
	}

	segs, err := parseSegmentList(segText)
	if err != nil {
		return nil, err
	}

	if domainText == "" {
		return FromSegments(segs...), nil
	}
	start, end, err := parsePair(domainText)
	if err != nil {
		return nil, nberrors.Userf("invalid schedule domain %q: %v", domainText, err)
	}
	return &BFI{hasDomain: true, domStart: start, domEnd: end, segs: connect(segs, false)}, nil
}

func parseSegmentList(s string) ([]Segment, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		start, end, err := parsePair(p)
		if err != nil {
			return nil, nberrors.Userf("invalid schedule segment %q: %v", p, err)
		}
		segs = append(segs, Segment{start, end})
	}
	return segs, nil
}

func parsePair(s string) (int64, int64, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '_')
	if i < 0 {
		return 0, 0, strconv.ErrSyntax
	}
	start, err := strconv.ParseInt(strings.TrimSpace(s[:i]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	end, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
