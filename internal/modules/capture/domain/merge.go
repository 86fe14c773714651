package domain

import (
	"sort"

	"usagetrail/internal/platform/record"
)

// Write is one row operation produced by a flush. An Extend write continues a
// committed tail: it carries the tail's key and only the amounts added since,
// and storage adds them to whatever row is stored under that key. The stored
// row may have been rewritten by a batch replace since the tail was committed.
type Write struct {
	Session record.ScrollSession
	Extend  bool
}

// Coalesce merges same-package sessions whose gap is within mergeGap. tails
// holds the last committed record per package; a drained session continuing
// a tail is folded into it and written as an Extend under the tail's start,
// so stored rows do not depend on how the sessions were batched. Records
// never merge across dates. The returned tails hold the absolute records.
func Coalesce(tails map[string]record.ScrollSession, sessions []record.ScrollSession, mergeGap int64) ([]Write, map[string]record.ScrollSession) {
	groups := map[string][]record.ScrollSession{}
	order := []string{}
	for _, s := range sessions {
		if _, ok := groups[s.PackageName]; !ok {
			order = append(order, s.PackageName)
		}
		groups[s.PackageName] = append(groups[s.PackageName], s)
	}
	sort.Strings(order)

	next := make(map[string]record.ScrollSession, len(tails))
	for pkg, tail := range tails {
		next[pkg] = tail
	}

	out := []Write{}
	for _, pkg := range order {
		group := groups[pkg]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].SessionStart == group[j].SessionStart {
				return group[i].SessionEnd < group[j].SessionEnd
			}
			return group[i].SessionStart < group[j].SessionStart
		})

		var cur, base *record.ScrollSession
		if tail, ok := tails[pkg]; ok && continues(tail, group[0], mergeGap) {
			t, b := tail, tail
			cur, base = &t, &b
		}
		for _, s := range group {
			s := s
			if cur != nil && continues(*cur, s, mergeGap) {
				mergeInto(cur, s)
				continue
			}
			if cur != nil {
				out = append(out, emit(*cur, base))
			}
			cur, base = &s, nil
		}
		out = append(out, emit(*cur, base))
		next[pkg] = *cur
	}
	return out, next
}

func emit(cur record.ScrollSession, base *record.ScrollSession) Write {
	if base == nil {
		return Write{Session: cur}
	}
	delta := cur
	delta.ScrollAmountX -= base.ScrollAmountX
	delta.ScrollAmountY -= base.ScrollAmountY
	delta.ScrollAmount -= base.ScrollAmount
	return Write{Session: delta, Extend: true}
}

// PruneTails drops tails dated before today. Sessions never merge across
// dates, so an older tail can no longer be continued.
func PruneTails(tails map[string]record.ScrollSession, today string) {
	for pkg, tail := range tails {
		if tail.DateString < today {
			delete(tails, pkg)
		}
	}
}

func continues(cur, s record.ScrollSession, mergeGap int64) bool {
	if cur.DateString != s.DateString {
		return false
	}
	if s.SessionStart < cur.SessionStart {
		return false
	}
	return s.SessionStart-cur.SessionEnd <= mergeGap
}

func mergeInto(cur *record.ScrollSession, s record.ScrollSession) {
	cur.ScrollAmountX += s.ScrollAmountX
	cur.ScrollAmountY += s.ScrollAmountY
	cur.ScrollAmount += s.ScrollAmount
	if s.SessionEnd > cur.SessionEnd {
		cur.SessionEnd = s.SessionEnd
		cur.EndReason = s.EndReason
	}
	cur.DataType = cur.DataType.Merge(s.DataType)
}
