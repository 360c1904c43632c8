package client

import (
	"math"
	"strings"

	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/rpc/common"
)

// Hot query orders
const (
	HotTotal   = "total"
	HotLastnum = "lastnum"
	HotCurrnum = "currnum"
)

// HotQuery is one entry of the search log with its number of searches
type HotQuery struct {
	Query string
	Count int
}

// HotQuery returns the most searched queries of the search log ordered by
// typ: HotTotal (all time), HotLastnum (last period) or HotCurrnum (current
// period). limit is clipped to 1-50.
func (s *Search) HotQuery(limit int, typ string) ([]HotQuery, error) {
	limit = max(1, min(50, limit))
	if typ != HotLastnum && typ != HotCurrnum {
		typ = HotTotal
	}

	if err := s.xs.SetScheme(scheme.Logger()); err != nil {
		return nil, err
	}
	defer s.xs.RestoreScheme()

	var ret []HotQuery
	err := func() error {
		if err := s.SetDb(LogDb); err != nil {
			return err
		}
		s.SetLimit(limit, 0)
		docs, err := s.search(typ+":1", true)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			ret = append(ret, HotQuery{Query: doc.Get("body"), Count: atoi(doc.Get(typ))})
		}
		return nil
	}()
	if err = ignoreCodes(err, common.ErrXapian); err != nil {
		return nil, err
	}
	if err := s.restoreDb(); err != nil {
		return nil, err
	}
	return ret, nil
}

// RelatedQuery returns up to limit (1-20) logged queries similar to query.
// An empty query uses the default query. Queries addressing fields other
// than the default ones have no related queries.
func (s *Search) RelatedQuery(query string, limit int) ([]string, error) {
	limit = max(1, min(20, limit))
	if query == "" {
		query = s.query
	}
	query = s.cleanFieldQuery(query)
	if strings.TrimSpace(query) == "" || strings.Contains(query, ":") {
		return []string{}, nil
	}

	op := s.defaultOp
	if err := s.xs.SetScheme(scheme.Logger()); err != nil {
		return nil, err
	}
	defer func() {
		s.xs.RestoreScheme()
		s.defaultOp = op
	}()

	ret := []string{}
	err := func() error {
		if err := s.SetDb(LogDb); err != nil {
			return err
		}
		s.SetFuzzy(true)
		s.SetLimit(limit+1, 0)
		docs, err := s.search(query, true)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			doc.SetCharset(s.charset)
			body := doc.Get("body")
			if strings.EqualFold(body, query) {
				continue
			}
			ret = append(ret, body)
			if len(ret) == limit {
				break
			}
		}
		return nil
	}()
	if err = ignoreCodes(err, common.ErrXapian); err != nil {
		return nil, err
	}
	if err := s.restoreDb(); err != nil {
		return nil, err
	}
	return ret, nil
}

// ExpandedQuery returns up to limit (1-20) logged queries starting with
// query, used for search suggestions while typing
func (s *Search) ExpandedQuery(query string, limit int) ([]string, error) {
	limit = max(1, min(20, limit))
	buf, err := toUTF8(query, s.charset)
	if err != nil {
		return nil, err
	}

	ret := []string{}
	err = func() error {
		cmd := common.NewCommand(common.CmdQueryGetExpanded, limit, 0, []byte(buf), nil)
		if _, err := s.execOK(cmd, common.OkResultBegin); err != nil {
			return err
		}
		for {
			res, err := s.GetRespond()
			if err != nil {
				return err
			}
			if res.Cmd == common.CmdSearchResultField {
				ret = append(ret, fromUTF8(string(res.Buf), s.charset))
				continue
			}
			return checkRespond(res, common.OkResultEnd, common.CmdOk, " in search")
		}
	}()
	if err = ignoreCodes(err, common.ErrXapian); err != nil {
		return nil, err
	}
	return ret, nil
}

// CorrectedQuery returns spelling corrections of query. An empty query
// uses the default query, which is only corrected if it found few results
// (at most 0.1% of the database).
func (s *Search) CorrectedQuery(query string) ([]string, error) {
	ret := []string{}
	err := func() error {
		if query == "" {
			if s.hasCount && s.count > 0 {
				total, err := s.DbTotal()
				if err != nil {
					return err
				}
				if float64(s.count) > math.Ceil(float64(total)*0.001) {
					return nil
				}
			}
			query = s.cleanFieldQuery(s.query)
		}
		if strings.TrimSpace(query) == "" || strings.Contains(query, ":") {
			return nil
		}

		buf, err := toUTF8(query, s.charset)
		if err != nil {
			return err
		}
		res, err := s.execOK(common.NewCommand(common.CmdQueryGetCorrected, 0, 0, []byte(buf), nil), common.OkQueryCorrected)
		if err != nil {
			return err
		}
		if len(res.Buf) > 0 {
			ret = strings.Split(fromUTF8(string(res.Buf), s.charset), "\n")
		}
		return nil
	}()
	if err = ignoreCodes(err, common.ErrXapian); err != nil {
		return nil, err
	}
	return ret, nil
}

// logQuery writes the purified terms of query to the search log. Only
// queries that found something are logged, queries using boolean operators
// are skipped. An empty query logs the default query.
func (s *Search) logQuery(query string) error {
	var (
		terms []string
		err   error
	)
	if query != "" {
		terms, err = s.queryTerms(query)
	} else {
		query = s.query
		if s.lastCount == 0 ||
			(s.defaultOp == common.QueryOpOr && strings.Index(query, " ") > 0) ||
			strings.Index(query, " OR ") > 0 ||
			strings.Index(query, " NOT ") > 0 ||
			strings.Index(query, " XOR ") > 0 {
			return nil
		}
		terms, err = s.queryTerms("")
	}
	if err != nil {
		return err
	}
	if query, err = toUTF8(query, s.charset); err != nil {
		return err
	}

	log := purifyQuery(query, terms)
	if len(log) < 2 || (len(log) == 3 && log[0] > 0x80) {
		return nil
	}
	return s.AddSearchLog(log, 1)
}

// purifyQuery joins the terms in the order they appear in query. Adjacent
// terms are glued, terms overlapping by one CJK character are merged. At
// most three gaps are kept.
func purifyQuery(query string, terms []string) string {
	var (
		log      strings.Builder
		pos, gap int
	)
	for _, term := range terms {
		from := pos
		if pos > 3 && len(term) == 6 {
			from = pos - 3
		}
		idx := strings.Index(query[from:], term)
		if idx < 0 {
			continue
		}
		idx += from

		switch {
		case idx == pos:
			log.WriteString(term)
		case idx < pos:
			log.WriteString(term[3:])
		default:
			gap++
			if gap > 3 || log.Len() > 42 {
				return strings.TrimSpace(log.String())
			}
			log.WriteString(" " + term)
		}
		pos = idx + len(term)
	}
	return strings.TrimSpace(log.String())
}
