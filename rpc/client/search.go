package client

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/highlight"
	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

const (
	// PageSize is the number of results returned when no limit is set
	PageSize = 10

	// LogDb is the database holding the search log
	LogDb = "log_db"
)

// Weighting schemes for SetWeightingScheme
const (
	WeightBM25 = 0
	WeightBool = 1
	WeightTrad = 2
)

// Search runs queries against a search server. Query related settings
// (prefixes, cut lengths, numeric fields) are announced to the server once
// per connection and are sent again after a reconnect or a scheme change.
type Search struct {
	*Server
	xs *XS

	charset     string
	defaultOp   int
	prefix      map[string]bool
	fieldSet    bool
	resetScheme bool

	query    string
	terms    []string // nil until the terms of the default query are known
	count    int
	hasCount bool

	lastCount   int
	hlQuery     string
	highlighter *highlight.Highlighter

	curDb   string
	curDbs  []string
	lastDb  string
	lastDbs []string
	facets  map[string]map[string]int
	limit   int
	offset  int
}

func newSearch(xs *XS, conn string) *Search {
	s := &Search{
		Server:    xs.newServer(conn),
		xs:        xs,
		charset:   document.UTF8,
		defaultOp: common.QueryOpAnd,
		prefix:    make(map[string]bool),
	}
	s.onOpen(func() error {
		s.prefix = make(map[string]bool)
		s.fieldSet = false
		s.lastCount = 0
		return nil
	})
	return s
}

// --------------------------------------------------------------------------
// Settings
// --------------------------------------------------------------------------

// Charset returns the charset of queries and results
func (s *Search) Charset() string {
	return s.charset
}

// SetCharset sets the charset of queries and results, UTF-8 by default
func (s *Search) SetCharset(charset string) {
	s.charset = document.NormalizeCharset(charset)
}

// SetFuzzy makes terms of a query optional (OR) instead of required (AND)
func (s *Search) SetFuzzy(fuzzy bool) {
	s.defaultOp = common.QueryOpAnd
	if fuzzy {
		s.defaultOp = common.QueryOpOr
	}
}

// SetCutOff drops results below percent (0-100) relevance or below weight
// (0.1-25.5, 0 keeps all)
func (s *Search) SetCutOff(percent int, weight float64) error {
	percent = max(0, min(100, percent))
	w := max(0, int(weight*10)&255)
	return s.send(common.NewCommand(common.CmdSearchSetCutoff, percent, w, nil, nil))
}

// SetRequireMatchedTerm makes the server return the matched terms of every
// result document
func (s *Search) SetRequireMatchedTerm(on bool) error {
	return s.send(common.NewCommand(common.CmdSearchSetMisc, common.SearchMiscMatchedTerm, boolInt(on), nil, nil))
}

// SetWeightingScheme selects WeightBM25, WeightBool or WeightTrad
func (s *Search) SetWeightingScheme(ws int) error {
	return s.send(common.NewCommand(common.CmdSearchSetMisc, common.SearchMiscWeightScheme, ws, nil, nil))
}

// SetAutoSynonyms turns automatic synonym expansion of queries on or off
func (s *Search) SetAutoSynonyms(on bool) error {
	flag := common.ParseFlagBoolean | common.ParseFlagPhrase | common.ParseFlagLovehate
	if on {
		flag |= common.ParseFlagAutoMultiwordSynonyms
	}
	return s.send(common.NewCommandArg(common.CmdQueryParseflag, flag, nil, nil))
}

// SetSynonymScale sets the weight of synonyms, 0.01-2.55
func (s *Search) SetSynonymScale(scale float64) error {
	v := max(0, int(scale*100)&255)
	return s.send(common.NewCommand(common.CmdSearchSetMisc, common.SearchMiscSynScale, v, nil, nil))
}

// SetScwsMulti sets the compound level (0-15) used for queries set after
// this call. Levels out of range are ignored.
func (s *Search) SetScwsMulti(level int) error {
	if level < 0 || level > 15 {
		return nil
	}
	return s.send(common.NewCommand(common.CmdSearchScwsSet, common.ScwsSetMulti, level, nil, nil))
}

// SetLimit sets the page of the next Search call, limit 0 means PageSize
func (s *Search) SetLimit(limit, offset int) {
	s.limit = limit
	s.offset = offset
}

// SetDb selects the database to search in
func (s *Search) SetDb(name string) error {
	if _, err := s.execOK(common.NewCommand(common.CmdSearchSetDb, 0, 0, []byte(name), nil), common.ArgNone); err != nil {
		return err
	}
	s.lastDb, s.lastDbs = s.curDb, s.curDbs
	s.curDb, s.curDbs = name, nil
	return nil
}

// AddDb adds a database to search in
func (s *Search) AddDb(name string) error {
	if _, err := s.execOK(common.NewCommand(common.CmdSearchAddDb, 0, 0, []byte(name), nil), common.ArgNone); err != nil {
		return err
	}
	s.curDbs = append(s.curDbs, name)
	return nil
}

// restoreDb selects the databases used before the last SetDb
func (s *Search) restoreDb() error {
	dbs := s.lastDbs
	if err := s.SetDb(s.lastDb); err != nil {
		return err
	}
	for _, name := range dbs {
		if err := s.AddDb(name); err != nil {
			return err
		}
	}
	return nil
}

// MarkResetScheme makes the next query start from scratch, it is called
// when the scheme of the XS context changes
func (s *Search) MarkResetScheme() {
	s.resetScheme = true
}

// --------------------------------------------------------------------------
// Sorting, Collapsing, Facets, Ranges
// --------------------------------------------------------------------------

// SortField is one key of a multi field sort
type SortField struct {
	Name string
	Asc  bool
}

// GeoPoint is one coordinate of the origin of a distance sort
type GeoPoint struct {
	Field string
	Value float64
}

// SetSort sorts the results by the value of field. An empty field restores
// the relevance order.
func (s *Search) SetSort(field string, asc, relevanceFirst bool) error {
	if field == "" {
		return s.send(common.NewCommand(common.CmdSearchSetSort, common.SortTypeRelevance, 0, nil, nil))
	}
	meta, err := s.xs.Field(field)
	if err != nil {
		return err
	}
	typ := sortType(common.SortTypeValue, asc, relevanceFirst)
	return s.send(common.NewCommand(common.CmdSearchSetSort, typ, int(meta.Vno), nil, nil))
}

// SetMultiSort sorts by several fields, each ascending or descending. The
// whole order is reversed if reverse is set.
func (s *Search) SetMultiSort(fields []SortField, reverse, relevanceFirst bool) error {
	var buf []byte
	for _, f := range fields {
		meta, err := s.xs.Field(f.Name)
		if err != nil {
			return err
		}
		if meta.Vno != scheme.MixedVno {
			buf = append(buf, meta.Vno, byte(boolInt(f.Asc)))
		}
	}
	if len(buf) == 0 {
		return nil
	}
	typ := sortType(common.SortTypeMulti, !reverse, relevanceFirst)
	return s.send(common.NewCommand(common.CmdSearchSetSort, typ, 0, buf, nil))
}

// SetGeodistSort sorts by the distance to an origin given as two or more
// numeric fields, longitude first
func (s *Search) SetGeodistSort(origin []GeoPoint, reverse, relevanceFirst bool) error {
	if len(origin) < 2 {
		return xserror.NewEncodingError("geodist sort needs two or more fields, got %d", len(origin))
	}
	var buf []byte
	for _, p := range origin {
		meta, err := s.xs.Field(p.Field)
		if err != nil {
			return err
		}
		if !meta.IsNumeric() {
			return xserror.NewEncodingError("geodist field `%s' is not numeric", p.Field)
		}
		value := strconv.FormatFloat(p.Value, 'f', -1, 64)
		if len(value) >= 255 {
			return xserror.NewEncodingError("Value of `%s' too long", p.Field)
		}
		buf = append(buf, meta.Vno, byte(len(value)))
		buf = append(buf, value...)
	}
	typ := sortType(common.SortTypeGeodist, !reverse, relevanceFirst)
	return s.send(common.NewCommand(common.CmdSearchSetSort, typ, 0, buf, nil))
}

// SetDocOrder sorts the results by the order documents were indexed
func (s *Search) SetDocOrder(asc bool) error {
	return s.send(common.NewCommand(common.CmdSearchSetSort, sortType(common.SortTypeDocid, asc, false), 0, nil, nil))
}

func sortType(typ int, asc, relevanceFirst bool) int {
	if relevanceFirst {
		typ |= common.SortFlagRelevance
	}
	if asc {
		typ |= common.SortFlagAscending
	}
	return typ
}

// SetCollapse keeps at most num (up to 255) results per value of field. An
// empty field turns collapsing off.
func (s *Search) SetCollapse(field string, num int) error {
	vno := scheme.MixedVno
	if field != "" {
		meta, err := s.xs.Field(field)
		if err != nil {
			return err
		}
		vno = int(meta.Vno)
	}
	return s.send(common.NewCommand(common.CmdSearchSetCollapse, min(255, num), vno, nil, nil))
}

// SetFacets counts the results per value of the given string fields during
// the next search
func (s *Search) SetFacets(fields []string, exact bool) error {
	var buf []byte
	for _, name := range fields {
		meta, err := s.xs.Field(name)
		if err != nil {
			return err
		}
		if meta.Type != scheme.TypeString {
			return xserror.NewEncodingError("Field `%s' cann't be used for facets search, can only be string type", name)
		}
		buf = append(buf, meta.Vno)
	}
	return s.send(common.NewCommand(common.CmdSearchSetFacets, boolInt(exact), 0, buf, nil))
}

// Facets returns the counts per value of field from the last search
func (s *Search) Facets(field string) map[string]int {
	return s.facets[field]
}

// AllFacets returns the counts of all facet fields from the last search
func (s *Search) AllFacets() map[string]map[string]int {
	return s.facets
}

// AddRange filters the results by a value range of field. An empty from
// matches everything up to to, an empty to everything from from on.
func (s *Search) AddRange(field, from, to string) error {
	if from == "" && to == "" {
		return nil
	}
	if len(from) > 255 || len(to) > 255 {
		return xserror.NewEncodingError("Value of range is too long")
	}
	meta, err := s.xs.Field(field)
	if err != nil {
		return err
	}
	if from, err = toUTF8(from, s.charset); err != nil {
		return err
	}
	if to, err = toUTF8(to, s.charset); err != nil {
		return err
	}

	vno := int(meta.Vno)
	var cmd *common.Command
	switch {
	case from == "":
		cmd = common.NewCommand(common.CmdQueryValcmp, common.QueryOpFilter, vno, []byte(to), []byte{common.ValcmpLE})
	case to == "":
		cmd = common.NewCommand(common.CmdQueryValcmp, common.QueryOpFilter, vno, []byte(from), []byte{common.ValcmpGE})
	default:
		cmd = common.NewCommand(common.CmdQueryRange, common.QueryOpFilter, vno, []byte(from), []byte(to))
	}
	return s.send(cmd)
}

// AddWeight raises the weight of results containing term in field without
// changing which documents match
func (s *Search) AddWeight(field, term string, weight float64) error {
	return s.AddQueryTerm(field, []string{term}, common.QueryOpAndMaybe, weight)
}

// --------------------------------------------------------------------------
// Synonyms
// --------------------------------------------------------------------------

// GetAllSynonyms lists the synonyms of the project, limit 0 uses the server
// default of 100
func (s *Search) GetAllSynonyms(limit, offset int, stemmed bool) (map[string][]string, error) {
	var page []byte
	if limit > 0 {
		page = packII(offset, limit)
	}
	cmd := common.NewCommand(common.CmdSearchGetSynonyms, boolInt(stemmed), 0, nil, page)
	res, err := s.execOK(cmd, common.OkResultSynonyms)
	if err != nil {
		return nil, err
	}
	ret := make(map[string][]string)
	if len(res.Buf) == 0 {
		return ret, nil
	}
	for _, line := range strings.Split(string(res.Buf), "\n") {
		values := strings.Split(line, "\t")
		ret[values[0]] = values[1:]
	}
	return ret, nil
}

// GetSynonyms returns the synonyms of one term
func (s *Search) GetSynonyms(term string) ([]string, error) {
	if term == "" {
		return nil, nil
	}
	cmd := common.NewCommand(common.CmdSearchGetSynonyms, 2, 0, []byte(term), nil)
	res, err := s.execOK(cmd, common.OkResultSynonyms)
	if err != nil {
		return nil, err
	}
	if len(res.Buf) == 0 {
		return []string{}, nil
	}
	return strings.Split(string(res.Buf), "\n"), nil
}

// --------------------------------------------------------------------------
// Counting and Searching
// --------------------------------------------------------------------------

// Terms returns the terms of query that can be highlighted. An empty query
// uses the default query set by SetQuery.
func (s *Search) Terms(query string) ([]string, error) {
	terms, err := s.queryTerms(query)
	if err != nil {
		return nil, err
	}
	ret := make([]string, len(terms))
	for i, term := range terms {
		ret[i] = fromUTF8(term, s.charset)
	}
	return ret, nil
}

// queryTerms returns the UTF-8 terms of query
func (s *Search) queryTerms(query string) ([]string, error) {
	query, err := s.prepareQuery(query)
	if err != nil {
		return nil, err
	}
	if query == "" && s.terms != nil {
		return s.terms, nil
	}

	cmd := common.NewCommand(common.CmdQueryGetTerms, 0, s.defaultOp, []byte(query), nil)
	res, err := s.execOK(cmd, common.OkQueryTerms)
	if err != nil {
		return nil, err
	}
	ret := []string{}
	for _, term := range strings.Split(string(res.Buf), " ") {
		if term == "" || strings.Contains(term, ":") {
			continue
		}
		ret = append(ret, term)
	}
	if query == "" {
		s.terms = ret
	}
	return ret, nil
}

// Count estimates the number of results of query. An empty query uses the
// default query, its count is remembered until the query changes.
func (s *Search) Count(query string) (int, error) {
	query, err := s.prepareQuery(query)
	if err != nil {
		return 0, err
	}
	if query == "" && s.hasCount {
		return s.count, nil
	}

	compute := func() (int, error) {
		cmd := common.NewCommand(common.CmdSearchGetTotal, 0, s.defaultOp, []byte(query), nil)
		res, err := s.execOK(cmd, common.OkSearchTotal)
		if err != nil {
			return 0, err
		}
		return unpackI(res.Buf), nil
	}

	var count int
	if counts := s.xs.opts.counts; counts != nil && query != "" {
		key := fmt.Sprintf("%s|%d|%s", s.curDb, s.defaultOp, query)
		count, _, err = counts.GetOrCompute(context.Background(), key, compute)
	} else {
		count, err = compute()
	}
	if err != nil {
		return 0, err
	}

	if query == "" {
		s.count, s.hasCount = count, true
	}
	return count, nil
}

// Search returns the matching documents of query, at most PageSize unless
// SetLimit was called. The limit applies to this call only. An empty query
// uses the default query and is written to the search log.
func (s *Search) Search(query string) ([]*document.Document, error) {
	return s.search(query, true)
}

func (s *Search) search(query string, saveHighlight bool) ([]*document.Document, error) {
	if s.curDb != LogDb && saveHighlight {
		s.hlQuery = query
		s.highlighter = nil
	}
	query, err := s.prepareQuery(query)
	if err != nil {
		return nil, err
	}

	limit := s.limit
	if limit <= 0 {
		limit = PageSize
	}
	page := packII(s.offset, limit)
	s.limit, s.offset = 0, 0

	cmd := common.NewCommand(common.CmdSearchGetResult, 0, s.defaultOp, []byte(query), page)
	res, err := s.execOK(cmd, common.OkResultBegin)
	if err != nil {
		return nil, err
	}
	s.lastCount = unpackI(res.Buf)

	docs, facets, err := s.readResults(s.xs.Scheme().VnoMap())
	s.facets = facets
	if err != nil {
		return nil, err
	}

	if query == "" {
		s.count, s.hasCount = s.lastCount, true
		if s.curDb != LogDb {
			if err := s.logQuery(""); err != nil {
				Logger.Debugf("Failed to log query: %v", err)
			}
			if saveHighlight {
				if err := s.initHighlight(); err != nil {
					return nil, err
				}
			}
		}
	}
	return docs, nil
}

// LastCount returns the estimated number of results of the last search
func (s *Search) LastCount() int {
	return s.lastCount
}

// DbTotal returns the number of documents in the database
func (s *Search) DbTotal() (int, error) {
	res, err := s.execOK(common.NewCommand(common.CmdSearchDbTotal, 0, 0, nil, nil), common.OkDbTotal)
	if err != nil {
		return 0, err
	}
	return unpackI(res.Buf), nil
}

// AddSearchLog writes query wdf times to the search log
func (s *Search) AddSearchLog(query string, wdf int) error {
	var buf1 []byte
	if wdf > 1 {
		buf1 = binary.LittleEndian.AppendUint32(nil, uint32(wdf))
	}
	_, err := s.execOK(common.NewCommand(common.CmdSearchAddLog, 0, 0, []byte(query), buf1), common.OkLogged)
	return err
}

// Highlight wraps the terms of the last searched query in value with <em>
// tags. With strtr set literal terms are replaced in a single pass.
func (s *Search) Highlight(value string, strtr bool) (string, error) {
	if value == "" {
		return value, nil
	}
	if s.highlighter == nil {
		if err := s.initHighlight(); err != nil {
			return value, err
		}
	}
	return s.highlighter.Apply(value, strtr), nil
}

func (s *Search) initHighlight() error {
	tokens, err := s.queryTerms(s.hlQuery)
	if err != nil {
		return err
	}
	terms := highlight.Reconstruct(tokens)
	for i, term := range terms {
		terms[i] = fromUTF8(term, s.charset)
	}
	s.highlighter = highlight.New(terms)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// send queues a command that is never answered
func (s *Search) send(cmd *common.Command) error {
	_, err := s.execOK(cmd, common.ArgNone)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
