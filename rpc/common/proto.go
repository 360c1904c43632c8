package common

import "fmt"

// --------------------------------------------------------------------------
// Opcodes
// --------------------------------------------------------------------------

// Opcode identifies the operation carried by a Command. Opcodes with the high
// bit (0x80) set and not in the response range are fire-and-forget: the
// server never answers them.
type Opcode uint8

const (
	CmdNone Opcode = 0

	// meta commands
	CmdUse     Opcode = 1
	CmdHello   Opcode = 1
	CmdDebug   Opcode = 2
	CmdTimeout Opcode = 3
	CmdQuit    Opcode = 4

	// index commands
	CmdIndexSetDb        Opcode = 32
	CmdIndexGetDb        Opcode = 33
	CmdIndexSubmit       Opcode = 34
	CmdIndexRemove       Opcode = 35
	CmdIndexExdata       Opcode = 36
	CmdIndexCleanDb      Opcode = 37
	CmdDeleteProject     Opcode = 38
	CmdIndexCommit       Opcode = 39
	CmdIndexRebuild      Opcode = 40
	CmdFlushLogging      Opcode = 41
	CmdIndexSynonyms     Opcode = 42
	CmdIndexUserDict     Opcode = 43
	CmdSearchDbTotal     Opcode = 64
	CmdSearchGetTotal    Opcode = 65
	CmdSearchGetResult   Opcode = 66
	CmdSearchSetDb       Opcode = CmdIndexSetDb
	CmdSearchGetDb       Opcode = CmdIndexGetDb
	CmdSearchAddDb       Opcode = 68
	CmdSearchFinish      Opcode = 69
	CmdSearchDrawTpool   Opcode = 70
	CmdSearchAddLog      Opcode = 71
	CmdSearchGetSynonyms Opcode = 72
	CmdSearchScwsGet     Opcode = 73

	// query commands
	CmdQueryGetString    Opcode = 96
	CmdQueryGetTerms     Opcode = 97
	CmdQueryGetCorrected Opcode = 98
	CmdQueryGetExpanded  Opcode = 99

	// responses
	CmdOk                  Opcode = 128
	CmdErr                 Opcode = 129
	CmdSearchResultDoc     Opcode = 140
	CmdSearchResultField   Opcode = 141
	CmdSearchResultFacets  Opcode = 142
	CmdSearchResultMatched Opcode = 143

	// fire-and-forget commands
	CmdDocTerm           Opcode = 160
	CmdDocValue          Opcode = 161
	CmdDocIndex          Opcode = 162
	CmdIndexRequest      Opcode = 163
	CmdImportHeader      Opcode = 191
	CmdSearchSetSort     Opcode = 192
	CmdSearchSetCut      Opcode = 193
	CmdSearchSetNumeric  Opcode = 194
	CmdSearchSetCollapse Opcode = 195
	CmdSearchKeepalive   Opcode = 196
	CmdSearchSetFacets   Opcode = 197
	CmdSearchScwsSet     Opcode = 198
	CmdSearchSetCutoff   Opcode = 199
	CmdSearchSetMisc     Opcode = 200
	CmdQueryInit         Opcode = 224
	CmdQueryParse        Opcode = 225
	CmdQueryTerm         Opcode = 226
	CmdQueryRangeproc    Opcode = 227
	CmdQueryRange        Opcode = 228
	CmdQueryValcmp       Opcode = 229
	CmdQueryPrefix       Opcode = 230
	CmdQueryParseflag    Opcode = 231
	CmdQueryTerms        Opcode = 232
)

// opcodeNames maps every opcode to a readable name
var opcodeNames = map[Opcode]string{
	CmdUse:                 "USE",
	CmdDebug:               "DEBUG",
	CmdTimeout:             "TIMEOUT",
	CmdQuit:                "QUIT",
	CmdIndexSetDb:          "INDEX_SET_DB",
	CmdIndexGetDb:          "INDEX_GET_DB",
	CmdIndexSubmit:         "INDEX_SUBMIT",
	CmdIndexRemove:         "INDEX_REMOVE",
	CmdIndexExdata:         "INDEX_EXDATA",
	CmdIndexCleanDb:        "INDEX_CLEAN_DB",
	CmdDeleteProject:       "DELETE_PROJECT",
	CmdIndexCommit:         "INDEX_COMMIT",
	CmdIndexRebuild:        "INDEX_REBUILD",
	CmdFlushLogging:        "FLUSH_LOGGING",
	CmdIndexSynonyms:       "INDEX_SYNONYMS",
	CmdIndexUserDict:       "INDEX_USER_DICT",
	CmdSearchDbTotal:       "SEARCH_DB_TOTAL",
	CmdSearchGetTotal:      "SEARCH_GET_TOTAL",
	CmdSearchGetResult:     "SEARCH_GET_RESULT",
	CmdSearchAddDb:         "SEARCH_ADD_DB",
	CmdSearchFinish:        "SEARCH_FINISH",
	CmdSearchDrawTpool:     "SEARCH_DRAW_TPOOL",
	CmdSearchAddLog:        "SEARCH_ADD_LOG",
	CmdSearchGetSynonyms:   "SEARCH_GET_SYNONYMS",
	CmdSearchScwsGet:       "SEARCH_SCWS_GET",
	CmdQueryGetString:      "QUERY_GET_STRING",
	CmdQueryGetTerms:       "QUERY_GET_TERMS",
	CmdQueryGetCorrected:   "QUERY_GET_CORRECTED",
	CmdQueryGetExpanded:    "QUERY_GET_EXPANDED",
	CmdOk:                  "OK",
	CmdErr:                 "ERR",
	CmdSearchResultDoc:     "SEARCH_RESULT_DOC",
	CmdSearchResultField:   "SEARCH_RESULT_FIELD",
	CmdSearchResultFacets:  "SEARCH_RESULT_FACETS",
	CmdSearchResultMatched: "SEARCH_RESULT_MATCHED",
	CmdDocTerm:             "DOC_TERM",
	CmdDocValue:            "DOC_VALUE",
	CmdDocIndex:            "DOC_INDEX",
	CmdIndexRequest:        "INDEX_REQUEST",
	CmdImportHeader:        "IMPORT_HEADER",
	CmdSearchSetSort:       "SEARCH_SET_SORT",
	CmdSearchSetCut:        "SEARCH_SET_CUT",
	CmdSearchSetNumeric:    "SEARCH_SET_NUMERIC",
	CmdSearchSetCollapse:   "SEARCH_SET_COLLAPSE",
	CmdSearchKeepalive:     "SEARCH_KEEPALIVE",
	CmdSearchSetFacets:     "SEARCH_SET_FACETS",
	CmdSearchScwsSet:       "SEARCH_SCWS_SET",
	CmdSearchSetCutoff:     "SEARCH_SET_CUTOFF",
	CmdSearchSetMisc:       "SEARCH_SET_MISC",
	CmdQueryInit:           "QUERY_INIT",
	CmdQueryParse:          "QUERY_PARSE",
	CmdQueryTerm:           "QUERY_TERM",
	CmdQueryRangeproc:      "QUERY_RANGEPROC",
	CmdQueryRange:          "QUERY_RANGE",
	CmdQueryValcmp:         "QUERY_VALCMP",
	CmdQueryPrefix:         "QUERY_PREFIX",
	CmdQueryParseflag:      "QUERY_PARSEFLAG",
	CmdQueryTerms:          "QUERY_TERMS",
}

// String returns the readable name of the opcode
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(o))
}

// IsOneWay reports whether the server never answers this opcode
func (o Opcode) IsOneWay() bool {
	return o&0x80 != 0
}

// --------------------------------------------------------------------------
// Command Arguments
// --------------------------------------------------------------------------

// ArgNone disables the argument check of a dispatcher call. The value can not
// appear on the wire as real arguments are 16 bit.
const ArgNone = -1

// Slot of the body field and of "all fields" in term / sort commands
const DataVno = 255

// Sort types and flags (CmdSearchSetSort arg1)
const (
	SortTypeRelevance = 0
	SortTypeDocid     = 1
	SortTypeValue     = 2
	SortTypeMulti     = 3
	SortTypeGeodist   = 4
	SortTypeMask      = 0x3f
	SortFlagRelevance = 0x40
	SortFlagAscending = 0x80
)

// Query operators
const (
	QueryOpAnd      = 0
	QueryOpOr       = 1
	QueryOpAndNot   = 2
	QueryOpXor      = 3
	QueryOpAndMaybe = 4
	QueryOpFilter   = 5
)

// Range processors
const (
	RangeProcString = 0
	RangeProcDate   = 1
	RangeProcNumber = 2
)

// Value compare types (CmdQueryValcmp)
const (
	ValcmpLE = 0
	ValcmpGE = 1
)

// Query parser flags
const (
	ParseFlagBoolean               = 1
	ParseFlagPhrase                = 2
	ParseFlagLovehate              = 4
	ParseFlagBooleanAnyCase        = 8
	ParseFlagWildcard              = 16
	ParseFlagPureNot               = 32
	ParseFlagPartial               = 64
	ParseFlagSpellingCorrection    = 128
	ParseFlagSynonym               = 256
	ParseFlagAutoSynonyms          = 512
	ParseFlagAutoMultiwordSynonyms = 1536
)

// Prefix types (CmdQueryPrefix arg1)
const (
	PrefixNormal  = 0
	PrefixBoolean = 1
)

// Index flags (arg1 of CmdDocTerm / CmdDocIndex)
const (
	IndexWeightMask    = 0x3f
	IndexFlagWithPos   = 0x40
	IndexFlagSaveValue = 0x80
	IndexFlagCheckStem = 0x80
	ValueFlagNumeric   = 0x80
)

// Index request / synonym modes
const (
	IndexRequestAdd    = 0
	IndexRequestUpdate = 1
	IndexSynonymsAdd   = 0
	IndexSynonymsDel   = 1
)

// Search misc settings (CmdSearchSetMisc arg1)
const (
	SearchMiscSynScale     = 1
	SearchMiscMatchedTerm  = 2
	SearchMiscWeightScheme = 3
)

// Scws sub commands (arg1 of CmdSearchScwsGet / CmdSearchScwsSet)
const (
	ScwsGetVersion = 1
	ScwsGetResult  = 2
	ScwsGetTops    = 3
	ScwsHasWord    = 4
	ScwsGetMulti   = 5
	ScwsSetIgnore  = 50
	ScwsSetMulti   = 51
	ScwsSetDuality = 52
	ScwsSetDict    = 53
	ScwsAddDict    = 54
)

// ProtocolVersion is announced by CmdHello
const ProtocolVersion = 20110707
