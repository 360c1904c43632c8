package common

import "fmt"

// --------------------------------------------------------------------------
// Error Codes (arg of CmdErr responses)
// --------------------------------------------------------------------------

const (
	ErrUnknown      = 600
	ErrNoProject    = 401
	ErrTooLong      = 402
	ErrInvalidChar  = 403
	ErrEmpty        = 404
	ErrNoAction     = 405
	ErrRunning      = 406
	ErrRebuilding   = 407
	ErrWrongPlace   = 450
	ErrWrongFormat  = 451
	ErrEmptyQuery   = 452
	ErrTimeout      = 501
	ErrIOErr        = 502
	ErrNoMem        = 503
	ErrBusy         = 504
	ErrUnimp        = 505
	ErrNoDb         = 506
	ErrDbLocked     = 507
	ErrCreateHome   = 508
	ErrInvalidHome  = 509
	ErrRemoveHome   = 510
	ErrRemoveDb     = 511
	ErrStat         = 512
	ErrOpenFile     = 513
	ErrTaskCanceled = 514
	ErrXapian       = 515
)

// errMessages holds the messages the server sends along with each error code
var errMessages = map[int]string{
	ErrUnknown:      "Unknown internal error",
	ErrNoProject:    "Project name not specified",
	ErrTooLong:      "Data/Name too long",
	ErrInvalidChar:  "Data/Name contains invalid characters",
	ErrEmpty:        "Data/Name empty",
	ErrNoAction:     "No action until timeout",
	ErrRunning:      "Import process running",
	ErrRebuilding:   "DB has been rebuilding",
	ErrWrongPlace:   "Use the command in the wrong place",
	ErrWrongFormat:  "Command format is incorrect",
	ErrEmptyQuery:   "Empty query",
	ErrTimeout:      "IO timeout",
	ErrIOErr:        "IO error",
	ErrNoMem:        "Out of memory",
	ErrBusy:         "Server is too busy",
	ErrUnimp:        "Command not implemented",
	ErrNoDb:         "None of database avaiable",
	ErrDbLocked:     "Database is locked, cann't be removed",
	ErrCreateHome:   "Failed to create home directoy of the project",
	ErrInvalidHome:  "Invalid home directory of the project",
	ErrRemoveHome:   "Failed to remove home directoy of the project",
	ErrRemoveDb:     "Failed to remove database directory or file",
	ErrStat:         "Failed to stat the file or directory",
	ErrOpenFile:     "Failed to open file",
	ErrTaskCanceled: "Task is canceled due to timeout/error",
	ErrXapian:       "Xapian ERROR",
}

// ErrMessage returns the server message of an error code. An empty string is
// returned for unknown codes.
func ErrMessage(code int) string {
	return errMessages[code]
}

// --------------------------------------------------------------------------
// OK Codes (arg of CmdOk responses)
// --------------------------------------------------------------------------

const (
	OkInfo           = 200
	OkProject        = 201
	OkQueryString    = 202
	OkDbTotal        = 203
	OkQueryTerms     = 204
	OkQueryCorrected = 205
	OkSearchTotal    = 206
	OkResultBegin    = OkSearchTotal
	OkResultEnd      = 207
	OkTimeoutSet     = 208
	OkFinished       = 209
	OkLogged         = 210
	OkRqstFinished   = 250
	OkDbChanged      = 251
	OkDbInfo         = 252
	OkDbClean        = 253
	OkProjectAdd     = 254
	OkProjectDel     = 255
	OkDbCommited     = 256
	OkDbRebuild      = 257
	OkLogFlushed     = 258
	OkDictSaved      = 259
	OkResultSynonyms = 280
	OkScwsResult     = 290
	OkScwsTops       = 291
)

var okNames = map[int]string{
	OkInfo:           "INFO",
	OkProject:        "PROJECT",
	OkQueryString:    "QUERY_STRING",
	OkDbTotal:        "DB_TOTAL",
	OkQueryTerms:     "QUERY_TERMS",
	OkQueryCorrected: "QUERY_CORRECTED",
	OkSearchTotal:    "SEARCH_TOTAL",
	OkResultEnd:      "RESULT_END",
	OkTimeoutSet:     "TIMEOUT_SET",
	OkFinished:       "FINISHED",
	OkLogged:         "LOGGED",
	OkRqstFinished:   "RQST_FINISHED",
	OkDbChanged:      "DB_CHANGED",
	OkDbInfo:         "DB_INFO",
	OkDbClean:        "DB_CLEAN",
	OkProjectAdd:     "PROJECT_ADD",
	OkProjectDel:     "PROJECT_DEL",
	OkDbCommited:     "DB_COMMITED",
	OkDbRebuild:      "DB_REBUILD",
	OkLogFlushed:     "LOG_FLUSHED",
	OkDictSaved:      "DICT_SAVED",
	OkResultSynonyms: "RESULT_SYNONYMS",
	OkScwsResult:     "SCWS_RESULT",
	OkScwsTops:       "SCWS_TOPS",
}

// ArgName returns a readable name for the argument of a response frame
func ArgName(cmd Opcode, arg int) string {
	switch cmd {
	case CmdOk:
		if name, ok := okNames[arg]; ok {
			return name
		}
	case CmdErr:
		if msg, ok := errMessages[arg]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%d", arg)
}
