package client

import (
	"errors"
	"os"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

// DefaultBufferMB is the send buffer size used by bulk imports
const DefaultBufferMB = 4

// Index rebuild phases (arg1 of CmdIndexRebuild)
const (
	rebuildBegin = 0
	rebuildEnd   = 1
	rebuildStop  = 2
)

// Index talks to the index server of a project. Every command is replayed
// on the replica servers added with AddServer after the primary accepted
// it.
type Index struct {
	*Server
	xs       *XS
	replicas []*Server
	buf      []byte
	bufSize  int
	rebuild  bool
}

func newIndex(xs *XS, conn string) *Index {
	return &Index{Server: xs.newServer(conn), xs: xs}
}

// AddServer opens a replica connection. Replicas receive a copy of every
// command sent to the primary server.
func (idx *Index) AddServer(conn string) (*Server, error) {
	srv := idx.xs.newServer(conn)
	if err := srv.Open(conn); err != nil {
		return nil, err
	}
	idx.replicas = append(idx.replicas, srv)
	return srv, nil
}

// Replicas returns the replica connections
func (idx *Index) Replicas() []*Server {
	return idx.replicas
}

// ExecCommand runs the command on the primary server and then on every
// replica. The response of the primary is returned, replica failures are
// returned joined as *xserror.ReplicaError next to it. Replicas are not
// contacted when the primary fails.
func (idx *Index) ExecCommand(cmd *common.Command, resArg int, resCmd common.Opcode) (*common.Command, error) {
	res, err := idx.Server.ExecCommand(cmd, resArg, resCmd)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, srv := range idx.replicas {
		if _, rerr := srv.ExecCommand(cmd, resArg, resCmd); rerr != nil {
			Logger.Warningf("Replica %s failed on %s: %v", srv.ConnString(), cmd.Cmd, rerr)
			errs = append(errs, &xserror.ReplicaError{Endpoint: srv.ConnString(), Err: rerr})
		}
	}
	return res, errors.Join(errs...)
}

func (idx *Index) execOK(cmd *common.Command, resArg int) (*common.Command, error) {
	return idx.ExecCommand(cmd, resArg, common.CmdOk)
}

// --------------------------------------------------------------------------
// Documents
// --------------------------------------------------------------------------

// Add adds a document without removing an older document with the same
// primary key
func (idx *Index) Add(doc *document.Document) error {
	return idx.update(doc, true)
}

// Update adds a document and replaces the documents with the same primary
// key
func (idx *Index) Update(doc *document.Document) error {
	return idx.update(doc, false)
}

func (idx *Index) update(doc *document.Document, add bool) error {
	doc.BeforeSubmit(idx.xs.DefaultCharset())

	fs := idx.xs.Scheme()
	fid := fs.FieldID()
	key, ok := doc.Lookup(fid.Name)
	if !ok || key == "" {
		return xserror.NewEncodingError("Missing value of primary key (FIELD:%s)", fid.Name)
	}

	cmds, err := encodeDocument(doc, fs, idx.xs.Tokenizers(), key, add)
	if err != nil {
		return err
	}

	if idx.bufSize > 0 {
		return idx.appendBuffer(joinCommands(cmds))
	}
	last := len(cmds) - 1
	for _, cmd := range cmds[:last] {
		if _, err := idx.execOK(cmd, common.ArgNone); err != nil {
			return err
		}
	}
	_, err = idx.execOK(cmds[last], common.OkRqstFinished)
	return err
}

// Del removes the documents having one of the terms in field. An empty field
// name selects the primary key field.
func (idx *Index) Del(terms []string, field string) error {
	fs := idx.xs.Scheme()
	meta := fs.FieldID()
	if field != "" {
		var err error
		if meta, err = fs.Field(field); err != nil {
			return err
		}
	}

	charset := idx.xs.DefaultCharset()
	seen := make(map[string]bool, len(terms))
	var cmds []*common.Command
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		converted, err := toUTF8(term, charset)
		if err != nil {
			return err
		}
		cmds = append(cmds, common.NewCommand(common.CmdIndexRemove, 0, int(meta.Vno), []byte(strings.ToLower(converted)), nil))
	}

	switch {
	case len(cmds) == 0:
		return nil
	case idx.bufSize > 0:
		return idx.appendBuffer(joinCommands(cmds))
	case len(cmds) == 1:
		_, err := idx.execOK(cmds[0], common.OkRqstFinished)
		return err
	default:
		cmd := common.NewCommand(common.CmdIndexExdata, 0, 0, joinCommands(cmds), nil)
		_, err := idx.execOK(cmd, common.OkRqstFinished)
		return err
	}
}

// AddExdata submits pre-encoded commands. data must start with one of
// IMPORT_HEADER, INDEX_REQUEST, INDEX_SYNONYMS, INDEX_REMOVE or
// INDEX_EXDATA.
func (idx *Index) AddExdata(data []byte) error {
	var first common.Opcode
	if len(data) > 0 {
		first = common.Opcode(data[0])
	}
	switch first {
	case common.CmdImportHeader, common.CmdIndexRequest, common.CmdIndexSynonyms,
		common.CmdIndexRemove, common.CmdIndexExdata:
	default:
		return xserror.NewEncodingError("Invalid start command of exdata (CMD:%d)", uint8(first))
	}

	cmd := common.NewCommand(common.CmdIndexExdata, 0, 0, data, nil)
	_, err := idx.execOK(cmd, common.OkRqstFinished)
	return err
}

// AddExdataFile submits the content of a file written by a file sink
func (idx *Index) AddExdataFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &xserror.EncodingError{Msg: "Failed to read exdata from file", Err: err}
	}
	return idx.AddExdata(data)
}

// Clean removes all documents of the project
func (idx *Index) Clean() error {
	_, err := idx.execOK(common.NewCommand(common.CmdIndexCleanDb, 0, 0, nil, nil), common.OkDbClean)
	return err
}

// --------------------------------------------------------------------------
// Synonyms and Dictionary
// --------------------------------------------------------------------------

// AddSynonym adds synonym as a synonym of raw
func (idx *Index) AddSynonym(raw, synonym string) error {
	if raw == "" || synonym == "" {
		return nil
	}
	return idx.synonym(common.IndexSynonymsAdd, raw, synonym)
}

// DelSynonym removes one synonym of raw, or all of them if synonym is empty
func (idx *Index) DelSynonym(raw, synonym string) error {
	if raw == "" {
		return nil
	}
	return idx.synonym(common.IndexSynonymsDel, raw, synonym)
}

func (idx *Index) synonym(op int, raw, synonym string) error {
	cmd := common.NewCommand(common.CmdIndexSynonyms, op, 0, []byte(raw), []byte(synonym))
	if idx.bufSize > 0 {
		return idx.appendBuffer(cmd.Serialize())
	}
	_, err := idx.execOK(cmd, common.OkRqstFinished)
	return err
}

// SetScwsMulti sets the compound level (0-15) of the segmenter used for
// indexing. Levels out of range are ignored.
func (idx *Index) SetScwsMulti(level int) error {
	if level < 0 || level > 15 {
		return nil
	}
	cmd := common.NewCommand(common.CmdSearchScwsSet, common.ScwsSetMulti, level, nil, nil)
	_, err := idx.execOK(cmd, common.ArgNone)
	return err
}

// GetScwsMulti returns the compound level of the segmenter
func (idx *Index) GetScwsMulti() (int, error) {
	cmd := common.NewCommand(common.CmdSearchScwsGet, common.ScwsGetMulti, 0, nil, nil)
	res, err := idx.execOK(cmd, common.OkInfo)
	if res == nil {
		return 0, err
	}
	return atoi(string(res.Buf)), err
}

// GetCustomDict returns the custom dictionary of the project
func (idx *Index) GetCustomDict() (string, error) {
	res, err := idx.execOK(common.NewCommand(common.CmdIndexUserDict, 0, 0, nil, nil), common.OkInfo)
	if res == nil {
		return "", err
	}
	return string(res.Buf), err
}

// SetCustomDict replaces the custom dictionary of the project
func (idx *Index) SetCustomDict(content string) error {
	cmd := common.NewCommand(common.CmdIndexUserDict, 1, 0, []byte(content), nil)
	_, err := idx.execOK(cmd, common.OkDictSaved)
	return err
}

// --------------------------------------------------------------------------
// Buffer
// --------------------------------------------------------------------------

// OpenBuffer collects documents in a local buffer of sizeMB megabytes that
// is submitted as one EXDATA command whenever it is full. A pending buffer
// is submitted first. Size 0 turns buffering off.
func (idx *Index) OpenBuffer(sizeMB int) error {
	if err := idx.flushBuffer(); err != nil {
		return err
	}
	idx.bufSize = sizeMB << 20
	return nil
}

// CloseBuffer submits the pending buffer and turns buffering off
func (idx *Index) CloseBuffer() error {
	return idx.OpenBuffer(0)
}

func (idx *Index) appendBuffer(data []byte) error {
	idx.buf = append(idx.buf, data...)
	if len(idx.buf) >= idx.bufSize {
		return idx.flushBuffer()
	}
	return nil
}

// flushBuffer submits the pending buffer. It is kept for a retry unless the
// primary server accepted it.
func (idx *Index) flushBuffer() error {
	if len(idx.buf) == 0 {
		return nil
	}
	err := idx.AddExdata(idx.buf)
	if err == nil || errors.Is(err, xserror.ErrReplica) {
		idx.buf = nil
	}
	return err
}

// --------------------------------------------------------------------------
// Rebuild and Maintenance
// --------------------------------------------------------------------------

// BeginRebuild starts a rebuild: documents go to a new database that
// replaces the current one when EndRebuild is called
func (idx *Index) BeginRebuild() error {
	if _, err := idx.rebuildCmd(rebuildBegin); err != nil {
		return err
	}
	idx.rebuild = true
	return nil
}

// EndRebuild finishes a rebuild started by this connection
func (idx *Index) EndRebuild() error {
	if !idx.rebuild {
		return nil
	}
	idx.rebuild = false
	_, err := idx.rebuildCmd(rebuildEnd)
	return err
}

// StopRebuild aborts a running rebuild. It is not an error if no rebuild is
// running.
func (idx *Index) StopRebuild() error {
	_, err := idx.rebuildCmd(rebuildStop)
	if err == nil {
		idx.rebuild = false
	}
	return ignoreCodes(err, common.ErrWrongPlace)
}

// Rebuilding reports whether this connection started a rebuild
func (idx *Index) Rebuilding() bool {
	return idx.rebuild
}

func (idx *Index) rebuildCmd(phase int) (*common.Command, error) {
	return idx.execOK(common.NewCommand(common.CmdIndexRebuild, phase, 0, nil, nil), common.OkDbRebuild)
}

// SetDb selects the database documents are written to
func (idx *Index) SetDb(name string) error {
	_, err := idx.execOK(common.NewCommand(common.CmdIndexSetDb, 0, 0, []byte(name), nil), common.OkDbChanged)
	return err
}

// FlushLogging asks the server to write the search log now. It returns
// false if the server is busy.
func (idx *Index) FlushLogging() (bool, error) {
	_, err := idx.execOK(common.NewCommand(common.CmdFlushLogging, 0, 0, nil, nil), common.OkLogFlushed)
	if isCode(err, common.ErrBusy) {
		return false, nil
	}
	return err == nil, err
}

// FlushIndex asks the server to commit pending documents now. It returns
// false if the server is busy or an import is running.
func (idx *Index) FlushIndex() (bool, error) {
	_, err := idx.execOK(common.NewCommand(common.CmdIndexCommit, 0, 0, nil, nil), common.OkDbCommited)
	if isCode(err, common.ErrBusy) || isCode(err, common.ErrRunning) {
		return false, nil
	}
	return err == nil, err
}

// Close submits the pending buffer, finishes a rebuild of this connection
// and closes the primary and replica connections
func (idx *Index) Close() error {
	var errs []error
	if !idx.Broken() {
		if err := idx.CloseBuffer(); err != nil {
			errs = append(errs, err)
		}
		if idx.rebuild {
			if err := idx.EndRebuild(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, srv := range idx.replicas {
		if err := srv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	idx.replicas = nil
	if err := idx.Server.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
