package client

import (
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/tokenizer"
	"github.com/hightman/xunsearch/rpc/common"
)

// MaxWdf is the largest within document frequency one DOC_TERM can carry
const MaxWdf = 63

// MaxTermSize is the longest term, in bytes, sent to the server
const MaxTermSize = 200

// encodeDocument builds the INDEX_REQUEST ... INDEX_SUBMIT sequence of a
// document. key is the primary key, it is only sent for updates.
func encodeDocument(doc *document.Document, fs *scheme.FieldScheme, reg *tokenizer.Registry, key string, add bool) ([]*common.Command, error) {
	req := common.NewCommand(common.CmdIndexRequest, common.IndexRequestAdd, 0, nil, nil)
	if !add {
		req.Arg1 = common.IndexRequestUpdate
		req.Arg2 = fs.FieldID().Vno
		req.Buf = []byte(key)
	}
	cmds := []*common.Command{req}

	for _, field := range fs.AllFields() {
		if value, ok := doc.Lookup(field.Name); ok {
			var err error
			if value, err = field.Val(value); err != nil {
				return nil, err
			}
			if cmds, err = appendValue(cmds, doc, field, reg, value); err != nil {
				return nil, err
			}
		}

		for _, tw := range doc.AddTerms(field.Name) {
			cmds = appendTerm(cmds, field, tw)
		}

		if text, ok := doc.AddIndexText(field.Name); ok {
			if !field.HasCustomTokenizer() {
				wdf := indexWdf(field)
				cmds = append(cmds, common.NewCommand(common.CmdDocIndex, wdf, int(field.Vno), []byte(text), nil))
				continue
			}
			t, err := reg.ForField(field)
			if err != nil {
				return nil, err
			}
			cmds = appendTokens(cmds, field, t.GetTokens(text, doc))
		}
	}

	return append(cmds, common.NewCommand(common.CmdIndexSubmit, 0, 0, nil, nil)), nil
}

// appendValue encodes the value of one field
func appendValue(cmds []*common.Command, doc *document.Document, field *scheme.FieldMeta, reg *tokenizer.Registry, value string) ([]*common.Command, error) {
	varg := 0
	if field.IsNumeric() {
		varg = common.ValueFlagNumeric
	}
	vno := int(field.Vno)
	data := []byte(value)

	if !field.HasCustomTokenizer() {
		wdf := indexWdf(field)
		if field.HasIndexMixed() {
			cmds = append(cmds, common.NewCommand(common.CmdDocIndex, wdf, scheme.MixedVno, data, nil))
		}
		if field.HasIndexSelf() {
			if !field.IsNumeric() {
				wdf |= common.IndexFlagSaveValue
			}
			cmds = append(cmds, common.NewCommand(common.CmdDocIndex, wdf, vno, data, nil))
		}
		if !field.HasIndexSelf() || field.IsNumeric() {
			cmds = append(cmds, common.NewCommand(common.CmdDocValue, varg, vno, data, nil))
		}
		return cmds, nil
	}

	if field.HasIndex() {
		t, err := reg.ForField(field)
		if err != nil {
			return nil, err
		}
		terms := t.GetTokens(value, doc)
		if field.HasIndexSelf() {
			cmds = appendTokens(cmds, field, terms)
		}
		if field.HasIndexMixed() {
			mtext := strings.Join(terms, " ")
			cmds = append(cmds, common.NewCommand(common.CmdDocIndex, field.Weight, scheme.MixedVno, []byte(mtext), nil))
		}
	}
	return append(cmds, common.NewCommand(common.CmdDocValue, varg, vno, data, nil)), nil
}

// appendTokens adds the terms produced by a custom tokenizer, without
// positions
func appendTokens(cmds []*common.Command, field *scheme.FieldMeta, terms []string) []*common.Command {
	wdf := field.Weight | common.IndexFlagCheckStem
	if field.IsBoolIndex() {
		wdf = 1
	}
	for _, term := range terms {
		if len(term) > MaxTermSize {
			continue
		}
		term = strings.ToLower(term)
		cmds = append(cmds, common.NewCommand(common.CmdDocTerm, wdf, int(field.Vno), []byte(term), nil))
	}
	return cmds
}

// appendTerm adds an extra term. Frequencies above MaxWdf are split over
// several DOC_TERM commands.
func appendTerm(cmds []*common.Command, field *scheme.FieldMeta, tw document.TermWeight) []*common.Command {
	term := strings.ToLower(tw.Term)
	if len(term) > MaxTermSize {
		return cmds
	}

	wdf1, wdf2 := common.IndexFlagCheckStem, tw.Weight*field.Weight
	if field.IsBoolIndex() {
		wdf1, wdf2 = 0, 1
	}
	for wdf2 > MaxWdf {
		cmds = append(cmds, common.NewCommand(common.CmdDocTerm, wdf1|MaxWdf, int(field.Vno), []byte(term), nil))
		wdf2 -= MaxWdf
	}
	return append(cmds, common.NewCommand(common.CmdDocTerm, wdf1|wdf2, int(field.Vno), []byte(term), nil))
}

func indexWdf(field *scheme.FieldMeta) int {
	wdf := field.Weight
	if field.WithPos() {
		wdf |= common.IndexFlagWithPos
	}
	return wdf
}

// joinCommands concatenates the wire format of cmds
func joinCommands(cmds []*common.Command) []byte {
	size := 0
	for _, cmd := range cmds {
		size += cmd.SizeBytes()
	}
	buf := make([]byte, 0, size)
	for _, cmd := range cmds {
		buf = cmd.AppendTo(buf)
	}
	return buf
}
