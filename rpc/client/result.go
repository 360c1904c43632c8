package client

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

// facetEntrySize is the fixed part of one facet entry: vno, value length and
// a 32 bit count
const facetEntrySize = 6

// readResults reads the frames following a result begin until the result
// end. Field values are named by vnoes, unknown slots keep their number.
func (s *Search) readResults(vnoes map[uint8]string) ([]*document.Document, map[string]map[string]int, error) {
	var (
		docs   []*document.Document
		doc    *document.Document
		facets = make(map[string]map[string]int)
	)
	for {
		res, err := s.GetRespond()
		if err != nil {
			return nil, facets, err
		}

		switch {
		case res.Cmd == common.CmdSearchResultFacets:
			if err := decodeFacets(res.Buf, vnoes, facets); err != nil {
				return nil, facets, err
			}

		case res.Cmd == common.CmdSearchResultDoc:
			if doc, err = document.NewResult(res.Buf, s.charset); err != nil {
				return nil, facets, err
			}
			docs = append(docs, doc)

		case res.Cmd == common.CmdSearchResultField:
			if doc == nil {
				continue
			}
			name, ok := vnoes[uint8(res.Arg())]
			if !ok {
				name = strconv.Itoa(res.Arg())
			}
			if err := doc.LoadResultField(name, res.Buf); err != nil {
				return nil, facets, err
			}

		case res.Cmd == common.CmdSearchResultMatched:
			if doc != nil {
				doc.SetMatched(strings.Split(string(res.Buf), " "))
			}

		case res.Cmd == common.CmdOk && res.Arg() == common.OkResultEnd:
			return docs, facets, nil

		case res.Cmd == common.CmdErr:
			return nil, facets, xserror.NewServerError(res.Arg(), string(res.Buf))

		default:
			return nil, facets, xserror.NewUnexpectedError(" in search", uint8(res.Cmd), uint16(res.Arg()))
		}
	}
}

// decodeFacets adds the entries of a facets frame to facets. Each entry is
// the field slot, the value length, the count and the value.
func decodeFacets(buf []byte, vnoes map[uint8]string, facets map[string]map[string]int) error {
	for off := 0; off+facetEntrySize <= len(buf); {
		vno := buf[off]
		vlen := int(buf[off+1])
		num := int(binary.LittleEndian.Uint32(buf[off+2:]))
		off += facetEntrySize
		if off+vlen > len(buf) {
			return xserror.NewEncodingError("Truncated facets entry of slot %d", vno)
		}
		value := string(buf[off : off+vlen])
		off += vlen

		name, ok := vnoes[vno]
		if !ok {
			continue
		}
		if facets[name] == nil {
			facets[name] = make(map[string]int)
		}
		facets[name][value] = num
	}
	return nil
}
