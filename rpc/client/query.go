package client

import (
	"math"
	"regexp"
	"strings"

	"github.com/hightman/xunsearch/lib/numeric"
	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/rpc/common"
)

var (
	whitespace      = regexp.MustCompile(`[ \t\r\n]+`)
	valueRangeRegex = regexp.MustCompile(`(VALUE_RANGE) (\d+) (\S+) ([^)]+)\)`)
	valueCmpRegex   = regexp.MustCompile(`(VALUE_[GL]E) (\d+) ([^)]+)\)`)
	fieldQueryRegex = regexp.MustCompile(`(^|\s)([0-9A-Za-z_.\-]+):(\S+)`)
)

// SetQuery sets the default query used by Count, Search and Terms when they
// get an empty query. An empty query clears the default query.
func (s *Search) SetQuery(query string) error {
	if err := s.clearQuery(); err != nil {
		return err
	}
	if query != "" {
		s.query = query
		_, err := s.AddQueryString(query, common.QueryOpAnd, 1)
		return err
	}
	return nil
}

// Query returns the default query
func (s *Search) Query() string {
	return s.query
}

// AddQueryString combines query with the default query using op, scale
// (0.01-655.35) multiplies the weight of its terms. The prepared query is
// returned.
func (s *Search) AddQueryString(query string, op int, scale float64) (string, error) {
	query, err := s.preQueryString(query)
	if err != nil {
		return "", err
	}
	cmd := common.NewCommand(common.CmdQueryParse, op, s.defaultOp, []byte(query), packScale(scale))
	return query, s.send(cmd)
}

// AddQueryTerm combines terms of field with the default query using op.
// The terms are not tokenized, several terms are joined by the default
// operator. An empty field addresses the mixed area.
func (s *Search) AddQueryTerm(field string, terms []string, op int, scale float64) error {
	if len(terms) == 0 {
		return nil
	}
	vno := scheme.MixedVno
	if field != "" {
		meta, err := s.xs.Field(field)
		if err != nil {
			return err
		}
		vno = int(meta.Vno)
	}

	converted := make([]string, len(terms))
	for i, term := range terms {
		var err error
		if converted[i], err = toUTF8(term, s.charset); err != nil {
			return err
		}
	}
	opcode := common.CmdQueryTerm
	if len(converted) > 1 {
		opcode = common.CmdQueryTerms
	}
	cmd := common.NewCommand(opcode, op, vno, []byte(strings.Join(converted, "\t")), packScale(scale))
	return s.send(cmd)
}

// GetQuery returns the query as parsed by the server. Value ranges are
// rendered as field:[from,to].
func (s *Search) GetQuery(query string) (string, error) {
	query, err := s.prepareQuery(query)
	if err != nil {
		return "", err
	}
	cmd := common.NewCommand(common.CmdQueryGetString, 0, s.defaultOp, []byte(query), nil)
	res, err := s.execOK(cmd, common.OkQueryString)
	if err != nil {
		return "", err
	}

	parsed := string(res.Buf)
	if strings.Contains(parsed, "VALUE_RANGE") {
		parsed = replaceSubmatchFunc(valueRangeRegex, parsed, s.formatValueRange)
	}
	if strings.Contains(parsed, "VALUE_GE") || strings.Contains(parsed, "VALUE_LE") {
		parsed = replaceSubmatchFunc(valueCmpRegex, parsed, s.formatValueRange)
	}
	return fromUTF8(parsed, s.charset), nil
}

// formatValueRange renders "VALUE_RANGE vno from to)", "VALUE_GE vno v)" and
// "VALUE_LE vno v)" as "name:[from,to])"
func (s *Search) formatValueRange(m []string) string {
	field, err := s.xs.Scheme().FieldByVno(atoi(m[2]))
	if err != nil {
		return m[0]
	}
	value := func(v string) string {
		if field.IsNumeric() {
			return numeric.Format(numeric.Decode([]byte(v)))
		}
		return v
	}

	from, to := "~", "~"
	if len(m) > 4 && m[4] != "" {
		to = value(m[4])
	}
	if m[1] == "VALUE_LE" {
		to = value(m[3])
	} else {
		from = value(m[3])
	}
	return field.Name + ":[" + from + "," + to + "])"
}

// --------------------------------------------------------------------------
// Query Preparation
// --------------------------------------------------------------------------

// clearQuery resets the default query on the server. After a scheme change
// the registered prefixes and field settings are dropped as well.
func (s *Search) clearQuery() error {
	cmd := common.NewCommand(common.CmdQueryInit, 0, 0, nil, nil)
	if s.resetScheme {
		cmd.Arg1 = 1
		s.prefix = make(map[string]bool)
		s.fieldSet = false
		s.resetScheme = false
	}
	if err := s.send(cmd); err != nil {
		return err
	}
	s.query = ""
	s.terms = nil
	s.hasCount = false
	return nil
}

// prepareQuery prepares a non empty query, the empty query stands for the
// default query
func (s *Search) prepareQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}
	return s.preQueryString(query)
}

// preQueryString registers the field prefixes used by query and rewrites
// the parts the server parser needs help with:
//
//   - values of fields with a custom tokenizer are split into one term per
//     token: "tag:a,b" becomes "tag:a tag:b"
//   - multi byte values of fields are put in parentheses
//   - multi byte words after + and - are put in parentheses
//
// The result is converted to UTF-8.
func (s *Search) preQueryString(query string) (string, error) {
	query = strings.TrimSpace(query)
	if s.resetScheme {
		if err := s.clearQuery(); err != nil {
			return "", err
		}
	}
	if err := s.initSpecialField(); err != nil {
		return "", err
	}

	fs := s.xs.Scheme()
	var sb strings.Builder
	for _, part := range whitespace.Split(query, -1) {
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		if pos := strings.IndexByte(part[1:], ':') + 1; pos > 0 {
			i := 0
			for i < pos && strings.IndexByte("+-~(", part[i]) >= 0 {
				i++
			}
			name := part[i:pos]
			if field, err := fs.Field(name); err == nil && field.Vno != scheme.MixedVno {
				if err := s.regQueryPrefix(field); err != nil {
					return "", err
				}
				value := part[pos+1:]
				switch {
				case field.HasCustomTokenizer():
					suffix := ""
					if strings.HasSuffix(value, ")") {
						suffix = ")"
						value = value[:len(value)-1]
					}
					t, err := s.xs.Tokenizers().ForField(field)
					if err != nil {
						return "", err
					}
					var terms []string
					seen := make(map[string]bool)
					for _, token := range t.GetTokens(value, nil) {
						token = strings.ToLower(token)
						if !seen[token] {
							seen[token] = true
							terms = append(terms, token)
						}
					}
					sb.WriteString(part[:i])
					sb.WriteString(name + ":")
					sb.WriteString(strings.Join(terms, " "+name+":"))
					sb.WriteString(suffix)
				case !strings.HasPrefix(value, "(") && hasMultiByte(part):
					sb.WriteString(part[:pos+1] + "(" + value + ")")
				default:
					sb.WriteString(part)
				}
				continue
			}
		}

		if len(part) > 1 && (part[0] == '+' || part[0] == '-') && part[1] != '(' && hasMultiByte(part) {
			sb.WriteString(part[:1] + "(" + part[1:] + ")")
			continue
		}
		sb.WriteString(part)
	}
	return toUTF8(sb.String(), s.charset)
}

// regQueryPrefix announces the prefix of a field once per connection
func (s *Search) regQueryPrefix(field *scheme.FieldMeta) error {
	if s.prefix[field.Name] || field.Vno == scheme.MixedVno {
		return nil
	}
	typ := common.PrefixNormal
	if field.IsBoolIndex() {
		typ = common.PrefixBoolean
	}
	if err := s.send(common.NewCommand(common.CmdQueryPrefix, typ, int(field.Vno), []byte(field.Name), nil)); err != nil {
		return err
	}
	s.prefix[field.Name] = true
	return nil
}

// initSpecialField announces cut lengths and numeric fields once per
// connection
func (s *Search) initSpecialField() error {
	if s.fieldSet {
		return nil
	}
	for _, field := range s.xs.Scheme().AllFields() {
		if field.Cutlen != 0 {
			cut := min(127, int(math.Ceil(float64(field.Cutlen)/10)))
			if err := s.send(common.NewCommand(common.CmdSearchSetCut, cut, int(field.Vno), nil, nil)); err != nil {
				return err
			}
		}
		if field.IsNumeric() {
			if err := s.send(common.NewCommand(common.CmdSearchSetNumeric, 0, int(field.Vno), nil, nil)); err != nil {
				return err
			}
		}
	}
	s.fieldSet = true
	return nil
}

// cleanFieldQuery strips boolean field conditions and the names of other
// fields from a query, used for related and corrected queries
func (s *Search) cleanFieldQuery(query string) string {
	query = strings.NewReplacer(" AND ", " ", " OR ", " ").Replace(query)
	if !strings.Contains(query, ":") {
		return query
	}
	fs := s.xs.Scheme()
	return replaceSubmatchFunc(fieldQueryRegex, query, func(m []string) string {
		field, err := fs.Field(m[2])
		if err != nil {
			return m[0]
		}
		if field.IsBoolIndex() {
			return ""
		}
		value := m[3]
		if len(value) > 1 && value[0] == '(' && value[len(value)-1] == ')' {
			value = value[1 : len(value)-1]
		}
		return m[1] + value
	})
}
