// Package tokenizer provides the client side tokenizers that can be assigned
// to a field with the `tokenizer` key of the project configuration.
//
// A field with a custom tokenizer is split on the client and its terms are
// sent to the server one by one, instead of being handed to the server side
// segmenter. Built-in tokenizers:
//
//	none        no terms at all
//	full        the whole value is one term
//	split(sep)  split by sep (default blank), /regex/ splits by a pattern
//	xlen(n)     chunks of n bytes, 1 <= n <= 255, default 2
//	xstep(n)    prefixes of n, 2n, ... bytes up to the full value
//
// Additional tokenizers are added to a Registry with Register. The scws
// segmenter client registers itself as "scws".
package tokenizer
