// Package strvals parses the comma separated key=value configuration lines
// used by the --log-output and --traces-output flags.
package strvals

import "fmt"

// Token is one key/value pair of a configuration line.
type Token struct {
	Key, Value string
	Inside     rune // shows whether it's inside a given collection, currently [ means it's an array
}

// Parse splits a configuration line such as `file=./run.log,level=info`
// into key/value tokens. Values in square brackets are kept together and
// marked with Inside='['.
func Parse(line string) ([]Token, error) {
	var (
		tokens []Token
		key    string
		start  int
		inside rune
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case key == "" && c == '=':
			key = line[start:i]
			start = i + 1
		case key == "" && c == ',':
			// a key with no value, e.g. `file=/a.log,verbose`
			tokens = append(tokens, Token{Key: line[start:i]})
			start = i + 1
		case key != "" && c == '[' && i == start:
			inside = '['
			start = i + 1
		case key != "" && inside == '[' && c == ']':
			tokens = append(tokens, Token{Key: key, Value: line[start:i], Inside: inside})
			key, inside = "", 0
			if i+1 < len(line) && line[i+1] == ',' {
				i++
			}
			start = i + 1
		case key != "" && inside == 0 && c == ',':
			if start == i {
				return nil, fmt.Errorf("key `%s=` with no value", key)
			}
			tokens = append(tokens, Token{Key: key, Value: line[start:i]})
			key = ""
			start = i + 1
		}
	}

	switch {
	case inside != 0:
		return nil, fmt.Errorf("unterminated collection for key `%s`", key)
	case key != "" && start == len(line):
		return nil, fmt.Errorf("key `%s=` with no value", key)
	case key != "":
		tokens = append(tokens, Token{Key: key, Value: line[start:]})
	case start < len(line):
		tokens = append(tokens, Token{Key: line[start:]})
	}

	return tokens, nil
}
