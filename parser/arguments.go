package parser

import (
	"errors"
	"strings"
)

var (
	errUnterminatedQuote = errors.New("unterminated quoted value")
	errTextAfterQuote    = errors.New("unexpected text after quoted value")
	errQuoteInValue      = errors.New("unexpected quote inside value")
	errEmptyKey          = errors.New("named argument without name")
	errInvalidKey        = errors.New("invalid name for named argument")
)

// Arguments is the result of parsing an argument list like
// `a, "b, c", #tag, key=value, *subtype`.
type Arguments struct {
	Args    []string
	Kwargs  map[string]string
	Tags    []string
	Subtype string
}

type argument struct {
	key    string
	value  string
	hasKey bool
	quoted bool
}

// ParseArguments splits a comma separated argument list.
//
// Values can be enclosed in double quotes to include commas, and a quote
// inside a quoted value is written as \". Unquoted values starting with
// '#' are tags and unquoted values starting with '*' set the subtype.
// Values of the form key=value are named arguments.
func ParseArguments(text string) (Arguments, error) {
	var result Arguments

	items, err := splitArguments(text)
	if err != nil {
		return result, err
	}

	for _, item := range items {
		switch {
		case item.hasKey:
			if result.Kwargs == nil {
				result.Kwargs = make(map[string]string)
			}
			result.Kwargs[item.key] = item.value
		case !item.quoted && strings.HasPrefix(item.value, "#"):
			result.Tags = append(result.Tags, item.value[1:])
		case !item.quoted && strings.HasPrefix(item.value, "*"):
			result.Subtype = item.value[1:]
		default:
			result.Args = append(result.Args, item.value)
		}
	}

	return result, nil
}

func splitArguments(text string) ([]argument, error) {
	var items []argument
	var current argument
	var value strings.Builder
	inQuote := false

	flush := func() {
		current.value = value.String()
		if !current.quoted {
			current.value = strings.TrimSpace(current.value)
		}
		if current.hasKey || current.quoted || current.value != "" {
			items = append(items, current)
		}
		current = argument{}
		value.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuote {
			switch {
			case c == '\\' && i+1 < len(text) && text[i+1] == '"':
				value.WriteByte('"')
				i++
			case c == '"':
				inQuote = false
			default:
				value.WriteByte(c)
			}
			continue
		}

		switch {
		case c == ',':
			flush()

		case c == '"':
			if current.quoted {
				return nil, errTextAfterQuote
			}
			if strings.TrimSpace(value.String()) != "" {
				return nil, errQuoteInValue
			}
			value.Reset()
			inQuote = true
			current.quoted = true

		case c == '=' && !current.hasKey && !current.quoted:
			key := strings.TrimSpace(value.String())
			if key == "" {
				return nil, errEmptyKey
			}
			if strings.ContainsAny(key, " \t\"") {
				return nil, errInvalidKey
			}
			current.key = key
			current.hasKey = true
			value.Reset()

		default:
			if current.quoted {
				if c == ' ' || c == '\t' {
					continue
				}
				return nil, errTextAfterQuote
			}
			value.WriteByte(c)
		}
	}

	if inQuote {
		return nil, errUnterminatedQuote
	}
	flush()

	return items, nil
}
