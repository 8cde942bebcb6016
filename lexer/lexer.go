// Package lexer splits Mau source text into a flat stream of line tokens.
//
// Every non-blank line is classified by its structural marker (header,
// list bullet, attribute line, caption, fence, command, include, variable,
// comment). Lines enclosed between a block fence and its identical closing
// fence are not classified: they are emitted verbatim as TEXT tokens and
// the parser decides how to interpret them according to the block engine.
package lexer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	commentPrefix          = "//"
	multilineCommentMarker = "////"
	escapeChar             = '\\'
)

var (
	reFence          = regexp.MustCompile(`^(-{4,}|={4,}|#{4,}|\*{4,}|_{4,}|\+{4,})$`)
	reHeader         = regexp.MustCompile(`^(=+)\s+(.*)$`)
	reList           = regexp.MustCompile(`^([*#]+)\s+(.*)$`)
	reAttributes     = regexp.MustCompile(`^\[([^\[\]]*)\]$`)
	reTitle          = regexp.MustCompile(`^\.\s+(.+)$`)
	reCommand        = regexp.MustCompile(`^::([a-zA-Z0-9_.-]+):(.*)$`)
	reContent        = regexp.MustCompile(`^<<\s*([a-zA-Z0-9_.-]+):(.*)$`)
	reVariable       = regexp.MustCompile(`^:([+-]?[a-zA-Z0-9_.-]+):(.*)$`)
	reHorizontalRule = regexp.MustCompile(`^---$`)
)

// IsFence reports whether line is a block fence.
func IsFence(line string) bool {
	return reFence.MatchString(strings.TrimRight(line, " \t"))
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithLogger sets the logger used for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Lexer) {
		if log != nil {
			l.log = log
		}
	}
}

// Lexer produces the token stream for a Buffer.
type Lexer struct {
	buf    *Buffer
	tokens []Token
	log    *zap.SugaredLogger
}

// New creates a lexer reading from buf.
func New(buf *Buffer, opts ...Option) *Lexer {
	l := &Lexer{
		buf: buf,
		log: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lex is a convenience function that tokenizes text in one call.
func Lex(text string, source string) ([]Token, error) {
	return New(NewBuffer(text, source)).Process()
}

// Process reads the whole buffer and returns the tokens, always terminated by EOF.
func (l *Lexer) Process() ([]Token, error) {
	for {
		line, ok := l.buf.ReadLine()
		if !ok {
			break
		}

		trimmed := strings.TrimRight(line, " \t")

		if trimmed == multilineCommentMarker {
			if err := l.skipMultilineComment(); err != nil {
				return nil, err
			}
			continue
		}

		if reFence.MatchString(trimmed) {
			if err := l.processBlock(line, trimmed); err != nil {
				return nil, err
			}
			continue
		}

		l.tokens = append(l.tokens, l.classify(line, trimmed))
	}

	l.tokens = append(l.tokens, Token{Type: EOF, Context: l.eofContext()})

	l.log.Debugw("lexer done", "source", l.buf.Source(), "lines", l.buf.Len(), "tokens", len(l.tokens))

	return l.tokens, nil
}

func (l *Lexer) eofContext() Context {
	ctx := l.buf.Context()
	if l.buf.Len() > 0 {
		ctx.Line++
	}
	return ctx
}

// skipMultilineComment drops every line up to the closing "////".
func (l *Lexer) skipMultilineComment() error {
	start := l.buf.Context()
	for {
		line, ok := l.buf.ReadLine()
		if !ok {
			return &SyntaxError{Context: start, Msg: "unclosed multi-line comment", Token: multilineCommentMarker}
		}
		if strings.TrimRight(line, " \t") == multilineCommentMarker {
			return nil
		}
	}
}

// processBlock emits the opening fence, every enclosed line verbatim, and the closing fence.
func (l *Lexer) processBlock(line string, fence string) error {
	start := l.buf.Context()
	l.tokens = append(l.tokens, Token{Type: BLOCK, Value: fence, Raw: line, Context: start})

	for {
		inner, ok := l.buf.ReadLine()
		if !ok {
			return &SyntaxError{Context: start, Msg: "unmatched block fence", Token: fence}
		}

		if strings.TrimRight(inner, " \t") == fence {
			l.tokens = append(l.tokens, Token{Type: BLOCK, Value: fence, Raw: inner, Context: l.buf.Context()})
			return nil
		}

		l.tokens = append(l.tokens, Token{Type: TEXT, Value: inner, Raw: inner, Context: l.buf.Context()})
	}
}

// classify builds the token for a single line outside blocks.
func (l *Lexer) classify(line string, trimmed string) Token {
	tok := Token{Raw: line, Context: l.buf.Context()}

	switch {
	case strings.TrimSpace(trimmed) == "":
		tok.Type = EOL

	case trimmed[0] == escapeChar:
		// The escape disables any interpretation of the rest of the line
		tok.Type = TEXT
		tok.Value = trimmed[1:]
		tok.Escaped = true
		tok.Context = l.buf.ContextAt(2)

	case strings.HasPrefix(trimmed, commentPrefix):
		tok.Type = COMMENT
		tok.Value = strings.TrimSpace(trimmed[len(commentPrefix):])

	case reHorizontalRule.MatchString(trimmed):
		tok.Type = HORIZONTAL_RULE

	default:
		if m := reHeader.FindStringSubmatch(trimmed); m != nil {
			tok.Type = HEADER
			tok.Prefix = m[1]
			tok.Value = strings.TrimSpace(m[2])
			tok.Context = l.buf.ContextAt(len(m[1]) + 2)
			return tok
		}

		if m := reList.FindStringSubmatch(trimmed); m != nil {
			tok.Type = LIST
			tok.Prefix = m[1]
			tok.Value = strings.TrimSpace(m[2])
			tok.Context = l.buf.ContextAt(len(m[1]) + 2)
			return tok
		}

		if m := reAttributes.FindStringSubmatch(trimmed); m != nil {
			tok.Type = ATTRIBUTES
			tok.Value = m[1]
			tok.Context = l.buf.ContextAt(2)
			return tok
		}

		if m := reTitle.FindStringSubmatch(trimmed); m != nil {
			tok.Type = TITLE
			tok.Value = strings.TrimSpace(m[1])
			tok.Context = l.buf.ContextAt(3)
			return tok
		}

		if m := reCommand.FindStringSubmatch(trimmed); m != nil {
			tok.Type = COMMAND
			tok.Prefix = m[1]
			tok.Value = strings.TrimSpace(m[2])
			return tok
		}

		if m := reContent.FindStringSubmatch(trimmed); m != nil {
			tok.Type = CONTENT
			tok.Prefix = m[1]
			tok.Value = strings.TrimSpace(m[2])
			return tok
		}

		if m := reVariable.FindStringSubmatch(trimmed); m != nil {
			tok.Type = VARIABLE
			tok.Prefix = m[1]
			tok.Value = m[2]
			return tok
		}

		tok.Type = TEXT
		tok.Value = trimmed
	}

	return tok
}
