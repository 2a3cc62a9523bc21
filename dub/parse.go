package dub

import (
	"fmt"
	"strconv"
)

// Node is a command argument.
type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (Range) isNode()      {}
func (Ratio) isNode()      {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// Range is written min:max, e.g. the bar range of a random phase.
type Range struct {
	Min, Max int
}

// Ratio is written a/b, e.g. 3/1 for three played and one muted bar.
type Ratio struct {
	Num, Den int
}

func Parse(input string) (Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return Command{}, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.typ != typeEOF {
		p.pos++
	}
	return t
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) parse() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for token := p.next(); token.typ != typeEOF; token = p.next() {
		var arg Node
		switch token.typ {
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			arg = String(token.text[1 : len(token.text)-1])
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(token.text)
			if err != nil {
				return cmd, err
			}
			switch p.peek().typ {
			case typeColon:
				p.next()
				max, err := p.int()
				if err != nil {
					return cmd, err
				}
				arg = Range{Min: n, Max: max}
			case typeSlash:
				p.next()
				den, err := p.int()
				if err != nil {
					return cmd, err
				}
				arg = Ratio{Num: n, Den: den}
			default:
				arg = Int(n)
			}
		default:
			return cmd, unexpected(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

func (p *parser) int() (int, error) {
	t := p.next()
	if t.typ != typeInt {
		return 0, unexpected(t)
	}
	return strconv.Atoi(t.text)
}

func unexpected(t token) error {
	if t.typ == typeEOF {
		return fmt.Errorf("unexpected end of input at position %d", t.pos)
	}
	return fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
}
