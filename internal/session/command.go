package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned by Tokenize for a line with an odd number
// of double quotes.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Tokenize splits a command line on whitespace. Double quotes group words
// into one token ("You know"); quotes themselves are dropped.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	flush()
	return tokens, nil
}

// Command is one parsed session command.
type Command struct {
	Name  string   // e.g. "inc", "speaker add", "category rm"
	Args  []string // positional arguments
	Force bool     // -f on category rm
}

// UsageError reports a malformed command line.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// usages maps every command to its usage line, in help order.
var usages = []struct{ name, usage string }{
	{"inc", `inc <speaker> <category>`},
	{"dec", `dec <speaker> <category>`},
	{"other", `other <speaker>   (then type the word, or an empty line to cancel)`},
	{"speaker add", `speaker add <name>`},
	{"speaker rm", `speaker rm <name>`},
	{"category add", `category add <label>`},
	{"category rm", `category rm [-f] <label>`},
	{"reset", `reset`},
	{"show", `show`},
	{"summary", `summary`},
	{"help", `help`},
	{"quit", `quit`},
}

func usageOf(name string) string {
	for _, u := range usages {
		if u.name == name {
			return u.usage
		}
	}
	return name
}

// Help returns the command list.
func Help() string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, u := range usages {
		fmt.Fprintf(&b, "  %s\n", u.usage)
	}
	b.WriteString(`quote labels with spaces, e.g. inc Steve "You know"` + "\n")
	return b.String()
}

// Parse turns a command line into a Command. Returns (nil, nil) for blank lines.
//
// Multi-word labels for the speaker and category subcommands may be given
// unquoted; the remaining words are joined with single spaces.
func Parse(line string) (*Command, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	head := strings.ToLower(tokens[0])
	rest := tokens[1:]

	switch head {
	case "inc", "dec":
		if len(rest) != 2 {
			return nil, &UsageError{Usage: usageOf(head)}
		}
		return &Command{Name: head, Args: rest}, nil

	case "other":
		if len(rest) < 1 {
			return nil, &UsageError{Usage: usageOf(head)}
		}
		return &Command{Name: head, Args: []string{strings.Join(rest, " ")}}, nil

	case "speaker", "category":
		if len(rest) < 1 {
			return nil, &UsageError{Usage: usageOf(head + " add")}
		}
		sub := strings.ToLower(rest[0])
		if sub == "remove" {
			sub = "rm"
		}
		name := head + " " + sub
		if sub != "add" && sub != "rm" {
			return nil, &UsageError{Usage: usageOf(head + " add")}
		}
		args := rest[1:]
		cmd := &Command{Name: name}
		if name == "category rm" && len(args) > 0 && args[0] == "-f" {
			cmd.Force = true
			args = args[1:]
		}
		if len(args) == 0 {
			return nil, &UsageError{Usage: usageOf(name)}
		}
		cmd.Args = []string{strings.Join(args, " ")}
		return cmd, nil

	case "reset", "show", "summary", "help":
		return &Command{Name: head}, nil

	case "quit", "exit":
		return &Command{Name: "quit"}, nil

	default:
		return nil, fmt.Errorf("unknown command %q (try help)", tokens[0])
	}
}
