package categorizer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fjacquet/txn-categorizer/internal/logging"

	"github.com/fatih/color"
)

var errEndOfInput = errors.New("end of input")

// PromptOracle asks a human on a terminal. An optional suggester (usually the
// Gemini oracle) backs the "AI suggestion" menu entry.
type PromptOracle struct {
	in        *bufio.Reader
	out       io.Writer
	suggester Oracle
	logger    logging.Logger

	header  *color.Color
	option  *color.Color
	warning *color.Color
}

// NewPromptOracle reads answers from in and writes prompts to out.
func NewPromptOracle(in io.Reader, out io.Writer, suggester Oracle, logger logging.Logger) *PromptOracle {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &PromptOracle{
		in:        bufio.NewReader(in),
		out:       out,
		suggester: suggester,
		logger:    logger.WithField(logging.FieldOracle, "prompt"),
		header:    color.New(color.FgCyan, color.Bold),
		option:    color.New(color.FgYellow),
		warning:   color.New(color.FgRed),
	}
}

func (p *PromptOracle) Name() string { return "prompt" }

// Resolve shows the menu for description. End of input stops the run.
func (p *PromptOracle) Resolve(ctx context.Context, description string, known []string) (Decision, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Stop(), err
		}

		p.header.Fprintf(p.out, "\nUncategorized: %s\n", description)
		p.option.Fprintln(p.out, "  1) Choose a category")
		p.option.Fprintln(p.out, "  2) Ask for an AI suggestion")
		p.option.Fprintln(p.out, "  3) Skip")
		p.option.Fprintln(p.out, "  4) Stop and save")

		choice, err := p.ask("Choice: ")
		if err != nil {
			return Stop(), nil
		}

		switch choice {
		case "1":
			return p.chooseCategory(known)
		case "2":
			d, ok, err := p.suggest(ctx, description, known)
			if err != nil {
				return Stop(), nil
			}
			if ok {
				return d, nil
			}
			return p.chooseCategory(known)
		case "3", "":
			return Skip(), nil
		case "4":
			return Stop(), nil
		default:
			p.warning.Fprintf(p.out, "Unknown choice %q\n", choice)
		}
	}
}

// chooseCategory lists known categories. The user may answer with a number,
// "new" to type a label, or "exit" to stop.
func (p *PromptOracle) chooseCategory(known []string) (Decision, error) {
	for i, c := range known {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, c)
	}
	for {
		answer, err := p.ask("Category number, 'new' or 'exit': ")
		if err != nil {
			return Stop(), nil
		}
		switch strings.ToLower(answer) {
		case "exit":
			return Stop(), nil
		case "new":
			label, err := p.ask("New category name: ")
			if err != nil {
				return Stop(), nil
			}
			if label == "" {
				p.warning.Fprintln(p.out, "Category name cannot be empty")
				continue
			}
			return Accept(label), nil
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 1 || n > len(known) {
			p.warning.Fprintf(p.out, "Enter a number between 1 and %d\n", len(known))
			continue
		}
		return Accept(known[n-1]), nil
	}
}

// suggest returns ok=false when the user rejects the suggestion or none is available.
func (p *PromptOracle) suggest(ctx context.Context, description string, known []string) (Decision, bool, error) {
	if p.suggester == nil {
		p.warning.Fprintln(p.out, "AI suggestions are not configured")
		return Decision{}, false, nil
	}
	d, err := p.suggester.Resolve(ctx, description, known)
	if err != nil {
		p.logger.WithError(err).Warn("AI suggestion failed",
			logging.Field{Key: logging.FieldDescription, Value: description})
		p.warning.Fprintln(p.out, "AI suggestion failed")
		return Decision{}, false, nil
	}
	if d.Kind != DecisionAccept {
		p.warning.Fprintln(p.out, "AI had no usable suggestion")
		return Decision{}, false, nil
	}

	answer, err := p.ask(fmt.Sprintf("AI suggests %q. Accept? [Y/n]: ", d.Category))
	if err != nil {
		return Decision{}, false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return d, true, nil
	default:
		return Decision{}, false, nil
	}
}

func (p *PromptOracle) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", errEndOfInput
	}
	return strings.TrimSpace(line), nil
}
