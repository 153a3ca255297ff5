package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// StdinPrompter is a line-based prompter reading numbered choices from
// an input stream. It is used when stdin/stdout are not terminals and
// throughout the test suite.
type StdinPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewStdin creates a line-based prompter over the given streams.
func NewStdin(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Select presents a numbered list and reads a choice.
func (p *StdinPrompter) Select(title string, options []Option) (string, error) {
	fmt.Fprintf(p.out, "\n%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt.Label)
	}
	fmt.Fprintf(p.out, "Enter choice [1-%d]: ", len(options))

	for {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}

		choice, convErr := strconv.Atoi(line)
		if convErr != nil || choice < 1 || choice > len(options) {
			fmt.Fprintf(p.out, "Invalid choice. Enter 1-%d: ", len(options))
			continue
		}
		return options[choice-1].Value, nil
	}
}

// MultiSelect presents a numbered list and reads comma-separated choices.
// An empty answer selects nothing.
func (p *StdinPrompter) MultiSelect(title string, options []Option) ([]string, error) {
	fmt.Fprintf(p.out, "\n%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt.Label)
	}
	fmt.Fprintf(p.out, "Enter choices (comma-separated, empty for none): ")

	for {
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			return nil, nil
		}

		var values []string
		valid := true
		for _, part := range strings.Split(line, ",") {
			choice, convErr := strconv.Atoi(strings.TrimSpace(part))
			if convErr != nil || choice < 1 || choice > len(options) {
				valid = false
				break
			}
			values = append(values, options[choice-1].Value)
		}
		if !valid {
			fmt.Fprintf(p.out, "Invalid choices. Enter numbers 1-%d separated by commas: ", len(options))
			continue
		}
		return values, nil
	}
}

// Confirm presents a yes/no prompt.
func (p *StdinPrompter) Confirm(message string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", message, hint)

	for {
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintf(p.out, "Please answer y or n [%s]: ", hint)
		}
	}
}

// Input presents a free-text prompt. An empty answer yields the default.
func (p *StdinPrompter) Input(message, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", message, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", message)
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// readLine reads one trimmed line. EOF or a read failure counts as
// cancellation, not as an answer.
func (p *StdinPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", ErrCancelled
	}
	return strings.TrimSpace(line), nil
}
