package ui

import (
	"fmt"
	"os"

	survey "github.com/AlecAivazis/survey/v2"
)

// AskInput prompts for one line of visible input. The prompt and the
// answer are recorded in the full log; any live tail box is finalized
// first so the prompt doesn't fight the redraw loop.
func (l *Logger) AskInput(label string) (string, error) {
	l.finalizeTailForPrompt()

	l.Spacer()
	l.InfoSilent("PROMPT: %s", label)

	var answer string
	err := survey.AskOne(
		&survey.Input{Message: label},
		&answer,
		survey.WithStdio(os.Stdin, os.Stdout, os.Stderr),
	)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", label, err)
	}

	l.InfoSilent("ANSWER: %s", answer)
	return answer, nil
}

// AskSecret prompts for hidden input. Only the fact that an answer was
// given is logged, never the value.
func (l *Logger) AskSecret(label string) (string, error) {
	l.finalizeTailForPrompt()

	l.Spacer()
	l.InfoSilent("PROMPT (secret): %s", label)

	var answer string
	err := survey.AskOne(
		&survey.Password{Message: label},
		&answer,
		survey.WithStdio(os.Stdin, os.Stdout, os.Stderr),
	)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", label, err)
	}

	l.InfoSilent("ANSWER (secret): <redacted>")
	return answer, nil
}

// Confirm asks a yes/no question.
func (l *Logger) Confirm(label string) (bool, error) {
	l.finalizeTailForPrompt()

	l.Spacer()
	l.InfoSilent("PROMPT: %s (yes/no)", label)

	var answer bool
	err := survey.AskOne(
		&survey.Confirm{Message: label},
		&answer,
		survey.WithStdio(os.Stdin, os.Stdout, os.Stderr),
	)
	if err != nil {
		return false, fmt.Errorf("prompt %q: %w", label, err)
	}

	l.InfoSilent("ANSWER: %v", answer)
	return answer, nil
}

func (l *Logger) finalizeTailForPrompt() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tail != nil && !l.tail.closed {
		l.finalizeTailLocked()
	}
}
