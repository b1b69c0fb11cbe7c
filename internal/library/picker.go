package library

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// ErrPickerCancelled is returned when the user dismisses the folder picker.
// It matches context.Canceled under errors.Is.
var ErrPickerCancelled = fmt.Errorf("folder selection cancelled: %w", context.Canceled)

// DefaultPrompt is shown by interactive pickers.
const DefaultPrompt = "Video folder: "

// FolderPicker asks the user for a folder to open.
type FolderPicker interface {
	PickFolder(ctx context.Context) (string, error)
}

// StaticPicker returns a fixed path. An empty path behaves like a dismissed dialog.
type StaticPicker string

// PickFolder implements FolderPicker.
func (p StaticPicker) PickFolder(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := strings.TrimSpace(string(p))
	if path == "" {
		return "", ErrPickerCancelled
	}
	return expandHome(path), nil
}

// LinePicker reads a folder path from a line-oriented reader, printing a
// prompt first. An empty line or EOF cancels.
type LinePicker struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

// PickFolder implements FolderPicker.
func (p *LinePicker) PickFolder(ctx context.Context) (string, error) {
	if p.Out != nil && p.Prompt != "" {
		fmt.Fprint(p.Out, p.Prompt)
	}

	return readCancellable(ctx, func() (string, error) {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read folder: %w", err)
		}
		return line, nil
	})
}

// TerminalPicker prompts on an interactive terminal with line editing.
// When the input is not a terminal it falls back to plain line reading.
type TerminalPicker struct {
	In     *os.File
	Out    io.Writer
	Prompt string
}

// NewTerminalPicker creates a picker on stdin/stdout.
func NewTerminalPicker() *TerminalPicker {
	return &TerminalPicker{In: os.Stdin, Out: os.Stdout, Prompt: DefaultPrompt}
}

// PickFolder implements FolderPicker.
func (p *TerminalPicker) PickFolder(ctx context.Context) (string, error) {
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		lp := &LinePicker{In: p.In, Out: p.Out, Prompt: p.Prompt}
		return lp.PickFolder(ctx)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, state)
	}()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{p.In, p.Out}, p.Prompt)

	return readCancellable(ctx, func() (string, error) {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return line, err
	})
}

// readCancellable runs read in the background so a done ctx dismisses the prompt.
func readCancellable(ctx context.Context, read func() (string, error)) (string, error) {
	type outcome struct {
		line string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		line, err := read()
		ch <- outcome{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrPickerCancelled
	case o := <-ch:
		if o.err != nil {
			return "", o.err
		}
		path := strings.TrimSpace(o.line)
		if path == "" {
			return "", ErrPickerCancelled
		}
		return expandHome(path), nil
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
