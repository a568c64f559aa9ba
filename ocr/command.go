package ocr

import (
	"bytes"
	"context"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultCommand is the tesseract binary looked up on PATH.
const DefaultCommand = "tesseract"

// CommandEngine runs the tesseract command line tool, feeding the image on
// stdin and reading text from stdout.
type CommandEngine struct {
	Command string
}

// NewCommandEngine returns an engine running command, or DefaultCommand when
// command is empty.
func NewCommandEngine(command string) *CommandEngine {
	if command == "" {
		command = DefaultCommand
	}
	return &CommandEngine{Command: command}
}

func (e *CommandEngine) Name() string { return EngineCommand }

// Recognize runs tesseract once for the image.
func (e *CommandEngine) Recognize(ctx context.Context, in Input) (string, error) {
	cmd := exec.CommandContext(ctx, e.Command, e.args(in)...)
	cmd.Stdin = bytes.NewReader(in.Image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(ErrEngineUnavailable, "%s: %v", e.Command, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		return "", errors.Wrapf(err, "tesseract failed: %s", msg)
	}

	return stdout.String(), nil
}

func (e *CommandEngine) args(in Input) []string {
	args := []string{"stdin", "stdout"}
	if len(in.Languages) > 0 {
		args = append(args, "-l", strings.Join(in.Languages, "+"))
	}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(in.DPI))
	}
	return append(args, "-c", "preserve_interword_spaces=1")
}
