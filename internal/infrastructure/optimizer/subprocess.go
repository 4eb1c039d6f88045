package optimizer

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"

	"github.com/yuzvak/retail-coordination-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// Subprocess runs the external transportation-problem solver as a child
// process and speaks the block framing protocol over its stdio. One Solve
// call is one complete process lifecycle; the context deadline kills a
// hanging solver.
type Subprocess struct {
	command string
	args    []string
	prompt  string
	log     *logger.Logger
}

func NewSubprocess(command string, args []string, prompt string, log *logger.Logger) *Subprocess {
	return &Subprocess{
		command: command,
		args:    args,
		prompt:  prompt,
		log:     log.WithField("component", "optimizer"),
	}
}

func (s *Subprocess) Solve(ctx context.Context, payload string) (string, error) {
	monitoring.OptimizerRunsTotal.Inc()
	result, err := s.solve(ctx, payload)
	if err != nil {
		monitoring.OptimizerFailuresTotal.Inc()
	}
	return result, err
}

func (s *Subprocess) solve(ctx context.Context, payload string) (string, error) {
	cmd := exec.CommandContext(ctx, s.command, s.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("optimizer stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("optimizer stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start optimizer %s: %w", s.command, err)
	}

	reader := bufio.NewReader(stdout)

	// The solver announces readiness with a prompt before accepting input.
	if _, err := readUntilPrompt(reader, s.prompt); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return "", fmt.Errorf("optimizer banner: %w", err)
	}

	if err := writeBlock(stdin, payload); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return "", fmt.Errorf("write optimizer payload: %w", err)
	}
	if err := stdin.Close(); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return "", fmt.Errorf("close optimizer stdin: %w", err)
	}

	result, err := readUntilPrompt(reader, s.prompt)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return "", fmt.Errorf("read optimizer result: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("optimizer timed out: %w", ctx.Err())
		}
		s.log.Warn("Optimizer exited abnormally", "error", err)
	}

	return result, nil
}
