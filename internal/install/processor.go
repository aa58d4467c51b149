package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// ProcessorResult contains the output from running a processor
type ProcessorResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ProcessorRunner executes install processors with a timeout
type ProcessorRunner struct {
	timeout time.Duration
}

// NewProcessorRunner creates a new runner with the given timeout
func NewProcessorRunner(timeout time.Duration) *ProcessorRunner {
	return &ProcessorRunner{timeout: timeout}
}

// Run executes `java -cp <classpath> <mainClass> <args...>`.
func (r *ProcessorRunner) Run(ctx context.Context, java string, classpath []string, mainClass string, args []string) (*ProcessorResult, error) {
	result := &ProcessorResult{}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	argv := append([]string{"-cp", strings.Join(classpath, string(os.PathListSeparator)), mainClass}, args...)
	cmd := exec.CommandContext(ctx, java, argv...)
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("processor timed out after %v: %s", r.timeout, mainClass)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("processor %s failed with exit code %d", mainClass, result.ExitCode)
		}
		return result, fmt.Errorf("running processor: %w", err)
	}
	return result, nil
}

// runProcessors runs the client processors of p in order and then checks
// their declared outputs.
func (i *Installer) runProcessors(c *task.Context, p *minecraft.InstallProfile, installer string) error {
	log := ctxlog.FromContext(c)
	java, err := i.java(c)
	if err != nil {
		return fmt.Errorf("locating java: %w", err)
	}
	vars := minecraft.NewProfileVars(i.folder, p, installer, i.folder.VersionDir(p.Version))

	var procs []minecraft.Processor
	for _, proc := range p.Processors {
		if proc.ForClient() {
			procs = append(procs, proc)
		}
	}
	c.SetUnit("processors")
	c.Update(0, int64(len(procs)))

	for _, proc := range procs {
		if err := c.Err(); err != nil {
			return err
		}
		jar, err := i.coordinatePath(proc.Jar)
		if err != nil {
			return err
		}
		mainClass, err := jarMainClass(jar)
		if err != nil {
			return err
		}
		classpath := []string{jar}
		for _, cp := range proc.Classpath {
			path, err := i.coordinatePath(cp)
			if err != nil {
				return err
			}
			classpath = append(classpath, path)
		}
		args := make([]string, len(proc.Args))
		for k, a := range proc.Args {
			args[k] = vars.Expand(a)
		}

		log.Debug("running processor", "jar", proc.Jar, "main_class", mainClass)
		res, err := i.processors.Run(c, java, classpath, mainClass, args)
		if err != nil {
			log.Debug("processor output", "stdout", res.Stdout, "stderr", res.Stderr)
			return err
		}
		c.Add(1)
	}

	failed, err := minecraft.DiagnoseProcessors(i.folder, p)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		names := make([]string, len(failed))
		for k, f := range failed {
			names[k] = f.Jar
		}
		return fmt.Errorf("processor outputs still invalid: %s", strings.Join(names, ", "))
	}
	return nil
}

func (i *Installer) coordinatePath(name string) (string, error) {
	coord, err := minecraft.ParseCoordinate(name)
	if err != nil {
		return "", err
	}
	return i.folder.LibraryPath(coord.Path()), nil
}
