package install

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// JVMDirs are scanned for bin/java below each entry.
var JVMDirs = []string{"/usr/lib/jvm", "/usr/lib64/jvm", "/usr/java", "/opt/java"}

const probeTimeout = 10 * time.Second

// ProbeJava runs the executable and reads its system properties. A binary
// that fails to start or reports no version comes back with Valid false.
func ProbeJava(ctx context.Context, path string) domain.JavaRecord {
	rec := domain.JavaRecord{Path: path, CheckedAt: time.Now()}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-XshowSettings:properties", "-version")
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		ctxlog.FromContext(ctx).Debug("java probe failed", "java", path, "error", err)
		return rec
	}

	props := parseProperties(out.Bytes())
	rec.Version = props["java.version"]
	rec.Arch = props["os.arch"]
	rec.Major = JavaMajor(rec.Version)
	rec.Valid = rec.Major > 0
	return rec
}

// parseProperties reads "key = value" lines from -XshowSettings output.
func parseProperties(out []byte) map[string]string {
	props := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), " = ")
		if ok {
			props[key] = strings.TrimSpace(value)
		}
	}
	return props
}

// JavaMajor extracts the major version: "1.8.0_382" is 8, "17.0.8" is 17.
func JavaMajor(version string) int {
	parts := strings.FieldsFunc(version, func(r rune) bool { return r == '.' || r == '_' || r == '-' || r == '+' })
	if len(parts) == 0 {
		return 0
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	if major == 1 && len(parts) > 1 {
		if minor, err := strconv.Atoi(parts[1]); err == nil {
			return minor
		}
	}
	return major
}

// JavaCandidates lists java executables from the configured paths, JAVA_HOME,
// PATH and the well-known JVM directories. Symlinks are resolved and
// duplicates removed.
func JavaCandidates(configured []string) []string {
	var raw []string
	raw = append(raw, configured...)
	if home := os.Getenv("JAVA_HOME"); home != "" {
		raw = append(raw, filepath.Join(home, "bin", "java"))
	}
	if p, err := exec.LookPath("java"); err == nil {
		raw = append(raw, p)
	}
	for _, dir := range JVMDirs {
		matches, _ := filepath.Glob(filepath.Join(dir, "*", "bin", "java"))
		raw = append(raw, matches...)
	}

	var out []string
	for _, p := range raw {
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			continue
		}
		if info, err := os.Stat(resolved); err != nil || info.IsDir() {
			continue
		}
		if !slices.Contains(out, resolved) {
			out = append(out, resolved)
		}
	}
	return out
}

// DiscoverJavas probes every candidate concurrently. Results follow the
// candidate order.
func DiscoverJavas(ctx context.Context, candidates []string) ([]domain.JavaRecord, error) {
	recs := make([]domain.JavaRecord, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range candidates {
		i, path := i, path
		g.Go(func() error {
			recs[i] = ProbeJava(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discovering javas: %w", err)
	}
	return recs, nil
}
