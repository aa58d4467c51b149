package install

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
)

// readZipEntry returns the content of one archive entry.
func readZipEntry(archivePath, name string) (data []byte, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	name = strings.TrimPrefix(name, "/")
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in archive: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
}

// extractZipPrefix extracts the entries under prefix into destDir with the
// prefix removed, and returns how many files were written.
func extractZipPrefix(archivePath, prefix, destDir string) (n int, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing zip: %w", cerr)
		}
	}()

	for _, f := range r.File {
		rel, ok := strings.CutPrefix(f.Name, prefix)
		if !ok || rel == "" {
			continue
		}
		if err := extractZipFile(f, rel, destDir); err != nil {
			return n, err
		}
		if !f.FileInfo().IsDir() {
			n++
		}
	}
	return n, nil
}

// ExtractNatives unpacks the native libraries of r into the version's
// natives directory and returns it.
func (i *Installer) ExtractNatives(r *minecraft.ResolvedVersion) (string, error) {
	dir := i.folder.NativesDir(r.ID)
	for _, l := range r.Libraries {
		if !l.Native {
			continue
		}
		if err := extractNatives(i.folder.LibraryPath(l.Path), dir, []string{"META-INF/"}); err != nil {
			return "", fmt.Errorf("extracting natives of %s: %w", l.Name, err)
		}
	}
	return dir, nil
}

// extractNatives unpacks a natives jar into destDir, skipping entries that
// start with any of exclude (usually META-INF/).
func extractNatives(jarPath, destDir string, exclude []string) error {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return fmt.Errorf("opening natives jar: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating natives directory: %w", err)
	}
outer:
	for _, f := range r.File {
		for _, ex := range exclude {
			if strings.HasPrefix(f.Name, ex) {
				continue outer
			}
		}
		if err := extractZipFile(f, f.Name, destDir); err != nil {
			return err
		}
	}
	return nil
}

// extractZipFile extracts a single file from a ZIP archive to rel under
// destDir.
func extractZipFile(f *zip.File, rel, destDir string) (err error) {
	destPath, err := sanitizePath(destDir, rel)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening file %s in archive: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", f.Name, cerr)
		}
	}()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}
	return nil
}

// sanitizePath ensures the extracted file path is within the destination
// directory, rejecting entries like "../../etc/passwd".
func sanitizePath(destDir, filePath string) (string, error) {
	destPath := filepath.Join(destDir, filepath.Clean(filepath.FromSlash(filePath)))
	root := filepath.Clean(destDir)
	if destPath != root && !strings.HasPrefix(destPath, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", filePath)
	}
	return destPath, nil
}

// jarMainClass reads Main-Class from a jar manifest.
func jarMainClass(jarPath string) (string, error) {
	data, err := readZipEntry(jarPath, "META-INF/MANIFEST.MF")
	if err != nil {
		return "", err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if v, ok := strings.CutPrefix(sc.Text(), "Main-Class:"); ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", fmt.Errorf("%s: no Main-Class in manifest", filepath.Base(jarPath))
}
