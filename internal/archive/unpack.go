package archive

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/giantswarm/pgenv/internal/fileutil"
	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/ulikunitz/xz"
)

// TarballSuffix is the name suffix of the inner member selected from the zip container.
const TarballSuffix = ".txz"

// Unpack extracts the postgresql tarball contained in the zip at archivePath
// into destDir. See the package documentation for the stage layout.
func Unpack(archivePath, destDir string) error {
	txzPath, err := unzipTarball(archivePath, destDir)
	if err != nil {
		return err
	}

	tarPath, err := decompressXz(txzPath)
	if err != nil {
		return err
	}
	if err := fileutil.Remove(txzPath); err != nil {
		return err
	}

	if err := extractTar(tarPath, destDir); err != nil {
		return err
	}
	return fileutil.Remove(tarPath)
}

// unzipTarball streams the first .txz member of the zip at zipPath into
// destDir and returns the path it was written to.
func unzipTarball(zipPath, destDir string) (string, error) {
	f, err := os.Open(zipPath) //nolint:gosec // G304: path derived from the cache directory
	if err != nil {
		return "", pgerr.WithPath(pgerr.ErrReadFile, zipPath, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	info, err := f.Stat()
	if err != nil {
		return "", pgerr.WithPath(pgerr.ErrReadFile, zipPath, err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return "", pgerr.WithPath(pgerr.ErrUnzipFile, zipPath, err)
	}

	for _, member := range zr.File {
		if !strings.HasSuffix(member.Name, TarballSuffix) {
			continue
		}

		// Only the base name is used so a crafted member name cannot place
		// the intermediate file outside destDir.
		txzPath := filepath.Join(destDir, filepath.Base(member.Name))

		rc, err := member.Open()
		if err != nil {
			return "", pgerr.WithPath(pgerr.ErrUnzipFile, zipPath, err)
		}
		_, err = fileutil.WriteFile(txzPath, rc, nil)
		_ = rc.Close()
		if err != nil {
			return "", err
		}
		return txzPath, nil
	}

	return "", pgerr.WithPath(pgerr.ErrInvalidPackage, zipPath, nil)
}

// decompressXz decompresses the file at txzPath into a sibling file with a
// .tar suffix and returns its path.
func decompressXz(txzPath string) (string, error) {
	f, err := os.Open(txzPath) //nolint:gosec // G304: path produced by unzipTarball
	if err != nil {
		return "", pgerr.WithPath(pgerr.ErrReadFile, txzPath, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	xr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		return "", pgerr.WithPath(pgerr.ErrReadFile, txzPath, err)
	}

	tarPath := strings.TrimSuffix(txzPath, filepath.Ext(txzPath)) + ".tar"
	if _, err := fileutil.WriteFile(tarPath, xr, nil); err != nil {
		return "", err
	}
	return tarPath, nil
}

// extractTar extracts every entry of the tar file at tarPath into destDir,
// keeping relative paths and permission bits.
func extractTar(tarPath, destDir string) error {
	f, err := os.Open(tarPath) //nolint:gosec // G304: path produced by decompressXz
	if err != nil {
		return pgerr.WithPath(pgerr.ErrReadFile, tarPath, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	tr := tar.NewReader(bufio.NewReader(f))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, tarPath, err)
		}
		if err := extractEntry(tr, hdr, destDir); err != nil {
			return err
		}
	}
}

// extractEntry materialises a single tar header below destDir.
func extractEntry(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	target, err := resolveInside(destDir, hdr.Name)
	if err == nil {
		err = checkParents(destDir, target)
	}
	if err != nil {
		return pgerr.WithPath(pgerr.ErrUnpackFailure, hdr.Name, err)
	}
	perm := hdr.FileInfo().Mode().Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, perm|0o700); err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, target, err)
		}
		return nil

	case tar.TypeReg:
		if err := replaceable(target); err != nil {
			return err
		}
		if _, err := fileutil.WriteFile(target, tr, &fileutil.WriteOptions{Mode: &perm}); err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, target, err)
		}
		return nil

	case tar.TypeSymlink:
		if err := checkSymlinkTarget(destDir, filepath.Dir(target), hdr.Linkname); err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, hdr.Name, err)
		}
		if err := replaceable(target); err != nil {
			return err
		}
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, target, err)
		}
		return nil

	case tar.TypeLink:
		source, err := resolveInside(destDir, hdr.Linkname)
		if err == nil {
			err = checkParents(destDir, source)
		}
		if err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, hdr.Name, err)
		}
		if err := replaceable(target); err != nil {
			return err
		}
		if err := os.Link(source, target); err != nil {
			return pgerr.WithPath(pgerr.ErrUnpackFailure, target, err)
		}
		return nil

	default:
		// Device nodes, FIFOs and PAX global headers have no place in a
		// binaries tree.
		return nil
	}
}

// resolveInside joins name onto destDir and rejects results that escape it.
func resolveInside(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(destDir, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	return target, nil
}

// checkParents rejects target when a directory between destDir and target
// is an extracted symlink. Writing through such a link could land anywhere.
func checkParents(destDir, target string) error {
	rel, err := filepath.Rel(destDir, filepath.Dir(target))
	if err != nil || rel == "." {
		return err
	}

	dir := destDir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		dir = filepath.Join(dir, part)
		info, err := os.Lstat(dir)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("parent %q is a symlink", dir)
		}
	}
	return nil
}

// checkSymlinkTarget walks linkname from linkDir one component at a time,
// the way the kernel resolves it, and fails when the walk leaves destDir or
// steps through an existing symlink before its last component.
func checkSymlinkTarget(destDir, linkDir, linkname string) error {
	if linkname == "" || filepath.IsAbs(linkname) || filepath.VolumeName(linkname) != "" {
		return fmt.Errorf("symlink target %q is not a relative path", linkname)
	}

	rel, err := filepath.Rel(destDir, linkDir)
	if err != nil {
		return err
	}
	var stack []string
	if rel != "." {
		stack = strings.Split(rel, string(filepath.Separator))
	}

	parts := strings.Split(filepath.FromSlash(linkname), string(filepath.Separator))
	for i, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return fmt.Errorf("symlink target %q escapes destination", linkname)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		stack = append(stack, part)
		if i == len(parts)-1 {
			break
		}
		info, err := os.Lstat(filepath.Join(append([]string{destDir}, stack...)...))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("symlink target %q passes through symlink %q", linkname, part)
		}
	}
	return nil
}

// replaceable prepares target to be (re)created: parents exist and any
// previous file or link at target is gone, so re-extraction overwrites
// read-only executables and stale symlinks.
func replaceable(target string) error {
	if err := fileutil.EnsureDirForFile(target); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pgerr.WithPath(pgerr.ErrUnpackFailure, target, err)
	}
	return nil
}
