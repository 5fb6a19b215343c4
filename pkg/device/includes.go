package device

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/karrick/godirwalk"
	log "github.com/rs/zerolog/log"
)

// CollectIncludes expands the include paths into the ordered list of files to
// pack. Files are kept as given; directories are walked recursively in lexical
// order. Hidden entries found while walking are skipped.
func CollectIncludes(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &common.BuildError{Op: "include", Path: path, Err: common.ErrFileNotFound}
			}
			return nil, &common.BuildError{Op: "include", Path: path, Err: err}
		}

		if !fi.IsDir() {
			files = append(files, path)
			continue
		}

		// godirwalk reports the root in cleaned form.
		root := filepath.Clean(path)
		err = godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(osPathname string, de *godirwalk.Dirent) error {
				if osPathname != root && strings.HasPrefix(de.Name(), ".") {
					log.Debug().Msgf("skipping hidden entry: %s", osPathname)
					if de.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}

				isDir, err := de.IsDirOrSymlinkToDir()
				if err != nil {
					return err
				}
				if isDir {
					return nil
				}

				files = append(files, osPathname)
				return nil
			},
			FollowSymbolicLinks: true,
			Unsorted:            false,
		})
		if err != nil {
			return nil, &common.BuildError{Op: "include", Path: path, Err: err}
		}
	}

	return files, nil
}
