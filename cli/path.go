package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/BradenEverson/chalk/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPathEnv returns the name of the environment variable listing
// additional directories searched for [baseConfig], for example
// CHALK_CONFIG_PATH.
func configPathEnv() string { return pkg.EnvPrefix() + "CONFIG_PATH" }

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// configFiles returns the configuration files to load, in increasing order of
// precedence: the user configuration directory followed by each existing
// directory listed in [configPathEnv].
func configFiles() []string {
	dirs := mung.Make(
		mung.WithSubjectItems(os.Getenv(configPathEnv())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(pkg.ConfigDir()),
		mung.WithFilter(isDir),
	).String()

	var files []string

	for _, dir := range filepath.SplitList(dirs) {
		if dir != "" {
			files = append(files, filepath.Join(dir, baseConfig))
		}
	}

	return files
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
