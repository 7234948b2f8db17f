package setupscript

import "errors"

// concatenation errors, all terminal for a run
var (
	ErrNoMigrationsFound = errors.New("no migration files were found")
	ErrDirectoryCreate   = errors.New("create output directory")
	ErrFileRead          = errors.New("read migration file")
	ErrFileWrite         = errors.New("write setup script")
	ErrInvalidPattern    = errors.New("invalid file name pattern")
)
