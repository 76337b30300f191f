package notleveldb

import (
	"github.com/pkg/errors"
)

var (
	// ErrNilOptions is returned by Open when it is not given any options at all.
	ErrNilOptions = errors.New("options must not be nil")

	// ErrInvalidOption is returned by Open when one of the provided options can't be used, the returned error will
	// include the name of the offending option.
	ErrInvalidOption = errors.New("invalid option")

	// ErrDatabaseNotFound is returned by Open when there is no dataset in the directory and CreateIfMissing is false.
	ErrDatabaseNotFound = errors.New("database does not exist (CreateIfMissing is false)")

	// ErrDatabaseExists is returned by Open when there is already a dataset in the directory and ErrorIfExists is
	// true.
	ErrDatabaseExists = errors.New("database already exists (ErrorIfExists is true)")

	// ErrComparatorMismatch is returned by Open when the dataset was created with a comparator that has a different
	// name than the one provided in the options.
	ErrComparatorMismatch = errors.New("comparator does not match the comparator the database was created with")

	// ErrCorruption is returned when data read from the disk does not look like something we wrote.
	ErrCorruption = errors.New("corruption")

	// ErrLocked is returned when the LOCK file of a dataset is already held, either by this process or another one.
	ErrLocked = errors.New("database is locked by another process or instance")
)
