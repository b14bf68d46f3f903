package mihcsme

import "errors"

// ErrFileNotFound indicates the input workbook does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not an Excel workbook.
var ErrInvalidFormat = errors.New("file must be Excel format (.xlsx/.xlsm)")

// ErrPlateNotFound indicates a plate named in the workbook does not exist
// in the target screen.
var ErrPlateNotFound = errors.New("plate not found in screen")

// ErrWellNotFound indicates a well named in the workbook does not exist
// on the server-side plate.
var ErrWellNotFound = errors.New("well not found in plate")
