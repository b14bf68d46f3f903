package mihcsme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/parser"
)

// ParseFile reads a MIHCSME workbook into a Metadata model.
func ParseFile(path string) (*models.Metadata, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, path)
	}

	return parser.ParseWorkbook(path)
}
