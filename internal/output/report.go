package output

import (
	"fmt"
	"io"
	"os"

	"github.com/rpgo/bizplan/internal/domain"
)

// GenerateReport writes the report in the named format to dir and returns the
// file names. "all" writes the verbose console text, the period CSV and the
// HTML page.
func GenerateReport(report *domain.Report, format, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if format == "all" {
		var files []string
		for _, name := range []string{"console-verbose", "detailed-csv", "html"} {
			f := GetFormatterByName(name)
			file, err := WriteFormatted(f, report, dir, ExtensionFor(name))
			if err != nil {
				return files, fmt.Errorf("%s: %w", name, err)
			}
			files = append(files, file)
		}
		return files, nil
	}

	f := GetFormatterByName(format)
	if f == nil {
		return nil, UnsupportedFormatError(format)
	}
	file, err := WriteFormatted(f, report, dir, ExtensionFor(format))
	if err != nil {
		return nil, err
	}
	return []string{file}, nil
}

// Render formats the report and writes it to w.
func Render(w io.Writer, report *domain.Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return UnsupportedFormatError(format)
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}
