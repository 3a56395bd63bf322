package extractor

import (
	"context"
	"strings"

	"github.com/habiliai/tutorwise/errors"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX renders every sheet as a "# <sheet>" header followed by its rows,
// cells separated by tabs.
func ParseXLSX(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open XLSX")
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read sheet %s", sheet)
		}

		lines = append(lines, "# "+sheet)
		for _, row := range rows {
			if line := strings.TrimRight(strings.Join(row, "\t"), "\t"); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
