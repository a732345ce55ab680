// internal/utils/output/csv.go
package output

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/law-makers/snip/pkg/models"
)

// SaveBatchCSV writes a per-component summary of a batch run, one row per
// requested component.
func SaveBatchCSV(batch *models.BatchExtractionResult, filepath string) error {
	f, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"name", "selector", "success", "size_bytes", "error"}); err != nil {
		return err
	}
	for _, r := range batch.Results {
		size := int64(0)
		if r.Component != nil {
			size = r.Component.Size()
		}
		for _, c := range r.Components {
			size += c.Size()
		}
		row := []string{
			r.Name,
			r.Selector,
			strconv.FormatBool(r.Success),
			strconv.FormatInt(size, 10),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
