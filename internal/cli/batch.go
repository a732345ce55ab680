// internal/cli/batch.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/ui"
	"github.com/law-makers/snip/internal/utils/output"
	"github.com/law-makers/snip/pkg/models"
)

var batchFlags struct {
	manifest string
	outFile  string
	wait     string
}

// batchManifest is the JSON input of the batch command.
type batchManifest struct {
	URL        string                    `json:"url"`
	Components []models.ComponentRequest `json:"components"`
}

var batchCmd = &cobra.Command{
	Use:   "batch [url]",
	Short: "Extract several components from one page in a single session",
	Example: `  # Manifest carries the url and the component list
  snip batch --manifest components.json -o results.json

  # Override the manifest url and export a CSV summary
  snip batch https://example.com --manifest components.json -o results.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.manifest, "manifest", "m", "", "JSON manifest listing components to extract (required)")
	f.StringVarP(&batchFlags.outFile, "output", "o", "", "Write results to file (.json or .csv)")
	f.StringVar(&batchFlags.wait, "wait", "load", "Wait strategy: load, domcontentloaded, networkidle, none")
	batchCmd.MarkFlagRequired("manifest")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	application := GetApp()

	data, err := os.ReadFile(batchFlags.manifest)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest batchManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	if len(manifest.Components) == 0 {
		return fmt.Errorf("manifest lists no components")
	}

	url := manifest.URL
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return fmt.Errorf("no url given on the command line or in the manifest")
	}

	opts := models.DefaultOptions()
	wait, err := models.ParseWaitStrategy(batchFlags.wait)
	if err != nil {
		return err
	}
	opts.WaitStrategy = wait

	bar := progressbar.NewOptions(len(manifest.Components),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	result, err := application.Extractor.ExtractBatch(cmd.Context(), url, manifest.Components, opts,
		func(done int, r models.ComponentResult) {
			bar.Add(1)
		})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, ui.Success(fmt.Sprintf(
		"Batch finished: %d succeeded, %d failed in %dms",
		result.Succeeded, result.Failed, result.DurationMS)))

	if batchFlags.outFile == "" {
		rendered, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(rendered))
		return nil
	}
	if strings.HasSuffix(batchFlags.outFile, ".csv") {
		return output.SaveBatchCSV(result, batchFlags.outFile)
	}
	return output.SaveJSON(result, batchFlags.outFile)
}
