// internal/cli/extract.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/extract"
	"github.com/law-makers/snip/internal/ui"
	"github.com/law-makers/snip/internal/utils/output"
	"github.com/law-makers/snip/pkg/models"
)

var extractFlags struct {
	selector      string
	format        string
	schema        []string
	scopeCSS      bool
	encapsulateJS bool
	inlineAssets  bool
	maxAssetSize  int64
	assetTypes    []string
	namespace     string
	wait          string
	encapsulation string
	multiple      bool
	outFile       string
}

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract a component from a page",
	Example: `  # Extract a pricing card as a self-contained component
  snip extract https://example.com --selector ".pricing-card"

  # Every matching card, one component each
  snip extract https://example.com --selector ".card" --multiple -o cards.json

  # Structured fields instead of a full component
  snip extract https://example.com --selector ".product" --format json \
    --schema "title=.name" --schema "price=.price" --schema "link=a@href"

  # Markdown export of an article body
  snip extract https://example.com --selector "article" --format markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractFlags.selector, "selector", "s", "", "CSS selector of the component root (required)")
	f.StringVarP(&extractFlags.format, "format", "f", "component", "Output format: component, html, css, json, markdown")
	f.StringArrayVar(&extractFlags.schema, "schema", nil, "JSON field as name=selector[@attr], repeatable")
	f.BoolVar(&extractFlags.scopeCSS, "scope-css", true, "Namespace collected CSS")
	f.BoolVar(&extractFlags.encapsulateJS, "encapsulate-js", true, "Wrap collected JavaScript in a root-bound closure")
	f.BoolVar(&extractFlags.inlineAssets, "inline-assets", true, "Inline referenced assets as data URIs")
	f.Int64Var(&extractFlags.maxAssetSize, "max-asset-size", 0, "Per-asset byte limit, 0 = unlimited")
	f.StringSliceVar(&extractFlags.assetTypes, "asset-types", nil, "Restrict inlined asset types (image,font,stylesheet,media)")
	f.StringVar(&extractFlags.namespace, "namespace", "", "Fixed CSS namespace instead of a generated one")
	f.StringVar(&extractFlags.wait, "wait", "load", "Wait strategy: load, domcontentloaded, networkidle, none")
	f.StringVar(&extractFlags.encapsulation, "encapsulation", "iife", "JavaScript wrapper: iife or module")
	f.BoolVar(&extractFlags.multiple, "multiple", false, "Extract every matching element")
	f.StringVarP(&extractFlags.outFile, "output", "o", "", "Write result to file instead of stdout")
	extractCmd.MarkFlagRequired("selector")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	application := GetApp()
	url := args[0]

	opts, err := extractOptions()
	if err != nil {
		return err
	}

	format := models.ExtractionFormat(extractFlags.format)
	if format != "component" && format != models.FormatHTML && format != models.FormatCSS &&
		format != models.FormatJSON && format != models.FormatMarkdown {
		return fmt.Errorf("unknown format %q", extractFlags.format)
	}

	ctx := cmd.Context()

	if format != "component" {
		schema, err := parseSchema(extractFlags.schema)
		if err != nil {
			return err
		}
		content, err := application.Extractor.ExtractContent(ctx, url, extractFlags.selector, format, schema, opts)
		if err != nil {
			return err
		}
		return writeOut(content)
	}

	if extractFlags.multiple {
		components, err := application.Extractor.ExtractMultiple(ctx, url, extractFlags.selector, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success(fmt.Sprintf("Extracted %d components", len(components))))
		if extractFlags.outFile != "" {
			return output.SaveJSON(components, extractFlags.outFile)
		}
		var parts []string
		for _, c := range components {
			parts = append(parts, c.ToHTML())
		}
		return writeOut(strings.Join(parts, "\n"))
	}

	component, err := application.Extractor.Extract(ctx, url, extractFlags.selector, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, ui.Success(fmt.Sprintf(
		"Extracted component: %d elements, %d CSS rules, %d assets inlined",
		component.Statistics.HTMLElements,
		component.Statistics.CSSRules,
		component.Statistics.AssetsInlined)))
	return writeOut(component.ToHTML())
}

func extractOptions() (models.ExtractionOptions, error) {
	opts := models.DefaultOptions()
	opts.ScopeCSS = extractFlags.scopeCSS
	opts.EncapsulateJS = extractFlags.encapsulateJS
	opts.InlineAssets = extractFlags.inlineAssets
	opts.MaxAssetSize = extractFlags.maxAssetSize
	opts.AssetTypes = extractFlags.assetTypes
	opts.CustomNamespace = extractFlags.namespace

	wait, err := models.ParseWaitStrategy(extractFlags.wait)
	if err != nil {
		return opts, err
	}
	opts.WaitStrategy = wait

	switch extractFlags.encapsulation {
	case string(models.EncapsulationIIFE):
		opts.Encapsulation = models.EncapsulationIIFE
	case string(models.EncapsulationModule):
		opts.Encapsulation = models.EncapsulationModule
	default:
		return opts, fmt.Errorf("unknown encapsulation %q", extractFlags.encapsulation)
	}
	return opts, nil
}

func parseSchema(entries []string) (extract.JSONSchema, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	schema := make(extract.JSONSchema, len(entries))
	for _, entry := range entries {
		field, expr, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid schema entry %q, want name=selector[@attr]", entry)
		}
		schema[strings.TrimSpace(field)] = strings.TrimSpace(expr)
	}
	return schema, nil
}

func writeOut(content string) error {
	if extractFlags.outFile != "" {
		return os.WriteFile(extractFlags.outFile, []byte(content), 0644)
	}
	fmt.Println(content)
	return nil
}
