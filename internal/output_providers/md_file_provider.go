package outputproviders

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/praetorian-inc/blackcat/pkg/options"
	"github.com/praetorian-inc/blackcat/pkg/types"
)

type MarkdownFileProvider struct {
	types.OutputProvider
	OutputPath string
	FileName   string
}

func NewMarkdownFileProvider(opts []*types.Option) types.OutputProvider {
	return &MarkdownFileProvider{
		OutputPath: types.GetOptionByName(options.OutputOpt.Name, opts).Value,
		FileName:   "",
	}
}

func (fp *MarkdownFileProvider) Write(result types.Result) error {
	// Result.Data needs to be of type MarkdownTable for this provider to work
	table, ok := result.Data.(types.MarkdownTable)
	if !ok {
		return fmt.Errorf("incoming result 'Data' not of type MarkdownTable instead received %T", result.Data)
	}

	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "md")
	}
	fullpath := GetFullPath(filename, fp.OutputPath)
	if err := ensureDir(fullpath); err != nil {
		return err
	}

	file, err := os.OpenFile(fullpath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString(table.ToString()); err != nil {
		return err
	}
	file.WriteString("\n")

	slog.Info("Markdown table written", "path", fullpath)
	return nil
}
