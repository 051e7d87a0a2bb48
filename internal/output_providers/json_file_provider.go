package outputproviders

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/praetorian-inc/blackcat/internal/message"
	"github.com/praetorian-inc/blackcat/pkg/options"
	"github.com/praetorian-inc/blackcat/pkg/types"
)

type JsonFileProvider struct {
	types.OutputProvider
	OutputPath string
	FileName   string
}

func NewJsonFileProvider(opts []*types.Option) types.OutputProvider {
	return &JsonFileProvider{
		OutputPath: types.GetOptionByName(options.OutputOpt.Name, opts).Value,
		FileName:   "",
	}
}

func (fp *JsonFileProvider) Write(result types.Result) error {
	if _, ok := result.Data.(types.MarkdownTable); ok {
		// Skip if not the correct type
		slog.Debug("JSON provider is skipping markdown table output")
		return nil
	}

	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "json")
	}
	fullpath := GetFullPath(filename, fp.OutputPath)
	if err := ensureDir(fullpath); err != nil {
		return err
	}

	file, err := os.Create(fullpath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result.Data); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)

	return nil
}
