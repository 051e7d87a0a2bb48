package outputproviders

import (
	"fmt"
	"io"
	"os"

	"github.com/praetorian-inc/blackcat/internal/message"
	"github.com/praetorian-inc/blackcat/pkg/options"
	"github.com/praetorian-inc/blackcat/pkg/types"
)

// CSVWriterTo is implemented by result payloads that can render themselves
// as CSV, such as the cache stats report.
type CSVWriterTo interface {
	WriteCSV(w io.Writer) error
}

type CsvFileProvider struct {
	types.OutputProvider
	OutputPath string
}

func NewCsvFileProvider(opts []*types.Option) types.OutputProvider {
	return &CsvFileProvider{
		OutputPath: types.GetOptionByName(options.OutputOpt.Name, opts).Value,
	}
}

func (fp *CsvFileProvider) Write(result types.Result) error {
	payload, ok := result.Data.(CSVWriterTo)
	if !ok {
		return fmt.Errorf("incoming result 'Data' cannot render CSV, received %T", result.Data)
	}

	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "csv")
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

	if err := payload.WriteCSV(file); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)

	return nil
}
