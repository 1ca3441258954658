package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/example/memorizer/pkg/models"
)

// PairStore is the storage the importer writes to
type PairStore interface {
	List(ctx context.Context) ([]models.SentencePair, error)
	Create(ctx context.Context, english, korean string) (*models.SentencePair, error)
	Update(ctx context.Context, id int64, english, korean string) (*models.SentencePair, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath      string // Path to the Excel or CSV file
	EnglishColumn string // Column with the English sentence
	KoreanColumn  string // Column with the Korean sentence
	SheetName     string // Sheet to import; empty means the first sheet
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EnglishColumn: "A",
		KoreanColumn:  "B",
		StartRow:      1, // a header row is detected automatically
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads sentence pairs from spreadsheets
type Importer struct {
	pairs PairStore
	log   *zap.Logger
}

// NewImporter creates a new importer
func NewImporter(pairs PairStore, log *zap.Logger) *Importer {
	return &Importer{pairs: pairs, log: log}
}

// Import reads an .xlsx, .csv or .yaml file and stores its sentence pairs.
// Rows whose English text already exists update the Korean text instead of
// creating a duplicate.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(config.FilePath)); ext {
	case ".csv":
		rows, err = readCSV(config.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(config.FilePath, config.SheetName)
	case ".yaml", ".yml":
		rows, err = readYAML(config.FilePath)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	existing, err := im.pairs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing sentences: %w", err)
	}

	// Map normalized English text to the stored pair for quick lookup
	byEnglish := make(map[string]models.SentencePair, len(existing))
	for _, pair := range existing {
		byEnglish[lookupKey(pair.English)] = pair
	}

	result := &ImportResult{Errors: make([]string, 0)}
	englishIdx := columnToIndex(config.EnglishColumn)
	koreanIdx := columnToIndex(config.KoreanColumn)
	startRow := config.StartRow
	if startRow < 1 {
		startRow = 1
	}

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < startRow {
			continue
		}

		english := cell(row, englishIdx)
		korean := cell(row, koreanIdx)

		if english == "" && korean == "" {
			continue
		}
		if rowNum == startRow && isHeader(english, korean) {
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, english, korean, byEnglish, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	im.log.Info("import finished",
		zap.String("file", config.FilePath),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

func (im *Importer) processRow(ctx context.Context, english, korean string, byEnglish map[string]models.SentencePair, result *ImportResult) error {
	if english == "" {
		return errors.New("english sentence cannot be empty")
	}
	if korean == "" {
		return errors.New("korean sentence cannot be empty")
	}

	key := lookupKey(english)
	if existing, ok := byEnglish[key]; ok {
		if existing.Korean == korean {
			result.Skipped++
			return nil
		}

		updated, err := im.pairs.Update(ctx, existing.ID, existing.English, korean)
		if err != nil {
			return fmt.Errorf("failed to update sentence: %w", err)
		}
		byEnglish[key] = *updated
		result.Updated++
		return nil
	}

	created, err := im.pairs.Create(ctx, english, korean)
	if err != nil {
		return fmt.Errorf("failed to create sentence: %w", err)
	}
	byEnglish[key] = *created
	result.Created++
	return nil
}

// readExcel returns all rows of a sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// yamlPair is one entry of a YAML sentence list:
//
//	- english: Hello.
//	  korean: 안녕하세요.
type yamlPair struct {
	English string `yaml:"english"`
	Korean  string `yaml:"korean"`
}

// readYAML returns the entries of a YAML sentence list as two-column rows
func readYAML(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open YAML file: %w", err)
	}

	var entries []yamlPair
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error reading YAML: %w", err)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.English, e.Korean})
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	// Excel exports sometimes prefix UTF-8 files with a BOM
	return strings.TrimSpace(strings.TrimPrefix(row[idx], "\ufeff"))
}

func isHeader(english, korean string) bool {
	e := strings.ToLower(english)
	k := strings.ToLower(korean)
	return (e == "english" || e == "영어") && (k == "korean" || k == "한국어")
}

func lookupKey(english string) string {
	return strings.ToLower(strings.Join(strings.Fields(english), " "))
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
