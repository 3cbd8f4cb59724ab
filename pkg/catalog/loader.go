package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"
)

//go:embed alimentos.csv
var defaultDataset []byte

// Column names expected in the source CSV. Missing columns are synthesized
// as zero, non-numeric cells coerce to zero, negatives clamp to zero.
const (
	colName       = "alimento"
	colCategory   = "categoria"
	colEnergy     = "energia_kcal"
	colProtein    = "proteina_g"
	colFat        = "lipidos_g"
	colCarbs      = "hidratos_carbono_g"
	colSugar      = "azucar_g"
	colSodium     = "sodio_g"
	colFiber      = "fibra_g"
	colServing    = "medida"
	colServingQty = "cantidad"
)

// Load reads the catalog from a CSV file. An empty path loads the embedded
// starter dataset.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadReader(bytes.NewReader(defaultDataset))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open catalog file", goerr.V("path", path))
	}
	defer f.Close()

	c, err := LoadReader(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog", goerr.V("path", path))
	}
	return c, nil
}

// LoadReader parses CSV catalog data. Rows without a name are skipped.
func LoadReader(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog header")
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index[colName]; !ok {
		return nil, goerr.New("catalog is missing the name column", goerr.V("column", colName))
	}

	var records []model.FoodRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read catalog row")
		}

		name := strings.TrimSpace(cell(row, index, colName))
		if name == "" {
			continue
		}

		records = append(records, model.FoodRecord{
			Name:        name,
			Category:    strings.TrimSpace(cell(row, index, colCategory)),
			EnergyKcal:  numeric(cell(row, index, colEnergy)),
			ProteinG:    numeric(cell(row, index, colProtein)),
			FatG:        numeric(cell(row, index, colFat)),
			CarbsG:      numeric(cell(row, index, colCarbs)),
			SugarG:      numeric(cell(row, index, colSugar)),
			Sodium:      numeric(cell(row, index, colSodium)),
			FiberG:      numeric(cell(row, index, colFiber)),
			ServingUnit: strings.TrimSpace(cell(row, index, colServing)),
			ServingQty:  numeric(cell(row, index, colServingQty)),
		})
	}

	return New(records), nil
}

func cell(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func numeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
