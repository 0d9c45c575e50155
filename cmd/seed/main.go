package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/scentarena/fragrance-battle-backend/config"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/internal/db"
	"github.com/scentarena/fragrance-battle-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Expected columns, in order:
// Name, Brand, Year, Concentration, Top Notes, Middle Notes, Base Notes,
// Community Rating, Image URL
const minColumns = 4

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fragranceRepo := repository.NewFragranceRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	fragrances, err := readFragrancesFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total fragrances to import: %d\n", len(fragrances))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range fragrances {
		if err := fragranceRepo.Create(&fragrances[i]); err != nil {
			fmt.Printf("Skipping %q (%s): %v\n", fragrances[i].Name, fragrances[i].Brand, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total fragrances imported: %d\n", imported)
}

func readFragrancesFromXLSX(filePath string) ([]model.Fragrance, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var fragrances []model.Fragrance
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < minColumns {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		brand := strings.TrimSpace(cell(row, 1))
		if name == "" || brand == "" {
			skipped++
			continue
		}

		// Catalog dumps repeat brand and year inside the fragrance name.
		name = util.CleanFragranceName(name, brand)

		dedupeKey := strings.ToLower(brand) + "|" + strings.ToLower(name)
		if seen[dedupeKey] {
			skipped++
			continue
		}
		seen[dedupeKey] = true

		year, _ := strconv.Atoi(strings.TrimSpace(cell(row, 2)))

		rating, err := strconv.ParseFloat(strings.TrimSpace(cell(row, 7)), 64)
		if err != nil || rating < 0 || rating > 5 {
			rating = 0
		}

		fragrances = append(fragrances, model.Fragrance{
			Name:            name,
			Brand:           brand,
			Year:            year,
			Concentration:   parseConcentration(cell(row, 3)),
			TopNotes:        splitNotes(cell(row, 4)),
			MiddleNotes:     splitNotes(cell(row, 5)),
			BaseNotes:       splitNotes(cell(row, 6)),
			CommunityRating: rating,
			ImageURL:        strings.TrimSpace(cell(row, 8)),
		})
	}

	fmt.Printf("Skipped rows: %d\n", skipped)
	return fragrances, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseConcentration(raw string) model.Concentration {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "edc", "eau de cologne", "eau_de_cologne":
		return model.ConcentrationEDC
	case "edt", "eau de toilette", "eau_de_toilette":
		return model.ConcentrationEDT
	case "edp", "eau de parfum", "eau_de_parfum":
		return model.ConcentrationEDP
	case "parfum", "extrait", "extrait de parfum":
		return model.ConcentrationParfum
	case "body oil", "body_oil", "oil":
		return model.ConcentrationBodyOil
	default:
		return ""
	}
}

func splitNotes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	notes := make([]string, 0, len(parts))
	for _, part := range parts {
		note := strings.TrimSpace(part)
		if note != "" {
			notes = append(notes, note)
		}
	}
	return notes
}
