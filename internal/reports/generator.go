package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/fdg312/meal-e/internal/mealplans"
	"github.com/fdg312/meal-e/internal/nutrients"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// pdfMacroKeys are the columns that fit on an A4 landscape page.
var pdfMacroKeys = []string{
	nutrients.KeyCalories,
	nutrients.KeyProtein,
	nutrients.KeyCarbohydrates,
	nutrients.KeyFat,
	nutrients.KeyFiber,
	nutrients.KeySugar,
	nutrients.KeySodium,
}

// Generator renders a meal plan as CSV or PDF.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(plan mealplans.Plan, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(plan)
	case FormatCSV:
		return g.generateCSV(plan)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// generateCSV writes one row per meal followed by all nutrient totals.
func (g *Generator) generateCSV(plan mealplans.Plan) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"day", "meal", "type", "prep_time_minutes", "difficulty", "ingredients"}
	header = append(header, nutrients.Keys()...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, day := range plan.Plan {
		for _, meal := range day.Meals {
			row := []string{
				day.Day,
				meal.Text("name"),
				meal.Text("type"),
				meal.Text("prep_time_minutes"),
				meal.Text("difficulty"),
				formatIngredients(meal.Ingredients),
			}
			for _, key := range nutrients.Keys() {
				row = append(row, strconv.FormatFloat(meal.Macros.Get(key), 'f', 2, 64))
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *Generator) generatePDF(plan mealplans.Plan) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "", 16)
	pdf.AddPage()
	pdf.Cell(0, 10, "Meal Plan")
	pdf.Ln(12)

	if len(plan.Plan) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, "The plan has no days.")
	}

	for _, day := range plan.Plan {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, tr(day.Day))
		pdf.Ln(9)

		g.drawMealsTable(pdf, tr, day.Meals)
		g.drawDayTotals(pdf, day.Meals)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *Generator) drawMealsTable(pdf *gofpdf.Fpdf, tr func(string) string, meals []mealplans.Meal) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(60, 6, "Meal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Prep (min)", "1", 0, "C", false, 0, "")
	for i, key := range pdfMacroKeys {
		ln := 0
		if i == len(pdfMacroKeys)-1 {
			ln = 1
		}
		pdf.CellFormat(25, 6, key, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, meal := range meals {
		pdf.CellFormat(60, 6, tr(truncate(meal.Text("name"), 40)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, truncate(meal.Text("prep_time_minutes"), 12), "1", 0, "C", false, 0, "")
		for i, key := range pdfMacroKeys {
			ln := 0
			if i == len(pdfMacroKeys)-1 {
				ln = 1
			}
			pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", meal.Macros.Get(key)), "1", ln, "R", false, 0, "")
		}
	}
}

func (g *Generator) drawDayTotals(pdf *gofpdf.Fpdf, meals []mealplans.Meal) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(80, 6, "Day total", "1", 0, "R", false, 0, "")
	for i, key := range pdfMacroKeys {
		var total float64
		for _, meal := range meals {
			total += meal.Macros.Get(key)
		}
		ln := 0
		if i == len(pdfMacroKeys)-1 {
			ln = 1
		}
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", total), "1", ln, "R", false, 0, "")
	}
}

func formatIngredients(ingredients map[string]string) string {
	names := make([]string, 0, len(ingredients))
	for name := range ingredients {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		if ingredients[name] == "" {
			parts[i] = name
			continue
		}
		parts[i] = fmt.Sprintf("%s (%s)", name, ingredients[name])
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
