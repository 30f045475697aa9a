package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
)

const productURLBase = "https://world.openfoodfacts.org/product/"

type Product struct {
	Name            string  `json:"product_name"`
	Brand           string  `json:"brand"`
	NutriScore      string  `json:"nutri_score"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
	FatsPer100g     float64 `json:"fats_per_100g"`
	ProductURL      string  `json:"product_url"`
	ImageURL        string  `json:"image_url"`
}

type Suggestion struct {
	Ingredient   string    `json:"ingredient"`
	Products     []Product `json:"products"`
	ProductCount int       `json:"product_count"`
}

// ExtractIngredients flattens a plan's meal ingredient lists into a
// lowercase-trimmed, deduplicated, lexicographically sorted list. The sort
// is a contract: identical plans yield identical output ordering.
func ExtractIngredients(plan *db.MealPlan) []string {
	var normalized []string
	for _, meal := range plan.Meals {
		for _, ingredient := range meal.Ingredients {
			cleaned := strings.ToLower(strings.TrimSpace(ingredient))
			if cleaned != "" {
				normalized = append(normalized, cleaned)
			}
		}
	}
	unique := lo.Uniq(normalized)
	sort.Strings(unique)
	return unique
}

// ResolvePlan resolves every unique plan ingredient to its top product
// suggestions. Per-ingredient failures degrade to an empty product list;
// the result always holds exactly one entry per unique ingredient.
func (c *Client) ResolvePlan(ctx context.Context, session *Session, plan *db.MealPlan, topN int) []Suggestion {
	ingredients := ExtractIngredients(plan)
	suggestions := make([]Suggestion, 0, len(ingredients))

	for _, ingredient := range ingredients {
		products, err := c.SearchProducts(ctx, session, ingredient, topN)
		if err != nil {
			c.logger.Warn("Product search failed, returning empty suggestion", "ingredient", ingredient, "error", err)
			products = []Product{}
		}
		suggestions = append(suggestions, Suggestion{
			Ingredient:   ingredient,
			Products:     products,
			ProductCount: len(products),
		})
	}
	return suggestions
}

// SearchProducts searches the catalog for one ingredient: fetch 3xN raw
// candidates, rank by nutrition grade, keep the top N, then best-effort
// fetch details per finalist.
func (c *Client) SearchProducts(ctx context.Context, session *Session, ingredient string, topN int) ([]Product, error) {
	result, err := c.callTool(ctx, c.searchClient, session, "searchProducts", map[string]any{
		"query":    ingredient,
		"page":     1,
		"pageSize": 3 * topN,
	})
	if err != nil {
		return nil, err
	}

	candidates, err := parseProductList(result)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankGrade(candidates[i]) > rankGrade(candidates[j])
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	products := make([]Product, 0, len(candidates))
	for _, candidate := range candidates {
		detail := c.fetchDetail(ctx, session, firstString(candidate, barcodeFields))
		products = append(products, formatProduct(candidate, detail))
	}
	return products, nil
}

// fetchDetail is best-effort: any failure falls back to the search-result
// fields for that finalist.
func (c *Client) fetchDetail(ctx context.Context, session *Session, barcode string) map[string]any {
	if barcode == "" {
		return nil
	}
	result, err := c.callTool(ctx, c.detailClient, session, "getProductByBarcode", map[string]any{
		"barcode": barcode,
	})
	if err != nil {
		c.logger.Debug("Detail fetch failed, using search fields", "barcode", barcode, "error", err)
		return nil
	}
	payload, err := parseToolPayload(result)
	if err != nil {
		return nil
	}
	detail, _ := payload.(map[string]any)
	if product, ok := detail["product"].(map[string]any); ok {
		return product
	}
	return detail
}

func rankGrade(product map[string]any) int {
	grade := strings.ToLower(firstString(product, gradeFields))
	return gradeRank[grade]
}

// formatProduct builds the output record: identity fields from the search
// candidate, nutrition from the detail payload when available.
func formatProduct(search, detail map[string]any) Product {
	data := detail
	if data == nil {
		data = search
	}

	grade := strings.ToUpper(firstString(search, gradeFields))
	if grade == "" {
		grade = strings.ToUpper(firstString(data, gradeFields))
	}
	if grade == "" {
		grade = "N/A"
	}

	nutrition := firstMap(data, nutritionFields)
	if nutrition == nil {
		nutrition = data
	}

	product := Product{
		Name:            firstString(search, nameFields),
		Brand:           firstString(search, brandFields),
		NutriScore:      grade,
		CaloriesPer100g: firstNumber(nutrition, caloriesFields),
		ProteinPer100g:  firstNumber(nutrition, proteinFields),
		CarbsPer100g:    firstNumber(nutrition, carbsFields),
		FatsPer100g:     firstNumber(nutrition, fatFields),
		ImageURL:        firstString(data, imageFields),
	}
	if product.Name == "" {
		product.Name = firstString(data, nameFields)
	}
	if product.Brand == "" {
		product.Brand = firstString(data, brandFields)
	}
	if barcode := firstString(search, barcodeFields); barcode != "" {
		product.ProductURL = productURLBase + barcode
	}
	return product
}

// parseToolPayload unwraps an MCP tool result: the first text content item
// is itself JSON; older servers return the payload directly.
func parseToolPayload(result json.RawMessage) (any, error) {
	var wrapper struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(result, &wrapper); err == nil && len(wrapper.Content) > 0 {
		for _, item := range wrapper.Content {
			if item.Type != "text" {
				continue
			}
			var payload any
			if err := json.Unmarshal([]byte(item.Text), &payload); err != nil {
				return nil, fmt.Errorf("tool result text is not JSON: %w", err)
			}
			return payload, nil
		}
	}

	var payload any
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("malformed tool result: %w", err)
	}
	return payload, nil
}

func parseProductList(result json.RawMessage) ([]map[string]any, error) {
	payload, err := parseToolPayload(result)
	if err != nil {
		return nil, err
	}

	var raw []any
	switch v := payload.(type) {
	case []any:
		raw = v
	case map[string]any:
		for _, key := range []string{"products", "results"} {
			if list, ok := v[key].([]any); ok {
				raw = list
				break
			}
		}
	}

	products := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if product, ok := item.(map[string]any); ok {
			products = append(products, product)
		}
	}
	return products, nil
}
