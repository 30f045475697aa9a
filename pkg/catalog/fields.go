package catalog

// The upstream schema is inconsistent between search results and detail
// results, so every output attribute is extracted through an ordered list
// of candidate source keys, tried in order. The lists below are the
// adapter's contract with the server.
var (
	nameFields      = []string{"name", "product_name"}
	brandFields     = []string{"brand", "brands"}
	gradeFields     = []string{"nutriScore", "nutri_score", "nutrition_grade"}
	nutritionFields = []string{"nutritionFacts", "nutriments"}
	caloriesFields  = []string{"energy", "energy-kcal_100g", "energy_100g"}
	proteinFields   = []string{"proteins", "proteins_100g"}
	carbsFields     = []string{"carbohydrates", "carbohydrates_100g"}
	fatFields       = []string{"fat", "fat_100g"}
	imageFields     = []string{"imageUrl", "image_url", "image"}
	barcodeFields   = []string{"barcode", "id"}
)

// nutrition-grade ordinal used for ranking search candidates. Unknown or
// absent grades rank below E.
var gradeRank = map[string]int{
	"a": 5,
	"b": 4,
	"c": 3,
	"d": 2,
	"e": 1,
}

func firstString(source map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := source[key]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func firstNumber(source map[string]any, keys []string) float64 {
	for _, key := range keys {
		if v, ok := source[key]; ok {
			switch n := v.(type) {
			case float64:
				return n
			case int:
				return float64(n)
			case string:
				continue
			}
		}
	}
	return 0
}

func firstMap(source map[string]any, keys []string) map[string]any {
	for _, key := range keys {
		if v, ok := source[key]; ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}
