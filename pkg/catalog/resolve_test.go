package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrigenie-ai/nutrigenie/pkg/db"
)

func planWithIngredients(groups ...[]string) *db.MealPlan {
	plan := &db.MealPlan{ID: "plan-1"}
	for _, ingredients := range groups {
		plan.Meals = append(plan.Meals, db.PlannedMeal{Ingredients: ingredients})
	}
	return plan
}

func TestExtractIngredientsSortedAndDeduplicated(t *testing.T) {
	plan := planWithIngredients(
		[]string{"  Salmon ", "rice"},
		[]string{"salmon", "Broccoli", ""},
		[]string{"RICE"},
	)

	assert.Equal(t, []string{"broccoli", "rice", "salmon"}, ExtractIngredients(plan))
}

func TestExtractIngredientsOrderIndependent(t *testing.T) {
	forward := planWithIngredients([]string{"apple", "banana"}, []string{"cherry"})
	backward := planWithIngredients([]string{"cherry"}, []string{"banana", "apple"})

	first := ExtractIngredients(forward)
	assert.Equal(t, first, ExtractIngredients(backward))
	// Idempotent: same plan, same output.
	assert.Equal(t, first, ExtractIngredients(forward))
}

// mcpPayload wraps a payload the way MCP tool results arrive: JSON inside
// a text content item.
func mcpPayload(payload any) map[string]any {
	encoded, _ := json.Marshal(payload)
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(encoded)},
		},
	}
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// fakeCatalogServer answers searchProducts from the products map and
// getProductByBarcode from the details map; queries in failQueries get an
// HTTP 500.
func fakeCatalogServer(t *testing.T, products map[string][]map[string]any, details map[string]map[string]any, failQueries map[string]bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Method {
		case "initialize":
			w.Header().Set("Mcp-Session-Id", "sess-1")
			writeRPCResult(w, req.ID, map[string]any{})
		case "tools/call":
			var params toolCallParams
			require.NoError(t, json.Unmarshal(req.Params, &params))
			switch params.Name {
			case "searchProducts":
				query, _ := params.Arguments["query"].(string)
				if failQueries[query] {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				writeRPCResult(w, req.ID, mcpPayload(map[string]any{"products": products[query]}))
			case "getProductByBarcode":
				barcode, _ := params.Arguments["barcode"].(string)
				detail, ok := details[barcode]
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				writeRPCResult(w, req.ID, mcpPayload(detail))
			default:
				t.Fatalf("unexpected tool %s", params.Name)
			}
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}
	}))
}

func TestSearchProductsRanksByNutritionGrade(t *testing.T) {
	products := map[string][]map[string]any{
		"oats": {
			{"name": "Mediocre Oats", "barcode": "111", "nutriScore": "c"},
			{"name": "Great Oats", "barcode": "222", "nutriScore": "a"},
			{"name": "Mystery Oats", "barcode": "333"},
			{"name": "Good Oats", "barcode": "444", "nutri_score": "b"},
		},
	}
	server := fakeCatalogServer(t, products, map[string]map[string]any{}, nil)
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)

	results, err := client.SearchProducts(context.Background(), session, "oats", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Great Oats", results[0].Name)
	assert.Equal(t, "A", results[0].NutriScore)
	assert.Equal(t, "Good Oats", results[1].Name)
	assert.Equal(t, "B", results[1].NutriScore)
	assert.Equal(t, "https://world.openfoodfacts.org/product/222", results[0].ProductURL)
}

func TestSearchProductsMergesDetailNutrition(t *testing.T) {
	products := map[string][]map[string]any{
		"salmon": {
			{"name": "Wild Salmon", "brand": "SeaCo", "barcode": "555", "nutriScore": "a"},
		},
	}
	details := map[string]map[string]any{
		"555": {
			"product": map[string]any{
				"product_name": "Wild Salmon Fillet",
				"nutriments": map[string]any{
					"energy-kcal_100g": 208.0,
					"proteins_100g":    20.4,
					"carbohydrates":    0.0,
					"fat_100g":         13.4,
				},
				"image_url": "https://img.example/salmon.jpg",
			},
		},
	}
	server := fakeCatalogServer(t, products, details, nil)
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)

	results, err := client.SearchProducts(context.Background(), session, "salmon", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	product := results[0]
	// Identity comes from the search candidate, nutrition from the detail.
	assert.Equal(t, "Wild Salmon", product.Name)
	assert.Equal(t, "SeaCo", product.Brand)
	assert.Equal(t, 208.0, product.CaloriesPer100g)
	assert.Equal(t, 20.4, product.ProteinPer100g)
	assert.Equal(t, 13.4, product.FatsPer100g)
	assert.Equal(t, "https://img.example/salmon.jpg", product.ImageURL)
}

func TestSearchProductsDetailFailureFallsBackToSearchFields(t *testing.T) {
	products := map[string][]map[string]any{
		"rice": {
			{
				"name": "Brown Rice", "barcode": "777", "nutriScore": "a",
				"nutritionFacts": map[string]any{"energy": 350.0, "proteins": 7.5},
				"imageUrl":       "https://img.example/rice.jpg",
			},
		},
	}
	// No details at all: every barcode lookup 404s.
	server := fakeCatalogServer(t, products, map[string]map[string]any{}, nil)
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)

	results, err := client.SearchProducts(context.Background(), session, "rice", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Brown Rice", results[0].Name)
	assert.Equal(t, 350.0, results[0].CaloriesPer100g)
	assert.Equal(t, 7.5, results[0].ProteinPer100g)
	assert.Equal(t, "https://img.example/rice.jpg", results[0].ImageURL)
}

func TestResolvePlanOneEntryPerIngredientEvenOnFailure(t *testing.T) {
	products := map[string][]map[string]any{
		"oats": {
			{"name": "Great Oats", "barcode": "222", "nutriScore": "a"},
		},
		"salmon": {
			{"name": "Wild Salmon", "barcode": "555", "nutriScore": "b"},
		},
	}
	server := fakeCatalogServer(t, products, map[string]map[string]any{}, map[string]bool{"rice": true})
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)

	plan := planWithIngredients([]string{"Salmon", "rice"}, []string{"oats", "salmon"})
	suggestions := client.ResolvePlan(context.Background(), session, plan, 3)

	require.Len(t, suggestions, 3)
	assert.Equal(t, "oats", suggestions[0].Ingredient)
	assert.Equal(t, 1, suggestions[0].ProductCount)
	assert.Equal(t, "rice", suggestions[1].Ingredient)
	assert.Empty(t, suggestions[1].Products)
	assert.Equal(t, 0, suggestions[1].ProductCount)
	assert.Equal(t, "salmon", suggestions[2].Ingredient)
	assert.Equal(t, 1, suggestions[2].ProductCount)

	assert.Equal(t, StateReady, client.State())
}

func TestParseProductListShapes(t *testing.T) {
	rawList, err := json.Marshal(mcpPayload([]map[string]any{{"name": "A"}, {"name": "B"}}))
	require.NoError(t, err)
	list, err := parseProductList(rawList)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	resultsKey, err := json.Marshal(mcpPayload(map[string]any{"results": []map[string]any{{"name": "C"}}}))
	require.NoError(t, err)
	list, err = parseProductList(resultsKey)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bare := json.RawMessage(`{"products": [{"name": "D"}]}`)
	list, err = parseProductList(bare)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	garbage := json.RawMessage(`{"content": [{"type": "text", "text": "not json"}]}`)
	_, err = parseProductList(garbage)
	assert.Error(t, err)
}
