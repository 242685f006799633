package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mentionforge/brand-analyzer/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

var templateFields = []string{
	"company_name",
	"meme_coin_name",
	"product_info",
	"product_category",
	"product_aims",
	"product_usecase",
}

var (
	// A template must at least be a JSON object
	recordSchema = mustSchema(map[string]interface{}{"type": "object"})

	// Missing descriptive fields are reported but tolerated
	presenceSchema = mustSchema(map[string]interface{}{
		"type":     "object",
		"required": templateFields,
	})
)

func mustSchema(schema map[string]interface{}) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid template schema: %v", err))
	}
	return compiled
}

// ParseTemplate parses the model's structured response into a template and
// sets the wallet address to the caller's address, whatever the model said.
func ParseTemplate(raw, address string) (*models.Template, error) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, &TemplateParseError{Raw: raw, Err: errors.New("empty response")}
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &TemplateParseError{Raw: raw, Err: err}
	}

	documentLoader := gojsonschema.NewGoLoader(doc)
	result, err := recordSchema.Validate(documentLoader)
	if err != nil {
		return nil, &TemplateParseError{Raw: raw, Err: err}
	}
	if !result.Valid() {
		return nil, &TemplateParseError{Raw: raw, Err: fmt.Errorf("template is not a JSON object: %s", describeErrors(result))}
	}

	if presence, err := presenceSchema.Validate(documentLoader); err == nil && !presence.Valid() {
		logrus.Warnf("Template is missing fields: %s", describeErrors(presence))
	}

	fields := doc.(map[string]interface{})
	template := &models.Template{
		CompanyName:     flatten(fields["company_name"]),
		CoinName:        flatten(fields["meme_coin_name"]),
		ProductInfo:     flatten(fields["product_info"]),
		ProductCategory: flatten(fields["product_category"]),
		ProductAims:     flatten(fields["product_aims"]),
		ProductUseCase:  flatten(fields["product_usecase"]),
	}

	known := map[string]bool{"wallet_address": true}
	for _, field := range templateFields {
		known[field] = true
	}
	for key, value := range fields {
		if known[key] {
			continue
		}
		if template.Extra == nil {
			template.Extra = make(map[string]interface{})
		}
		template.Extra[key] = value
	}

	if modelAddress := flatten(fields["wallet_address"]); modelAddress != "" && modelAddress != address {
		logrus.Warnf("Model returned wallet address %q, replacing with the requested address", modelAddress)
	}
	template.WalletAddress = address

	return template, nil
}

func describeErrors(result *gojsonschema.Result) string {
	descriptions := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		descriptions[i] = desc.String()
	}
	sort.Strings(descriptions)
	return strings.Join(descriptions, "; ")
}

// cleanJSON strips the markdown code fences models like to wrap JSON in
func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

// flatten renders a decoded JSON value as template text
func flatten(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
